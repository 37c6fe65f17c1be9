package tasks

import (
	"errors"
	"strings"

	"github.com/desertthunder/uptrack/internal/shared"
)

// FailureKind labels a failed fetch for the scheduler's recovery policy.
type FailureKind int

const (
	// FailureUnknown covers network and decoding errors: skip the creator,
	// log it, continue the run.
	FailureUnknown FailureKind = iota

	// FailureRateLimited is a recoverable throttling signal: skip the
	// creator for this run, count the hit, continue.
	FailureRateLimited

	// FailureBlocked is a platform-level lockout: abort the whole session
	// before any further creator is dequeued.
	FailureBlocked
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// rateLimitMarkers match raw errors that bypassed the adapters' sentinel
// wrapping (proxies, older adapters).
var rateLimitMarkers = []string{
	"-412",
	"-799",
	"too many requests",
	"quotaexceeded",
	"ratelimitexceeded",
	"status 429",
}

var blockMarkers = []string{
	"-352",
	"risk control",
	"accountsuspended",
}

// Classify inspects a failed fetch and labels it for the scheduler.
// Sentinel wrapping wins; substring matching is the fallback for errors
// that surfaced without wrapping.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	if errors.Is(err, shared.ErrRateLimited) {
		return FailureRateLimited
	}
	if errors.Is(err, shared.ErrAccessBlocked) {
		return FailureBlocked
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range blockMarkers {
		if strings.Contains(msg, marker) {
			return FailureBlocked
		}
	}
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return FailureRateLimited
		}
	}

	return FailureUnknown
}
