package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and platform errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrPlatformUnavailable = fmt.Errorf("platform unavailable")
	ErrRateLimited         = fmt.Errorf("rate limited by platform")
	ErrAccessBlocked       = fmt.Errorf("access blocked by platform")
	ErrCreatorNotFound     = fmt.Errorf("creator not found")

	// Sync preconditions
	ErrStoreUnavailable = fmt.Errorf("video store unavailable")
	ErrNoCreators       = fmt.Errorf("no tracked creators")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
