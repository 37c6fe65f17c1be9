// Bilibili API implementation of [Platform]
//
// Uses the public space arc-search endpoint. Response envelopes follow the
// standard {code, message, data} shape; nonzero codes carry the platform's
// throttling and risk-control signals.
package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBilibiliBaseURL = "https://api.bilibili.com"
	bilibiliReferer        = "https://space.bilibili.com/"
	bilibiliPageSize       = 25

	// Platform error codes. -412 is the anti-crawl throttle ("request was
	// rejected"), -352 is an account-level risk-control lockout.
	bilibiliCodeRejected    = -412
	bilibiliCodeRiskControl = -352
	bilibiliCodeTooFrequent = -799
)

// BilibiliOpts contains configuration for creating a BilibiliService.
type BilibiliOpts struct {
	BaseURL    string       // Defaults to the public API host
	Cookie     string       // Optional session cookie
	UserAgent  string       // Sent on every request
	RateLimit  float64      // Client-side requests per second (default 5)
	HTTPClient *http.Client //
}

// BilibiliService implements the Platform interface for Bilibili space feeds.
//
// Safe for concurrent use; the embedded limiter paces outgoing requests
// across all callers.
type BilibiliService struct {
	baseURL    string
	cookie     string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBilibiliService creates a new Bilibili platform adapter.
func NewBilibiliService(opts BilibiliOpts) *BilibiliService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBilibiliBaseURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &BilibiliService{
		baseURL:    opts.BaseURL,
		cookie:     opts.Cookie,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Name returns the platform tag.
func (b *BilibiliService) Name() string {
	return models.PlatformBilibili
}

type bilibiliVideo struct {
	Aid         int64  `json:"aid"`
	Bvid        string `json:"bvid"`
	Title       string `json:"title"`
	Pic         string `json:"pic"`
	Created     int64  `json:"created"`
	Play        int64  `json:"play"`
	VideoReview int64  `json:"video_review"`
	Length      string `json:"length"`
	Mid         int64  `json:"mid"`
	Author      string `json:"author"`
}

type bilibiliArcSearch struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		List struct {
			Vlist []bilibiliVideo `json:"vlist"`
		} `json:"list"`
	} `json:"data"`
}

// FetchRecentItems retrieves the creator's newest uploads ordered by publish date.
//
// One request per creator. Expects creator.ExternalID to be the numeric
// space UID (mid).
func (b *BilibiliService) FetchRecentItems(ctx context.Context, creator *models.Creator) ([]FetchedItem, error) {
	if creator == nil {
		return nil, fmt.Errorf("%w: nil creator", shared.ErrInvalidInput)
	}
	if _, err := strconv.ParseInt(creator.ExternalID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: bilibili uid must be numeric, got %q", shared.ErrInvalidInput, creator.ExternalID)
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("mid", creator.ExternalID)
	params.Set("ps", strconv.Itoa(bilibiliPageSize))
	params.Set("pn", "1")
	params.Set("order", "pubdate")

	apiURL := b.baseURL + "/x/space/arc/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}
	if b.cookie != "" {
		req.Header.Set("Cookie", b.cookie)
	}
	req.Header.Set("Referer", bilibiliReferer)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// The edge throttle answers 412 before the JSON envelope exists.
	if resp.StatusCode == http.StatusPreconditionFailed || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: bilibili status %d", shared.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: bilibili status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var envelope bilibiliArcSearch
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch envelope.Code {
	case 0:
	case bilibiliCodeRejected, bilibiliCodeTooFrequent:
		return nil, fmt.Errorf("%w: bilibili code %d: %s", shared.ErrRateLimited, envelope.Code, envelope.Message)
	case bilibiliCodeRiskControl:
		return nil, fmt.Errorf("%w: bilibili code %d: %s", shared.ErrAccessBlocked, envelope.Code, envelope.Message)
	default:
		return nil, fmt.Errorf("%w: bilibili code %d: %s", shared.ErrAPIRequest, envelope.Code, envelope.Message)
	}

	items := make([]FetchedItem, 0, len(envelope.Data.List.Vlist))
	for _, v := range envelope.Data.List.Vlist {
		externalID := creator.ExternalID
		if v.Mid != 0 {
			externalID = strconv.FormatInt(v.Mid, 10)
		}
		items = append(items, FetchedItem{
			VideoID:           v.Bvid,
			Title:             v.Title,
			ThumbnailURL:      normalizeThumbnail(v.Pic),
			PublishedAt:       time.Unix(v.Created, 0),
			CreatorExternalID: externalID,
			Platform:          models.PlatformBilibili,
			Views:             v.Play,
			Comments:          v.VideoReview,
			Duration:          parseClockDuration(v.Length),
		})
	}

	return items, nil
}

// normalizeThumbnail upgrades protocol-relative thumbnail URLs.
func normalizeThumbnail(pic string) string {
	if strings.HasPrefix(pic, "//") {
		return "https:" + pic
	}
	return pic
}

// parseClockDuration converts "MM:SS" or "HH:MM:SS" video lengths to seconds.
// Malformed input yields 0.
func parseClockDuration(length string) int {
	if length == "" {
		return 0
	}

	parts := strings.Split(length, ":")
	if len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
