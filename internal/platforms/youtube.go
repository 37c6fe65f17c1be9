// YouTube Data API v3 [Platform] implementation
//
// Two requests per creator: search.list for the newest uploads, then
// videos.list to enrich duration and statistics. The API enforces a hard
// daily quota, so the sync scheduler drives this adapter serially.
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
	"golang.org/x/oauth2"
)

const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	youtubeMaxResults     = 15
)

// YouTubeService implements the Platform interface for YouTube channels.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube platform adapter.
func NewYouTubeService(baseURL, apiKey string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// Name returns the platform tag.
func (y *YouTubeService) Name() string {
	return models.PlatformYouTube
}

// Authenticate configures request authentication. Expects either an
// "api_key" or an "access_token" in credentials; a token switches the
// client to OAuth2 bearer auth.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if key, ok := credentials["api_key"]; ok && key != "" {
		y.apiKey = key
		return nil
	}

	if token, ok := credentials["access_token"]; ok && token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		y.httpClient = oauth2.NewClient(ctx, src)
		return nil
	}

	return fmt.Errorf("%w: missing api_key or access_token", shared.ErrMissingCredentials)
}

type youtubeErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID   string `json:"channelId"`
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// FetchRecentItems retrieves the channel's newest uploads with statistics.
//
// Issues the search call, then one videos call for the returned IDs.
// Callers must not invoke this concurrently for multiple creators; quota
// discipline is the scheduler's contract.
func (y *YouTubeService) FetchRecentItems(ctx context.Context, creator *models.Creator) ([]FetchedItem, error) {
	if creator == nil {
		return nil, fmt.Errorf("%w: nil creator", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", creator.ExternalID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(youtubeMaxResults))

	var search youtubeSearchResponse
	if err := y.doRequest(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	if len(search.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	params = url.Values{}
	params.Set("part", "contentDetails,statistics")
	params.Set("id", strings.Join(ids, ","))

	var details youtubeVideosResponse
	if err := y.doRequest(ctx, "/videos", params, &details); err != nil {
		return nil, err
	}

	type stats struct {
		views    int64
		comments int64
		duration int
	}
	statsByID := make(map[string]stats, len(details.Items))
	for _, item := range details.Items {
		views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		comments, _ := strconv.ParseInt(item.Statistics.CommentCount, 10, 64)
		statsByID[item.ID] = stats{
			views:    views,
			comments: comments,
			duration: parseISODuration(item.ContentDetails.Duration),
		}
	}

	items := make([]FetchedItem, 0, len(search.Items))
	for _, result := range search.Items {
		if result.ID.VideoID == "" {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, result.Snippet.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		channelID := result.Snippet.ChannelID
		if channelID == "" {
			channelID = creator.ExternalID
		}

		item := FetchedItem{
			VideoID:           result.ID.VideoID,
			Title:             result.Snippet.Title,
			ThumbnailURL:      result.Snippet.Thumbnails.Medium.URL,
			PublishedAt:       publishedAt,
			CreatorExternalID: channelID,
			Platform:          models.PlatformYouTube,
		}
		if s, ok := statsByID[result.ID.VideoID]; ok {
			item.Views = s.views
			item.Comments = s.comments
			item.Duration = s.duration
		}
		items = append(items, item)
	}

	return items, nil
}

// doRequest performs one Data API call and decodes the result, mapping
// quota and lockout reasons onto the shared sentinels.
func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if y.apiKey != "" {
		params.Set("key", y.apiKey)
	}

	apiURL := y.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body youtubeErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && len(body.Error.Errors) > 0 {
			reason := body.Error.Errors[0].Reason
			switch reason {
			case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded":
				return fmt.Errorf("%w: youtube %s: %s", shared.ErrRateLimited, reason, body.Error.Message)
			case "accountSuspended", "accessNotConfigured":
				return fmt.Errorf("%w: youtube %s: %s", shared.ErrAccessBlocked, reason, body.Error.Message)
			default:
				return fmt.Errorf("%w: youtube %s (status %d): %s", shared.ErrAPIRequest, reason, resp.StatusCode, body.Error.Message)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: youtube status %d", shared.ErrRateLimited, resp.StatusCode)
		}
		return fmt.Errorf("%w: youtube status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseISODuration converts ISO-8601 durations like "PT1H2M3S" to seconds.
// Date components are not used by video durations and are ignored.
func parseISODuration(iso string) int {
	s, ok := strings.CutPrefix(iso, "PT")
	if !ok || s == "" {
		return 0
	}

	total := 0
	num := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'H':
			total += num * 3600
			num = 0
		case r == 'M':
			total += num * 60
			num = 0
		case r == 'S':
			total += num
			num = 0
		default:
			return 0
		}
	}
	return total
}
