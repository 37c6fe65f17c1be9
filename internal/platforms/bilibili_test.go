package platforms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
)

const arcSearchBody = `{
	"code": 0,
	"message": "0",
	"data": {
		"list": {
			"vlist": [
				{
					"aid": 114514,
					"bvid": "BV1xx411c7mD",
					"title": "first upload",
					"pic": "//i0.hdslb.com/bfs/archive/cover1.jpg",
					"created": 1749913200,
					"play": 12034,
					"video_review": 88,
					"length": "12:34",
					"mid": 12345,
					"author": "some uploader"
				},
				{
					"aid": 114515,
					"bvid": "BV1yy411c7mE",
					"title": "second upload",
					"pic": "https://i0.hdslb.com/bfs/archive/cover2.jpg",
					"created": 1749826800,
					"play": 523,
					"video_review": 3,
					"length": "1:02:03",
					"mid": 12345,
					"author": "some uploader"
				}
			]
		}
	}
}`

func testCreator() *models.Creator {
	return &models.Creator{
		OwnerID:     "local",
		Platform:    models.PlatformBilibili,
		DisplayName: "some uploader",
		ExternalID:  "12345",
	}
}

func TestBilibiliService_FetchRecentItems(t *testing.T) {
	var gotPath, gotMid string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMid = r.URL.Query().Get("mid")
		fmt.Fprint(w, arcSearchBody)
	}))
	defer server.Close()

	svc := NewBilibiliService(BilibiliOpts{BaseURL: server.URL, RateLimit: 1000})

	items, err := svc.FetchRecentItems(context.Background(), testCreator())
	if err != nil {
		t.Fatalf("FetchRecentItems() error = %v", err)
	}

	if gotPath != "/x/space/arc/search" {
		t.Errorf("request path = %s", gotPath)
	}
	if gotMid != "12345" {
		t.Errorf("mid param = %s, want 12345", gotMid)
	}

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	first := items[0]
	if first.VideoID != "BV1xx411c7mD" {
		t.Errorf("videoID = %s", first.VideoID)
	}
	if first.Platform != models.PlatformBilibili {
		t.Errorf("platform = %s", first.Platform)
	}
	if first.CreatorExternalID != "12345" {
		t.Errorf("creatorExternalID = %s", first.CreatorExternalID)
	}
	if first.ThumbnailURL != "https://i0.hdslb.com/bfs/archive/cover1.jpg" {
		t.Errorf("protocol-relative thumbnail not normalized: %s", first.ThumbnailURL)
	}
	if first.Views != 12034 || first.Comments != 88 {
		t.Errorf("stats = %d views / %d comments", first.Views, first.Comments)
	}
	if first.Duration != 12*60+34 {
		t.Errorf("duration = %d, want %d", first.Duration, 12*60+34)
	}
	if items[1].Duration != 3723 {
		t.Errorf("hour-long duration = %d, want 3723", items[1].Duration)
	}
	if first.PublishedAt.Unix() != 1749913200 {
		t.Errorf("publishedAt = %v", first.PublishedAt)
	}
}

func TestBilibiliService_ErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{
			name:     "code -412 throttle",
			status:   http.StatusOK,
			body:     `{"code": -412, "message": "request was rejected"}`,
			sentinel: shared.ErrRateLimited,
		},
		{
			name:     "code -799 frequency",
			status:   http.StatusOK,
			body:     `{"code": -799, "message": "too frequent"}`,
			sentinel: shared.ErrRateLimited,
		},
		{
			name:     "code -352 risk control",
			status:   http.StatusOK,
			body:     `{"code": -352, "message": "risk control"}`,
			sentinel: shared.ErrAccessBlocked,
		},
		{
			name:     "other nonzero code",
			status:   http.StatusOK,
			body:     `{"code": -404, "message": "no such user"}`,
			sentinel: shared.ErrAPIRequest,
		},
		{
			name:     "http 412 edge throttle",
			status:   http.StatusPreconditionFailed,
			body:     ``,
			sentinel: shared.ErrRateLimited,
		},
		{
			name:     "http 429",
			status:   http.StatusTooManyRequests,
			body:     ``,
			sentinel: shared.ErrRateLimited,
		},
		{
			name:     "http 500",
			status:   http.StatusInternalServerError,
			body:     ``,
			sentinel: shared.ErrAPIRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			svc := NewBilibiliService(BilibiliOpts{BaseURL: server.URL, RateLimit: 1000})

			_, err := svc.FetchRecentItems(context.Background(), testCreator())
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestBilibiliService_RejectsNonNumericUID(t *testing.T) {
	svc := NewBilibiliService(BilibiliOpts{})

	creator := testCreator()
	creator.ExternalID = "UCabcdef"

	_, err := svc.FetchRecentItems(context.Background(), creator)
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseClockDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"0:45", 45},
		{"12:34", 754},
		{"1:02:03", 3723},
		{"10:00:00", 36000},
		{"abc", 0},
		{"1:2:3:4", 0},
		{"-1:30", 0},
	}

	for _, tt := range tests {
		if got := parseClockDuration(tt.in); got != tt.want {
			t.Errorf("parseClockDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
