package platforms

import (
	"context"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
)

// FetchedItem is the normalized shape of one recent upload returned by a
// platform adapter. It exists only in memory during a sync run; the writer
// converts surviving items into [models.Video] rows.
type FetchedItem struct {
	VideoID           string    // External item ID (bvid / videoId)
	Title             string    //
	ThumbnailURL      string    //
	PublishedAt       time.Time //
	CreatorExternalID string    // The creator the item belongs to
	Platform          string    // models.PlatformBilibili or models.PlatformYouTube
	Views             int64     //
	Comments          int64     //
	Duration          int       // Duration in seconds
}

// Platform is the adapter contract the fetch scheduler drives. Adapters are
// stateless beyond credentials and cache nothing; concurrency discipline
// (serial access for YouTube) is a caller contract, not enforced here.
type Platform interface {
	// FetchRecentItems retrieves the creator's newest uploads, normalized.
	FetchRecentItems(ctx context.Context, creator *models.Creator) ([]FetchedItem, error)

	// Name returns the platform tag (e.g. "bilibili", "youtube")
	Name() string
}
