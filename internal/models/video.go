package models

import (
	"fmt"
	"time"
)

// Video is a persisted upload row. Rows are keyed by the natural key
// (OwnerID, Platform, VideoID); writes are idempotent upserts on that
// tuple, so re-syncing the same day refreshes stats without duplicating.
type Video struct {
	RowID             string
	Sequence          int
	OwnerID           string
	Platform          string
	VideoID           string
	CreatorExternalID string
	Title             string
	ThumbnailURL      string
	PublishedAt       time.Time
	Views             int64
	Comments          int64
	Duration          int // seconds
	Created           time.Time
	Updated           time.Time
}

func (v *Video) ID() string           { return v.RowID }
func (v *Video) CreatedAt() time.Time { return v.Created }
func (v *Video) UpdatedAt() time.Time { return v.Updated }

// Validate checks required video fields.
func (v *Video) Validate() error {
	if v.OwnerID == "" {
		return fmt.Errorf("video owner_id is required")
	}
	if !KnownPlatform(v.Platform) {
		return fmt.Errorf("unknown platform %q", v.Platform)
	}
	if v.VideoID == "" {
		return fmt.Errorf("video video_id is required")
	}
	return nil
}

// Key returns the video's natural key in owner/platform/id form.
func (v *Video) Key() string {
	return v.OwnerID + "/" + v.Platform + "/" + v.VideoID
}
