package models

import (
	"fmt"
	"time"
)

// Creator is a tracked content source (channel/uploader) the user follows.
//
// ExternalID is the creator's identity on its platform: a numeric UID
// rendered as a string for Bilibili, a channel ID for YouTube. Creators are
// read-only to the sync engine for the duration of a run.
type Creator struct {
	RowID       string
	Sequence    int
	OwnerID     string
	Platform    string
	DisplayName string
	ExternalID  string
	Created     time.Time
	Updated     time.Time
	Deleted     *time.Time
}

// NewCreator constructs an unpersisted Creator owned by ownerID.
func NewCreator(ownerID, platform, displayName, externalID string) *Creator {
	now := time.Now()
	return &Creator{
		OwnerID:     ownerID,
		Platform:    platform,
		DisplayName: displayName,
		ExternalID:  externalID,
		Created:     now,
		Updated:     now,
	}
}

func (c *Creator) ID() string           { return c.RowID }
func (c *Creator) CreatedAt() time.Time { return c.Created }
func (c *Creator) UpdatedAt() time.Time { return c.Updated }

// Validate checks required creator fields.
func (c *Creator) Validate() error {
	if c.OwnerID == "" {
		return fmt.Errorf("creator owner_id is required")
	}
	if !KnownPlatform(c.Platform) {
		return fmt.Errorf("unknown platform %q", c.Platform)
	}
	if c.ExternalID == "" {
		return fmt.Errorf("creator external_id is required")
	}
	return nil
}
