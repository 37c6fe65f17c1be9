// Package models defines domain entities and persistence interfaces for the uptrack creator tracking service.
//
// Persistent entities:
//   - [Creator] : A tracked content source on one platform, keyed by (owner_id, platform, external_id)
//   - [Video] : A synced upload, keyed by the natural key (owner_id, platform, video_id)
//
// Both implement the [Model] interface providing ID access, timestamps, and validation.
// The [Repository] interface defines standard CRUD operations for database access.
//
// Platform tags are a closed set ([PlatformBilibili], [PlatformYouTube]);
// [KnownPlatform] guards writes against rows from untracked platforms.
package models
