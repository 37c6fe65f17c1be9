// Package platforms defines the [Platform] adapter interface for video
// services and implements it for Bilibili and YouTube.
//
// # Platform Interface
//
// Both adapters normalize provider responses into [FetchedItem] so the sync
// engine stays platform-agnostic. Adapter selection happens once per
// creator by platform tag.
//
// # Bilibili Implementation
//
// [BilibiliService] issues one space arc-search request per creator and may
// be called for many creators concurrently. The upstream enforces an
// undocumented global rate limit surfaced as code -412; account lockout
// ("risk control") is code -352. Client-side pacing uses
// [golang.org/x/time/rate].
//
// # YouTube Implementation
//
// [YouTubeService] issues two requests per creator: a search for recent
// uploads, then a videos call enriching duration and view/comment counts.
// The Data API enforces a hard daily quota, so callers must never invoke
// this adapter for more than one creator at a time. Supports API keys and
// OAuth2 bearer tokens via [golang.org/x/oauth2].
//
// # Error Handling
//
// Adapters wrap throttling signals in [shared.ErrRateLimited] and lockout
// signals in [shared.ErrAccessBlocked]; everything else surfaces as
// [shared.ErrAPIRequest]. The engine's classifier keys off these sentinels.
package platforms
