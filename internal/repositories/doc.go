// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [CreatorRepository] : Tracked creator persistence; the creator-list provider for the sync engine
//   - [VideoRepository] : Synced video rows with single-round-trip existence checks and idempotent batch upserts
//   - [StateRepository] : Last-run bookkeeping for the periodic auto-sync check
//
// Creators support soft deletes via deleted_at timestamps and are excluded
// from queries by default; untracking a creator keeps its synced videos.
// Sequence numbers provide stable, human-readable ordering independent of
// UUIDs; the [NextSequence] function atomically increments per-table
// counters in dedicated sequence tables.
package repositories
