// Package store persists provider tracks, scanned library files, and the
// matches between them in an embedded SQLite database. Match writes are
// idempotent upserts keyed by (track_id, provider, file_id); repeated runs
// overwrite score and method instead of inserting duplicates.
package store
