package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"harmonia/internal/matching"
	"harmonia/internal/normalize"
)

// UpsertTrack inserts or refreshes a provider track. The normalized key is
// computed here, at the ingestion boundary, when the caller did not supply
// one; the matcher itself never normalizes.
func (s *Store) UpsertTrack(ctx context.Context, t matching.Track) error {
	if t.ID == "" || t.Provider == "" {
		return errors.New("track requires id and provider")
	}
	if t.Normalized == "" {
		t.Normalized = normalize.Key(t.Name, t.Artist)
	}
	now := nowStamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tracks (
            id, provider, name, artist, album, album_id, artist_id,
            year, isrc, duration_ms, normalized, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id, provider) DO UPDATE SET
            name = excluded.name, artist = excluded.artist,
            album = excluded.album, album_id = excluded.album_id,
            artist_id = excluded.artist_id, year = excluded.year,
            isrc = excluded.isrc, duration_ms = excluded.duration_ms,
            normalized = excluded.normalized, updated_at = excluded.updated_at`,
		t.ID,
		t.Provider,
		t.Name,
		t.Artist,
		t.Album,
		t.AlbumID,
		t.ArtistID,
		nullableInt(t.Year),
		nullableString(t.ISRC),
		nullableInt64(t.DurationMS),
		t.Normalized,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert track: %w", err)
	}
	return nil
}

// ListTracks returns every track for a provider in stable (id) order. The
// matcher's tie-breaks depend on that ordering.
func (s *Store) ListTracks(ctx context.Context, provider string) ([]matching.Track, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, provider, name, artist, album, album_id, artist_id,
                year, isrc, duration_ms, normalized
         FROM tracks WHERE provider = ? ORDER BY id`,
		provider,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []matching.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// DeleteTracks removes tracks by ID within a provider. Matches referencing
// them are cleaned up separately via DeleteMatchesByTrackIDs.
func (s *Store) DeleteTracks(ctx context.Context, provider string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, provider)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tracks WHERE provider = ? AND id IN (`+makePlaceholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete tracks: %w", err)
	}
	return res.RowsAffected()
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (matching.Track, error) {
	var (
		t        matching.Track
		year     sql.NullInt64
		isrc     sql.NullString
		duration sql.NullInt64
	)
	if err := scanner.Scan(
		&t.ID,
		&t.Provider,
		&t.Name,
		&t.Artist,
		&t.Album,
		&t.AlbumID,
		&t.ArtistID,
		&year,
		&isrc,
		&duration,
		&t.Normalized,
	); err != nil {
		return matching.Track{}, fmt.Errorf("scan track: %w", err)
	}
	t.Year = int(year.Int64)
	t.ISRC = isrc.String
	t.DurationMS = duration.Int64
	return t, nil
}
