package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"harmonia/internal/matching"
	"harmonia/internal/normalize"
)

// UpsertLibraryFile inserts or refreshes a scanned file keyed by path and
// returns the store-assigned ID. As with tracks, the normalized key is
// filled in at this boundary when absent.
func (s *Store) UpsertLibraryFile(ctx context.Context, f matching.LibraryFile) (int64, error) {
	if f.Path == "" {
		return 0, errors.New("library file requires a path")
	}
	if f.Normalized == "" {
		f.Normalized = normalize.Key(f.Title, f.Artist)
	}
	now := nowStamp()

	var mtime any
	if !f.ModTime.IsZero() {
		mtime = f.ModTime.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO library_files (
            path, title, artist, album, year, duration, isrc, normalized,
            size, mtime, partial_hash, bitrate_kbps, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            title = excluded.title, artist = excluded.artist,
            album = excluded.album, year = excluded.year,
            duration = excluded.duration, isrc = excluded.isrc,
            normalized = excluded.normalized, size = excluded.size,
            mtime = excluded.mtime, partial_hash = excluded.partial_hash,
            bitrate_kbps = excluded.bitrate_kbps, updated_at = excluded.updated_at`,
		f.Path,
		f.Title,
		f.Artist,
		f.Album,
		nullableInt(f.Year),
		nullableInt(f.Duration),
		nullableString(f.ISRC),
		f.Normalized,
		nullableInt64(f.Size),
		mtime,
		nullableString(f.PartialHash),
		nullableInt(f.BitrateKbps),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert library file: %w", err)
	}

	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT id FROM library_files WHERE path = ?`, f.Path)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve file id: %w", err)
	}
	return id, nil
}

// ListLibraryFiles returns every scanned file in stable (id) order.
func (s *Store) ListLibraryFiles(ctx context.Context) ([]matching.LibraryFile, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, path, title, artist, album, year, duration, isrc,
                normalized, size, mtime, partial_hash, bitrate_kbps
         FROM library_files ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list library files: %w", err)
	}
	defer rows.Close()

	var files []matching.LibraryFile
	for rows.Next() {
		f, err := scanLibraryFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteLibraryFiles removes files by ID. Matches referencing them are
// cleaned up separately via DeleteMatchesByFileIDs.
func (s *Store) DeleteLibraryFiles(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM library_files WHERE id IN (`+makePlaceholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete library files: %w", err)
	}
	return res.RowsAffected()
}

func scanLibraryFile(scanner interface{ Scan(dest ...any) error }) (matching.LibraryFile, error) {
	var (
		f        matching.LibraryFile
		year     sql.NullInt64
		duration sql.NullInt64
		isrc     sql.NullString
		size     sql.NullInt64
		mtimeRaw sql.NullString
		hash     sql.NullString
		bitrate  sql.NullInt64
	)
	if err := scanner.Scan(
		&f.ID,
		&f.Path,
		&f.Title,
		&f.Artist,
		&f.Album,
		&year,
		&duration,
		&isrc,
		&f.Normalized,
		&size,
		&mtimeRaw,
		&hash,
		&bitrate,
	); err != nil {
		return matching.LibraryFile{}, fmt.Errorf("scan library file: %w", err)
	}
	f.Year = int(year.Int64)
	f.Duration = int(duration.Int64)
	f.ISRC = isrc.String
	f.Size = size.Int64
	f.PartialHash = hash.String
	f.BitrateKbps = int(bitrate.Int64)
	if mtimeRaw.Valid {
		if parsed, err := parseTimeString(mtimeRaw.String); err == nil {
			f.ModTime = parsed
		}
	}
	return f, nil
}
