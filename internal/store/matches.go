package store

import (
	"context"
	"errors"
	"fmt"

	"harmonia/internal/matching"
)

// UpsertMatch records a match. An existing (track_id, provider, file_id)
// row has its score and method overwritten; duplicates are impossible by
// construction, which keeps re-runs idempotent.
func (s *Store) UpsertMatch(ctx context.Context, m matching.Match) error {
	if m.TrackID == "" || m.Provider == "" || m.FileID == 0 {
		return errors.New("match requires track id, provider, and file id")
	}
	now := nowStamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO matches (track_id, provider, file_id, score, method, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(track_id, provider, file_id) DO UPDATE SET
             score = excluded.score, method = excluded.method,
             updated_at = excluded.updated_at`,
		m.TrackID,
		m.Provider,
		m.FileID,
		m.Score,
		m.Method.String(),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

// ListMatches returns matches, optionally scoped to one provider (nil means
// all providers), in stable key order. Export and push consumers read these.
func (s *Store) ListMatches(ctx context.Context, provider *string) ([]matching.Match, error) {
	query := `SELECT track_id, provider, file_id, score, method FROM matches`
	var args []any
	if provider != nil {
		query += ` WHERE provider = ?`
		args = append(args, *provider)
	}
	query += ` ORDER BY provider, track_id, file_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []matching.Match
	for rows.Next() {
		var (
			m      matching.Match
			method string
		)
		if err := rows.Scan(&m.TrackID, &m.Provider, &m.FileID, &m.Score, &method); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Method = matching.ParseMethod(method)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// MatchedTrackIDs returns the IDs of tracks that already have a match in the
// given provider namespace. The orchestrator excludes them from re-runs.
func (s *Store) MatchedTrackIDs(ctx context.Context, provider string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT DISTINCT track_id FROM matches WHERE provider = ?`,
		provider,
	)
	if err != nil {
		return nil, fmt.Errorf("matched track ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan track id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// CountMatches returns the number of match rows, optionally scoped to one
// provider.
func (s *Store) CountMatches(ctx context.Context, provider *string) (int, error) {
	query := `SELECT COUNT(1) FROM matches`
	var args []any
	if provider != nil {
		query += ` WHERE provider = ?`
		args = append(args, *provider)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

// DeleteMatchesByTrackIDs removes all matches touching the given track IDs
// within a provider namespace; used when upstream tracks are pruned.
func (s *Store) DeleteMatchesByTrackIDs(ctx context.Context, provider string, ids []string) (int64, error) {
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
		`DELETE FROM matches WHERE provider = ? AND track_id IN (`+makePlaceholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete matches by track: %w", err)
	}
	return res.RowsAffected()
}

// DeleteMatchesByFileIDs removes all matches touching the given file IDs
// across providers; used when files disappear from the library.
func (s *Store) DeleteMatchesByFileIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM matches WHERE file_id IN (`+makePlaceholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete matches by file: %w", err)
	}
	return res.RowsAffected()
}

// MatchConfidenceCounts groups match rows by their raw method string,
// optionally scoped to one provider. Nil means all providers; defaulting to
// a specific one is a caller decision, never the store's.
func (s *Store) MatchConfidenceCounts(ctx context.Context, provider *string) (map[string]int, error) {
	query := `SELECT method, COUNT(1) FROM matches`
	var args []any
	if provider != nil {
		query += ` WHERE provider = ?`
		args = append(args, *provider)
	}
	query += ` GROUP BY method`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("confidence counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			method string
			count  int
		)
		if err := rows.Scan(&method, &count); err != nil {
			return nil, fmt.Errorf("scan confidence count: %w", err)
		}
		counts[method] = count
	}
	return counts, rows.Err()
}

// MatchTierCounts folds the confidence counts down to the extracted tier
// bucket only, tolerating detail suffixes with extra delimiters.
func (s *Store) MatchTierCounts(ctx context.Context, provider *string) (map[matching.Tier]int, error) {
	raw, err := s.MatchConfidenceCounts(ctx, provider)
	if err != nil {
		return nil, err
	}
	counts := make(map[matching.Tier]int, len(raw))
	for method, count := range raw {
		counts[matching.ParseTier(method)] += count
	}
	return counts, nil
}
