package matching

import "context"

// Input is the shared contract every strategy consumes. Tracks and Files are
// in stable upstream order; strategies rely on that order for deterministic
// tie-breaking. Already holds track IDs that must not be re-declared.
type Input struct {
	Tracks []Track
	Files  []LibraryFile
	// Already contains track IDs matched earlier, either in this run by a
	// prior strategy or in a prior run when the caller excludes them.
	Already map[string]struct{}
	// Candidates is the narrowed search space produced by a prefilter
	// earlier in the pipeline; nil when no prefilter ran.
	Candidates Candidates
	// MaxCandidates caps per-track fan-out. Zero means unlimited.
	MaxCandidates int
}

// Result is a strategy's output: zero or more new matches plus the IDs of
// the tracks they cover. Prefilter-style strategies return Candidates
// instead of matches.
type Result struct {
	Matches    []Match
	MatchedIDs []string
	Candidates Candidates
}

// Strategy is one stage of the matching pipeline.
type Strategy interface {
	Name() string
	Match(ctx context.Context, in Input) (Result, error)
}

func (in Input) matched(trackID string) bool {
	_, ok := in.Already[trackID]
	return ok
}

func newMatch(t Track, f LibraryFile, score float64, method Method) Match {
	return Match{
		TrackID:  t.ID,
		Provider: t.Provider,
		FileID:   f.ID,
		Score:    score,
		Method:   method,
	}
}

func appendMatch(res *Result, m Match) {
	res.Matches = append(res.Matches, m)
	res.MatchedIDs = append(res.MatchedIDs, m.TrackID)
}
