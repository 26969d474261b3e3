package matching

import (
	"context"
	"log/slog"
	"time"

	"harmonia/internal/logging"
)

// fuzzyHighTier is the score at which a fuzzy match is promoted from
// moderate to high confidence.
const fuzzyHighTier = 0.90

// Fuzzy compares each unmatched track's normalized key against its candidate
// files (the prefiltered set when one exists, the full library otherwise)
// and keeps the single best candidate at or above Threshold. This is the
// CPU-bound long tail of a run, so it reports throttled progress telemetry
// as it goes.
type Fuzzy struct {
	// Threshold is the minimum accepted similarity (0.0-1.0).
	Threshold float64
	// Logger receives progress records; nil disables telemetry.
	Logger *slog.Logger
}

func (Fuzzy) Name() string { return "fuzzy" }

func (s Fuzzy) Match(ctx context.Context, in Input) (Result, error) {
	var res Result

	byID := make(map[int64]LibraryFile, len(in.Files))
	for _, f := range in.Files {
		byID[f.ID] = f
	}

	pending := make([]Track, 0, len(in.Tracks))
	for _, t := range in.Tracks {
		if !in.matched(t.ID) {
			pending = append(pending, t)
		}
	}

	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	sampler := logging.NewProgressSampler(5)
	start := time.Now()

	for i, t := range pending {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		candidates := s.candidatesFor(t, in, byID)
		if f, score, ok := s.best(t, candidates); ok {
			tier := TierModerate
			if score >= fuzzyHighTier {
				tier = TierHigh
			}
			appendMatch(&res, newMatch(t, f, score, Method{Tier: tier, Detail: "fuzzy"}))
		}

		done := i + 1
		percent := float64(done) / float64(len(pending)) * 100
		if sampler.ShouldLog(percent, "fuzzy") {
			elapsed := time.Since(start)
			rate := float64(done) / maxSeconds(elapsed)
			var eta time.Duration
			if rate > 0 {
				eta = time.Duration(float64(len(pending)-done)/rate) * time.Second
			}
			logger.Info("fuzzy matching progress",
				logging.Float64(logging.FieldPercent, percent),
				logging.Int("compared", done),
				logging.Int("total", len(pending)),
				logging.Float64(logging.FieldRate, rate),
				logging.Duration(logging.FieldETA, eta),
			)
		}
	}
	return res, nil
}

// candidatesFor resolves the candidate list for one track. A present map
// entry (even empty) is authoritative; a missing entry falls back to the
// full file list.
func (s Fuzzy) candidatesFor(t Track, in Input, byID map[int64]LibraryFile) []LibraryFile {
	if in.Candidates != nil {
		if ids, ok := in.Candidates[t.ID]; ok {
			files := make([]LibraryFile, 0, len(ids))
			for _, id := range ids {
				if f, ok := byID[id]; ok {
					files = append(files, f)
				}
			}
			return files
		}
	}
	return capCandidates(in.Files, in.MaxCandidates)
}

// best keeps the single highest-scoring candidate; strictly-greater
// comparison makes the first candidate in stable input order win ties.
func (s Fuzzy) best(t Track, candidates []LibraryFile) (LibraryFile, float64, bool) {
	if t.Normalized == "" {
		return LibraryFile{}, 0, false
	}
	var (
		best      LibraryFile
		bestScore float64
		found     bool
	)
	for _, f := range candidates {
		if f.Normalized == "" {
			continue
		}
		score := TokenSetRatio(t.Normalized, f.Normalized)
		if score < s.Threshold {
			continue
		}
		if score > bestScore || !found {
			best = f
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}

func maxSeconds(d time.Duration) float64 {
	s := d.Seconds()
	if s < 1e-3 {
		return 1e-3
	}
	return s
}
