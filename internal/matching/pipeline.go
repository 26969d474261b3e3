package matching

import (
	"context"
	"fmt"
	"log/slog"

	"harmonia/internal/logging"
)

// Options configures a Pipeline. Zero values fall back to repository
// defaults so the package stays usable without the config layer.
type Options struct {
	// Strategies is the ordered list of strategy names. Empty means the
	// canonical order: exact, album, year, duration, fuzzy.
	Strategies        []string
	FuzzyThreshold    float64
	DurationTolerance int
	// UseYear removes the year strategy from the pipeline when false, even
	// if it is named in Strategies.
	UseYear               bool
	SkipUnknownDuration   bool
	MaxCandidatesPerTrack int
	Logger                *slog.Logger
}

// RunResult aggregates one pipeline invocation.
type RunResult struct {
	Matches     []Match
	PerStrategy map[string]int
}

// Pipeline runs strategies in configured order against the shrinking
// unmatched-track set. Each strategy's output joins the exclusion set for
// every subsequent strategy in the same run.
type Pipeline struct {
	strategies    []Strategy
	maxCandidates int
	logger        *slog.Logger
}

// DefaultStrategyOrder is the canonical pipeline order.
var DefaultStrategyOrder = []string{"exact", "album", "year", "duration", "fuzzy"}

// NewPipeline builds a pipeline from options, resolving strategy names to
// concrete strategies.
func NewPipeline(opts Options) (*Pipeline, error) {
	names := opts.Strategies
	if len(names) == 0 {
		names = DefaultStrategyOrder
	}
	threshold := opts.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.78
	}
	logger := logging.NewComponentLogger(opts.Logger, "matcher")

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case "exact":
			strategies = append(strategies, Exact{})
		case "album":
			strategies = append(strategies, Album{})
		case "year":
			if opts.UseYear {
				strategies = append(strategies, Year{})
			}
		case "duration":
			strategies = append(strategies, DurationFilter{
				Tolerance:   opts.DurationTolerance,
				SkipUnknown: opts.SkipUnknownDuration,
			})
		case "fuzzy":
			strategies = append(strategies, Fuzzy{Threshold: threshold, Logger: logger})
		default:
			return nil, fmt.Errorf("unknown matching strategy %q", name)
		}
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no matching strategies enabled")
	}

	return &Pipeline{
		strategies:    strategies,
		maxCandidates: opts.MaxCandidatesPerTrack,
		logger:        logger,
	}, nil
}

// Run executes every strategy once. already holds track IDs to exclude from
// the whole run (typically tracks matched in a prior run); it is not
// mutated. Empty tracks or files yield zero matches, not an error.
func (p *Pipeline) Run(ctx context.Context, tracks []Track, files []LibraryFile, already map[string]struct{}) (RunResult, error) {
	result := RunResult{PerStrategy: make(map[string]int, len(p.strategies))}
	if len(tracks) == 0 || len(files) == 0 {
		return result, nil
	}

	exclude := make(map[string]struct{}, len(already))
	for id := range already {
		exclude[id] = struct{}{}
	}

	var candidates Candidates
	for _, strategy := range p.strategies {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		in := Input{
			Tracks:        tracks,
			Files:         files,
			Already:       exclude,
			Candidates:    candidates,
			MaxCandidates: p.maxCandidates,
		}
		res, err := strategy.Match(ctx, in)
		if err != nil {
			return RunResult{}, fmt.Errorf("strategy %s: %w", strategy.Name(), err)
		}

		if res.Candidates != nil {
			candidates = res.Candidates
		}

		accepted := 0
		for _, m := range res.Matches {
			// A strategy must not re-declare a matched track; drop anything
			// that slips through so exclusivity holds pipeline-wide.
			if _, dup := exclude[m.TrackID]; dup {
				continue
			}
			exclude[m.TrackID] = struct{}{}
			result.Matches = append(result.Matches, m)
			accepted++
		}
		result.PerStrategy[strategy.Name()] = accepted

		p.logger.Debug("strategy finished",
			logging.String(logging.FieldStrategy, strategy.Name()),
			logging.Int("matches", accepted),
			logging.Int("remaining", len(tracks)-len(exclude)),
		)
	}
	return result, nil
}
