package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"harmonia/internal/config"
	"harmonia/internal/dblock"
	"harmonia/internal/logging"
	"harmonia/internal/matching"
	"harmonia/internal/store"
)

// Stats summarizes one reconciliation run.
type Stats struct {
	RunID             string
	Provider          string
	Tracks            int
	Files             int
	PreviouslyMatched int
	NewMatches        int
	PerStrategy       map[string]int
	Elapsed           time.Duration
}

// Reconciler binds the store, the pipeline configuration, and the database
// lock into a single Run entry point.
type Reconciler struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// New builds a Reconciler. A nil logger silences run logging.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "reconcile"),
	}
}

// Run matches every unmatched track of the given provider against the
// library and persists the results. The database lock is held for the
// duration of the matching and write phase, so concurrent runs serialize.
func (r *Reconciler) Run(ctx context.Context, provider string) (Stats, error) {
	if provider == "" {
		return Stats{}, fmt.Errorf("reconcile requires a provider")
	}
	start := time.Now()
	stats := Stats{RunID: uuid.NewString(), Provider: provider}

	tracks, err := r.store.ListTracks(ctx, provider)
	if err != nil {
		return Stats{}, fmt.Errorf("load tracks: %w", err)
	}
	files, err := r.store.ListLibraryFiles(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load library files: %w", err)
	}
	matched, err := r.store.MatchedTrackIDs(ctx, provider)
	if err != nil {
		return Stats{}, fmt.Errorf("load matched track ids: %w", err)
	}
	stats.Tracks = len(tracks)
	stats.Files = len(files)
	stats.PreviouslyMatched = len(matched)

	pipeline, err := matching.NewPipeline(matching.Options{
		Strategies:            r.cfg.Matching.Strategies,
		FuzzyThreshold:        r.cfg.Matching.FuzzyThreshold,
		DurationTolerance:     r.cfg.Matching.DurationTolerance,
		UseYear:               r.cfg.Matching.UseYear,
		SkipUnknownDuration:   r.cfg.Matching.SkipUnknownDuration,
		MaxCandidatesPerTrack: r.cfg.Matching.MaxCandidatesPerTrack,
		Logger:                r.logger,
	})
	if err != nil {
		return Stats{}, err
	}

	r.logger.Info("run started",
		logging.String(logging.FieldRunID, stats.RunID),
		logging.String(logging.FieldProvider, provider),
		logging.Int("tracks", stats.Tracks),
		logging.Int("files", stats.Files),
		logging.Int("previously_matched", stats.PreviouslyMatched),
	)

	lock := dblock.New(r.store.Path())
	timeout := time.Duration(r.cfg.Database.LockTimeout) * time.Second
	err = lock.WithLock(ctx, timeout, func() error {
		result, err := pipeline.Run(ctx, tracks, files, matched)
		if err != nil {
			return err
		}
		for _, m := range result.Matches {
			if err := r.store.UpsertMatch(ctx, m); err != nil {
				return err
			}
		}
		stats.NewMatches = len(result.Matches)
		stats.PerStrategy = result.PerStrategy
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("reconcile %s: %w", provider, err)
	}

	stats.Elapsed = time.Since(start)
	r.logger.Info("run finished",
		logging.String(logging.FieldRunID, stats.RunID),
		logging.String(logging.FieldProvider, provider),
		logging.Int("new_matches", stats.NewMatches),
		logging.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}
