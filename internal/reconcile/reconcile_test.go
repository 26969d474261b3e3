package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"harmonia/internal/dblock"
	"harmonia/internal/logging"
	"harmonia/internal/matching"
	"harmonia/internal/reconcile"
	"harmonia/internal/testsupport"
)

func TestRunMatchesAndPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seed := []matching.Track{
		{ID: "t1", Provider: "spotify", Name: "Fifteen Step", Artist: "Radiohead", ISRC: "GBU4B0700099"},
		{ID: "t2", Provider: "spotify", Name: "Nude", Artist: "Radiohead"},
	}
	for _, tr := range seed {
		if err := st.UpsertTrack(ctx, tr); err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}
	for _, f := range []matching.LibraryFile{
		{Path: "/m/fifteen-step.flac", Title: "Fifteen Step", Artist: "Radiohead", ISRC: "GBU4B0700099", Duration: 237},
		{Path: "/m/nude.flac", Title: "Nude", Artist: "Radiohead", Duration: 255},
	} {
		if _, err := st.UpsertLibraryFile(ctx, f); err != nil {
			t.Fatalf("UpsertLibraryFile failed: %v", err)
		}
	}

	r := reconcile.New(cfg, st, logging.NewNop())
	stats, err := r.Run(ctx, "spotify")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.NewMatches != 2 {
		t.Fatalf("expected 2 new matches, got %+v", stats)
	}
	if stats.Tracks != 2 || stats.Files != 2 || stats.PreviouslyMatched != 0 {
		t.Fatalf("unexpected run stats: %+v", stats)
	}
	if stats.RunID == "" {
		t.Fatal("expected a run ID")
	}

	count, err := st.CountMatches(ctx, nil)
	if err != nil {
		t.Fatalf("CountMatches failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 persisted matches, got %d", count)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.UpsertTrack(ctx, matching.Track{
		ID: "t1", Provider: "spotify", Name: "Reckoner", Artist: "Radiohead",
	}); err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}
	if _, err := st.UpsertLibraryFile(ctx, matching.LibraryFile{
		Path: "/m/reckoner.flac", Title: "Reckoner", Artist: "Radiohead", Duration: 290,
	}); err != nil {
		t.Fatalf("UpsertLibraryFile failed: %v", err)
	}

	r := reconcile.New(cfg, st, logging.NewNop())
	first, err := r.Run(ctx, "spotify")
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if first.NewMatches != 1 {
		t.Fatalf("expected 1 new match, got %+v", first)
	}

	second, err := r.Run(ctx, "spotify")
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if second.NewMatches != 0 || second.PreviouslyMatched != 1 {
		t.Fatalf("rerun must find nothing new: %+v", second)
	}

	count, err := st.CountMatches(ctx, nil)
	if err != nil {
		t.Fatalf("CountMatches failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("rerun must not grow the matches table, count=%d", count)
	}
}

func TestRunWithEmptyStoreSucceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	r := reconcile.New(cfg, st, logging.NewNop())
	stats, err := r.Run(context.Background(), "spotify")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.NewMatches != 0 || stats.Tracks != 0 || stats.Files != 0 {
		t.Fatalf("empty store should be a zero-match success: %+v", stats)
	}
}

func TestRunRequiresProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	r := reconcile.New(cfg, st, logging.NewNop())
	if _, err := r.Run(context.Background(), ""); err == nil {
		t.Fatal("expected an error for empty provider")
	}
}

func TestRunSurfacesLockTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Database.LockTimeout = 1
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	holder := dblock.New(st.Path())
	if err := holder.Acquire(ctx, time.Second); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer holder.Release()

	r := reconcile.New(cfg, st, logging.NewNop())
	_, err := r.Run(ctx, "spotify")
	if !errors.Is(err, dblock.ErrTimeout) {
		t.Fatalf("expected lock timeout to surface, got %v", err)
	}
}
