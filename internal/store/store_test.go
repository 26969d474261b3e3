package store_test

import (
	"context"
	"testing"

	"harmonia/internal/matching"
	"harmonia/internal/testsupport"
)

func strPtr(s string) *string { return &s }

func TestUpsertTrackComputesNormalizedKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := st.UpsertTrack(ctx, matching.Track{
		ID:       "t1",
		Provider: "spotify",
		Name:     "Karma Police",
		Artist:   "Radiohead",
	})
	if err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}

	tracks, err := st.ListTracks(ctx, "spotify")
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Normalized != "karma police radiohead" {
		t.Fatalf("normalized key not computed at ingestion: %#v", tracks)
	}
}

func TestUpsertTrackOverwritesExistingRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := matching.Track{ID: "t1", Provider: "spotify", Name: "Old Name", Artist: "Someone"}
	if err := st.UpsertTrack(ctx, base); err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}
	base.Name = "New Name"
	if err := st.UpsertTrack(ctx, base); err != nil {
		t.Fatalf("second UpsertTrack failed: %v", err)
	}

	tracks, err := st.ListTracks(ctx, "spotify")
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Name != "New Name" {
		t.Fatalf("expected single updated row, got %#v", tracks)
	}
}

func TestListTracksScopedByProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, tr := range []matching.Track{
		{ID: "t1", Provider: "spotify", Name: "A", Artist: "X"},
		{ID: "t1", Provider: "tidal", Name: "A", Artist: "X"},
	} {
		if err := st.UpsertTrack(ctx, tr); err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}

	tracks, err := st.ListTracks(ctx, "spotify")
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Provider != "spotify" {
		t.Fatalf("provider scoping broken: %#v", tracks)
	}
}

func TestUpsertLibraryFileKeyedByPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id1, err := st.UpsertLibraryFile(ctx, matching.LibraryFile{
		Path: "/music/karma.flac", Title: "Karma Police", Artist: "Radiohead", Duration: 261,
	})
	if err != nil {
		t.Fatalf("UpsertLibraryFile failed: %v", err)
	}
	id2, err := st.UpsertLibraryFile(ctx, matching.LibraryFile{
		Path: "/music/karma.flac", Title: "Karma Police", Artist: "Radiohead", Duration: 262,
	})
	if err != nil {
		t.Fatalf("second UpsertLibraryFile failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("path-keyed upsert must keep the ID stable: %d vs %d", id1, id2)
	}

	files, err := st.ListLibraryFiles(ctx)
	if err != nil {
		t.Fatalf("ListLibraryFiles failed: %v", err)
	}
	if len(files) != 1 || files[0].Duration != 262 {
		t.Fatalf("expected single refreshed row, got %#v", files)
	}
	if files[0].Normalized != "karma police radiohead" {
		t.Fatalf("normalized key missing: %#v", files[0])
	}
}

func TestUpsertMatchIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	fileID, err := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/music/a.flac", Title: "A", Artist: "B"})
	if err != nil {
		t.Fatalf("UpsertLibraryFile failed: %v", err)
	}

	m := matching.Match{
		TrackID:  "t1",
		Provider: "spotify",
		FileID:   fileID,
		Score:    0.81,
		Method:   matching.Method{Tier: matching.TierModerate, Detail: "fuzzy"},
	}
	if err := st.UpsertMatch(ctx, m); err != nil {
		t.Fatalf("UpsertMatch failed: %v", err)
	}

	m.Score = 1.0
	m.Method = matching.Method{Tier: matching.TierCertain, Detail: "isrc"}
	if err := st.UpsertMatch(ctx, m); err != nil {
		t.Fatalf("second UpsertMatch failed: %v", err)
	}

	count, err := st.CountMatches(ctx, nil)
	if err != nil {
		t.Fatalf("CountMatches failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("duplicate key must not insert a second row, count=%d", count)
	}

	matches, err := st.ListMatches(ctx, strPtr("spotify"))
	if err != nil {
		t.Fatalf("ListMatches failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Score != 1.0 || matches[0].Method.Tier != matching.TierCertain {
		t.Fatalf("score/method not overwritten: %#v", matches)
	}
}

func TestMatchedTrackIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	fileID, err := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/music/a.flac", Title: "A", Artist: "B"})
	if err != nil {
		t.Fatalf("UpsertLibraryFile failed: %v", err)
	}
	match := matching.Match{TrackID: "t1", Provider: "spotify", FileID: fileID, Score: 1, Method: matching.Method{Tier: matching.TierCertain}}
	if err := st.UpsertMatch(ctx, match); err != nil {
		t.Fatalf("UpsertMatch failed: %v", err)
	}

	ids, err := st.MatchedTrackIDs(ctx, "spotify")
	if err != nil {
		t.Fatalf("MatchedTrackIDs failed: %v", err)
	}
	if _, ok := ids["t1"]; !ok || len(ids) != 1 {
		t.Fatalf("unexpected matched set: %#v", ids)
	}

	other, err := st.MatchedTrackIDs(ctx, "tidal")
	if err != nil {
		t.Fatalf("MatchedTrackIDs failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("provider namespaces must not leak: %#v", other)
	}
}

func TestDeleteMatchesByTrackAndFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	f1, _ := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/m/1.flac", Title: "One", Artist: "A"})
	f2, _ := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/m/2.flac", Title: "Two", Artist: "A"})
	for _, m := range []matching.Match{
		{TrackID: "t1", Provider: "spotify", FileID: f1, Score: 1, Method: matching.Method{Tier: matching.TierCertain}},
		{TrackID: "t2", Provider: "spotify", FileID: f2, Score: 1, Method: matching.Method{Tier: matching.TierCertain}},
	} {
		if err := st.UpsertMatch(ctx, m); err != nil {
			t.Fatalf("UpsertMatch failed: %v", err)
		}
	}

	removed, err := st.DeleteMatchesByTrackIDs(ctx, "spotify", []string{"t1"})
	if err != nil {
		t.Fatalf("DeleteMatchesByTrackIDs failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one row removed, got %d", removed)
	}

	removed, err = st.DeleteMatchesByFileIDs(ctx, []int64{f2})
	if err != nil {
		t.Fatalf("DeleteMatchesByFileIDs failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one row removed, got %d", removed)
	}

	count, err := st.CountMatches(ctx, nil)
	if err != nil {
		t.Fatalf("CountMatches failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty matches table, count=%d", count)
	}
}

func TestConfidenceAndTierCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	f1, _ := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/m/1.flac", Title: "One", Artist: "A"})
	f2, _ := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/m/2.flac", Title: "Two", Artist: "A"})
	f3, _ := st.UpsertLibraryFile(ctx, matching.LibraryFile{Path: "/m/3.flac", Title: "Three", Artist: "A"})

	for _, m := range []matching.Match{
		{TrackID: "t1", Provider: "spotify", FileID: f1, Score: 1, Method: matching.Method{Tier: matching.TierCertain, Detail: "isrc"}},
		{TrackID: "t2", Provider: "spotify", FileID: f2, Score: 1, Method: matching.Method{Tier: matching.TierCertain, Detail: "normalized"}},
		{TrackID: "t3", Provider: "tidal", FileID: f3, Score: 0.8, Method: matching.Method{Tier: matching.TierModerate, Detail: "fuzzy"}},
	} {
		if err := st.UpsertMatch(ctx, m); err != nil {
			t.Fatalf("UpsertMatch failed: %v", err)
		}
	}

	all, err := st.MatchConfidenceCounts(ctx, nil)
	if err != nil {
		t.Fatalf("MatchConfidenceCounts failed: %v", err)
	}
	if all["certain:isrc"] != 1 || all["certain:normalized"] != 1 || all["moderate:fuzzy"] != 1 {
		t.Fatalf("unexpected raw counts: %#v", all)
	}

	scoped, err := st.MatchConfidenceCounts(ctx, strPtr("spotify"))
	if err != nil {
		t.Fatalf("MatchConfidenceCounts failed: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("provider scoping broken: %#v", scoped)
	}

	tiers, err := st.MatchTierCounts(ctx, nil)
	if err != nil {
		t.Fatalf("MatchTierCounts failed: %v", err)
	}
	if tiers[matching.TierCertain] != 2 || tiers[matching.TierModerate] != 1 {
		t.Fatalf("unexpected tier counts: %#v", tiers)
	}
}
