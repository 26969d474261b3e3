package matching

import "context"

// DurationFilter is a prefilter: it declares no matches, it only narrows the
// candidate set handed to later strategies to files whose duration falls
// within Tolerance seconds of the track's. Tracks with unknown duration are
// left unfiltered by default, or skipped entirely when SkipUnknown is set.
type DurationFilter struct {
	// Tolerance is the window in seconds.
	Tolerance int
	// SkipUnknown removes unknown-duration tracks from the fuzzy stage
	// instead of comparing them against the whole library.
	SkipUnknown bool
}

func (DurationFilter) Name() string { return "duration" }

func (d DurationFilter) Match(ctx context.Context, in Input) (Result, error) {
	narrowed := make(Candidates)

	for _, t := range in.Tracks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if in.matched(t.ID) {
			continue
		}
		td := t.DurationSeconds()
		if td == 0 {
			if d.SkipUnknown {
				// Present-but-empty entry: the track is out of scope for
				// candidate-consuming strategies.
				narrowed[t.ID] = []int64{}
			}
			continue
		}

		var ids []int64
		for _, f := range in.Files {
			// Unknown file durations cannot be ruled out.
			if f.Duration > 0 && absInt(td-f.Duration) > d.Tolerance {
				continue
			}
			ids = append(ids, f.ID)
			if in.MaxCandidates > 0 && len(ids) >= in.MaxCandidates {
				break
			}
		}
		if ids == nil {
			ids = []int64{}
		}
		narrowed[t.ID] = ids
	}

	return Result{Candidates: narrowed}, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
