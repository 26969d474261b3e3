package matching

import (
	"context"

	"harmonia/internal/normalize"
)

// albumMinSimilarity is the secondary tie-break floor: within a shared
// album the titles still have to resemble each other before we declare a
// match.
const albumMinSimilarity = 0.65

// Album restricts candidate files to those sharing album identity before a
// similarity tie-break. Resolves multi-disc and compilation cases with a far
// tighter search space than global fuzzy comparison.
type Album struct{}

func (Album) Name() string { return "album" }

func (a Album) Match(ctx context.Context, in Input) (Result, error) {
	var res Result

	byAlbum := make(map[string][]LibraryFile)
	for _, f := range in.Files {
		key := normalize.Fold(f.Album)
		if key == "" {
			continue
		}
		byAlbum[key] = append(byAlbum[key], f)
	}

	for _, t := range in.Tracks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if in.matched(t.ID) {
			continue
		}
		key := normalize.Fold(t.Album)
		if key == "" {
			continue
		}
		candidates := capCandidates(byAlbum[key], in.MaxCandidates)
		if f, score, ok := bestCandidate(t, candidates, albumMinSimilarity); ok {
			appendMatch(&res, newMatch(t, f, score, Method{Tier: TierHigh, Detail: "album"}))
		}
	}
	return res, nil
}
