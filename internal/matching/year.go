package matching

import "context"

// yearMinSimilarity is stricter than the album floor: sharing a release
// year is a much weaker signal than sharing an album.
const yearMinSimilarity = 0.75

// Year restricts candidates by release-year equality, which disambiguates
// titles that repeat across re-releases.
type Year struct{}

func (Year) Name() string { return "year" }

func (y Year) Match(ctx context.Context, in Input) (Result, error) {
	var res Result

	byYear := make(map[int][]LibraryFile)
	for _, f := range in.Files {
		if f.Year > 0 {
			byYear[f.Year] = append(byYear[f.Year], f)
		}
	}

	for _, t := range in.Tracks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if in.matched(t.ID) || t.Year <= 0 {
			continue
		}
		candidates := capCandidates(byYear[t.Year], in.MaxCandidates)
		if f, score, ok := bestCandidate(t, candidates, yearMinSimilarity); ok {
			appendMatch(&res, newMatch(t, f, score, Method{Tier: TierModerate, Detail: "year"}))
		}
	}
	return res, nil
}
