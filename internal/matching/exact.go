package matching

import "context"

// Exact matches by ISRC equality when both sides carry one, falling back to
// exact equality of the normalized key. Both arms are maximum confidence.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (e Exact) Match(ctx context.Context, in Input) (Result, error) {
	var res Result

	// First occurrence wins on duplicate keys so matches stay deterministic
	// under stable input order.
	byISRC := make(map[string]LibraryFile, len(in.Files))
	byKey := make(map[string]LibraryFile, len(in.Files))
	for _, f := range in.Files {
		if f.ISRC != "" {
			if _, ok := byISRC[f.ISRC]; !ok {
				byISRC[f.ISRC] = f
			}
		}
		if f.Normalized != "" {
			if _, ok := byKey[f.Normalized]; !ok {
				byKey[f.Normalized] = f
			}
		}
	}

	for _, t := range in.Tracks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if in.matched(t.ID) {
			continue
		}
		if t.ISRC != "" {
			if f, ok := byISRC[t.ISRC]; ok {
				appendMatch(&res, newMatch(t, f, 1.0, Method{Tier: TierCertain, Detail: "isrc"}))
				continue
			}
		}
		if t.Normalized == "" {
			// Input anomaly: nothing to compare on. Skip, never fatal.
			continue
		}
		if f, ok := byKey[t.Normalized]; ok {
			appendMatch(&res, newMatch(t, f, 1.0, Method{Tier: TierCertain, Detail: "normalized"}))
		}
	}
	return res, nil
}
