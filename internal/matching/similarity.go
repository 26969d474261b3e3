package matching

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TokenSetRatio scores two normalized keys on 0.0-1.0 using a token-set
// comparison: the strings are split into unique sorted tokens, partitioned
// into intersection and differences, and the most favorable pairwise
// Levenshtein similarity of the recombined forms wins. Word order and
// repeated tokens therefore do not hurt the score, which is what track
// titles need ("artist - title" vs "title artist").
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter, onlyA, onlyB := partitionTokens(ta, tb)

	base := strings.Join(inter, " ")
	combinedA := joinNonEmpty(base, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(base, strings.Join(onlyB, " "))

	// One side being a token subset of the other is a full match.
	if base != "" && (combinedA == base || combinedB == base) {
		return 1
	}

	lev := metrics.NewLevenshtein()
	best := strutil.Similarity(combinedA, combinedB, lev)
	if base != "" {
		if v := strutil.Similarity(base, combinedA, lev); v > best {
			best = v
		}
		if v := strutil.Similarity(base, combinedB, lev); v > best {
			best = v
		}
	}
	return best
}

func tokenSet(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func partitionTokens(a, b []string) (inter, onlyA, onlyB []string) {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	inInter := make(map[string]struct{})
	for _, t := range a {
		if _, ok := inB[t]; ok {
			inter = append(inter, t)
			inInter[t] = struct{}{}
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range b {
		if _, ok := inInter[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	return inter, onlyA, onlyB
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
