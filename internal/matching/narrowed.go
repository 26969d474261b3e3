package matching

import "math"

// bestCandidate scans candidates in stable order and returns the one with
// the highest normalized-key similarity at or above minSimilarity. Ties on
// similarity fall to the smaller duration delta, then to the first candidate
// encountered. Deterministic given stable input order.
func bestCandidate(t Track, candidates []LibraryFile, minSimilarity float64) (LibraryFile, float64, bool) {
	var (
		best      LibraryFile
		bestScore = -1.0
		bestDelta = math.MaxInt32
		found     bool
	)
	if t.Normalized == "" {
		return best, 0, false
	}
	for _, f := range candidates {
		if f.Normalized == "" {
			continue
		}
		score := TokenSetRatio(t.Normalized, f.Normalized)
		if score < minSimilarity {
			continue
		}
		delta := durationDelta(t, f)
		if score > bestScore || (score == bestScore && delta < bestDelta) {
			best = f
			bestScore = score
			bestDelta = delta
			found = true
		}
	}
	return best, bestScore, found
}

// durationDelta returns the absolute duration difference in seconds, or a
// sentinel "far" value when either side is unknown so known-duration
// candidates win ties.
func durationDelta(t Track, f LibraryFile) int {
	td := t.DurationSeconds()
	if td == 0 || f.Duration <= 0 {
		return math.MaxInt32
	}
	d := td - f.Duration
	if d < 0 {
		d = -d
	}
	return d
}

func capCandidates(files []LibraryFile, limit int) []LibraryFile {
	if limit > 0 && len(files) > limit {
		return files[:limit]
	}
	return files
}
