package recs

import "sort"

// DefaultLimit is how many recommendations callers get when they do not ask
// for a specific amount.
const DefaultLimit = 6

// Rank sorts candidates descending by score and truncates to limit. The sort
// is stable, so ties keep the caller's order (date-ascending for candidates).
func Rank(candidates []ScoredCandidate, limit int) []ScoredCandidate {
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]ScoredCandidate, len(candidates))
	copy(out, candidates)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out
}
