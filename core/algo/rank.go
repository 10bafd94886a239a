package algo

import (
	"sort"

	"github.com/huangsam/sedwarp/schema"
)

// RankCandidates sorts candidates by distance in ascending order, breaking ties
// by the lower time, and returns the top 'limit' entries. If limit is greater
// than the number of candidates, all candidates are returned in sorted order.
func RankCandidates(entries []schema.DistanceEntry, limit int) []schema.DistanceEntry {
	ranked := make([]schema.DistanceEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].Time < ranked[j].Time
	})
	if len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// RankAlignments sorts alignment results by their best distance in ascending order
// and returns the top 'limit' results.
func RankAlignments(results []schema.AlignmentResult, limit int) []schema.AlignmentResult {
	ranked := make([]schema.AlignmentResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BestDistance < ranked[j].BestDistance
	})
	if len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
