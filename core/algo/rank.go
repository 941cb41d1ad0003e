package algo

import (
	"slices"

	"github.com/huangsam/redundant/schema"
)

// RankPairs sorts pairs by score in descending order and returns the top
// 'limit' pairs. Ties keep their scan order so ranking stays deterministic.
// A limit of zero or less returns every pair.
func RankPairs(pairs []schema.RedundancyPair, limit int) []schema.RedundancyPair {
	ranked := slices.Clone(pairs)
	slices.SortStableFunc(ranked, func(a, b schema.RedundancyPair) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// RankClusters sorts clusters by size, then by mean score, both descending.
// Cluster IDs are left untouched.
func RankClusters(clusters []schema.Cluster, limit int) []schema.Cluster {
	ranked := slices.Clone(clusters)
	slices.SortStableFunc(ranked, func(a, b schema.Cluster) int {
		if a.Size() != b.Size() {
			return b.Size() - a.Size()
		}
		switch {
		case a.MeanScore > b.MeanScore:
			return -1
		case a.MeanScore < b.MeanScore:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
