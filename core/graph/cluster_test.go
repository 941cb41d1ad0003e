package graph

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/huangsam/redundant/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(a, b string, score float64) schema.RedundancyPair {
	return schema.RedundancyPair{A: a, B: b, Score: score}
}

func buildClusters(ids []string, pairs []schema.RedundancyPair) []schema.Cluster {
	b := NewClusterBuilder(ids)
	b.AddPairs(pairs)
	return b.Clusters()
}

func TestUnionFind(t *testing.T) {
	u := NewUnionFind(5)
	assert.Equal(t, 5, u.Sets())
	assert.True(t, u.Union(0, 1))
	assert.True(t, u.Union(3, 4))
	assert.False(t, u.Union(1, 0))
	assert.True(t, u.Union(1, 4))

	assert.Equal(t, u.Find(0), u.Find(3))
	assert.NotEqual(t, u.Find(2), u.Find(0))
	assert.Equal(t, 2, u.Sets())

	u.Grow(7)
	assert.Equal(t, 6, u.Find(6))
	assert.Equal(t, 4, u.Sets())
}

func TestComponentsCatalogExample(t *testing.T) {
	ids := []string{"ID1", "ID2", "ID3"}
	pairs := []schema.RedundancyPair{pair("ID1", "ID2", 0.975)}

	got := Components(ids, pairs)
	want := []schema.Component{{"ID1", "ID2"}, {"ID3"}}
	assert.Empty(t, cmp.Diff(want, got))

	b := NewClusterBuilder(ids)
	b.AddPairs(pairs)
	clusters := b.Clusters()
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0].ID)
	assert.Equal(t, []string{"ID1", "ID2"}, clusters[0].Members)
	assert.Equal(t, []string{"ID3"}, b.Unclustered())
}

func TestComponentsNonClique(t *testing.T) {
	// A-B and B-C are flagged, A-C is not.
	pairs := []schema.RedundancyPair{pair("A", "B", 0.9), pair("B", "C", 0.82)}
	clusters := buildClusters([]string{"A", "B", "C"}, pairs)

	require.Len(t, clusters, 1)
	c := clusters[0]
	assert.Equal(t, []string{"A", "B", "C"}, c.Members)
	assert.Equal(t, 2, c.Edges)
	assert.False(t, c.IsClique())
	assert.InDelta(t, 2.0/3.0, c.Density, 1e-9)
	assert.InDelta(t, 0.82, c.MinScore, 1e-9)
	assert.InDelta(t, 0.9, c.MaxScore, 1e-9)
	assert.InDelta(t, 0.86, c.MeanScore, 1e-9)
}

func TestComponentsNoEdges(t *testing.T) {
	got := Components([]string{"x", "y"}, nil)
	assert.Equal(t, []schema.Component{{"x"}, {"y"}}, got)
	assert.Empty(t, buildClusters([]string{"x", "y"}, nil))
	assert.Empty(t, Components(nil, nil))
}

func TestComponentsUnknownIDsBecomeNodes(t *testing.T) {
	got := Components([]string{"a"}, []schema.RedundancyPair{pair("b", "c", 0.9)})
	assert.Equal(t, []schema.Component{{"a"}, {"b", "c"}}, got)
}

func TestClustersIgnoreRepeatedEdges(t *testing.T) {
	pairs := []schema.RedundancyPair{pair("a", "b", 0.9), pair("b", "a", 0.9), pair("a", "a", 1)}
	clusters := buildClusters([]string{"a", "b"}, pairs)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0].Edges)
	assert.True(t, clusters[0].IsClique())
}

func TestClustersNumberedInInputOrder(t *testing.T) {
	ids := []string{"p", "q", "r", "s", "t"}
	pairs := []schema.RedundancyPair{pair("s", "t", 0.85), pair("p", "r", 0.95)}
	clusters := buildClusters(ids, pairs)
	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"p", "r"}, clusters[0].Members)
	assert.Equal(t, 1, clusters[0].ID)
	assert.Equal(t, []string{"s", "t"}, clusters[1].Members)
	assert.Equal(t, 2, clusters[1].ID)
}

func TestComponentsPartitionCoherence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ids := make([]string, 60)
	for i := range ids {
		ids[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	var pairs []schema.RedundancyPair
	for range 45 {
		i, j := rng.IntN(len(ids)), rng.IntN(len(ids))
		if i != j {
			pairs = append(pairs, pair(ids[i], ids[j], 0.9))
		}
	}

	components := Components(ids, pairs)

	seen := make(map[string]int)
	for ci, c := range components {
		for _, id := range c {
			_, dup := seen[id]
			assert.False(t, dup, "id %s appears in more than one component", id)
			seen[id] = ci
		}
	}
	assert.Len(t, seen, len(ids))
	for _, p := range pairs {
		assert.Equal(t, seen[p.A], seen[p.B], "edge %s-%s spans components", p.A, p.B)
	}
}

func TestComponentsOrderIndependent(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	pairs := []schema.RedundancyPair{
		pair("a", "b", 0.9), pair("c", "d", 0.8), pair("b", "e", 0.85),
		pair("f", "d", 0.99), pair("e", "a", 0.81),
	}
	want := Components(ids, pairs)
	wantClusters := buildClusters(ids, pairs)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		shuffled := append([]schema.RedundancyPair(nil), pairs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Empty(t, cmp.Diff(want, Components(ids, shuffled)))
		assert.Empty(t, cmp.Diff(wantClusters, buildClusters(ids, shuffled)))
	}
}

func BenchmarkClusters(b *testing.B) {
	ids := make([]string, 2000)
	for i := range ids {
		ids[i] = string(rune(0x4e00 + i))
	}
	pairs := make([]schema.RedundancyPair, 0, len(ids))
	for i := 1; i < len(ids); i += 2 {
		pairs = append(pairs, pair(ids[i-1], ids[i], 0.9))
	}
	for b.Loop() {
		cb := NewClusterBuilder(ids)
		cb.AddPairs(pairs)
		cb.Clusters()
	}
}
