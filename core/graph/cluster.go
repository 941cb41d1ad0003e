package graph

import (
	"maps"
	"slices"

	"github.com/huangsam/redundant/schema"
)

// ClusterBuilder collects record ids and flagged pairs, then reports the
// connected components. Every id stays a node even without edges.
//
// Add ids and pairs from a single goroutine; a parallel scan must hand its
// merged pair list over afterwards.
type ClusterBuilder struct {
	index map[string]int
	ids   []string
	uf    *UnionFind
	edges []edge
}

type edge struct {
	a, b  int
	score float64
}

// NewClusterBuilder seeds the graph with ids in the given order.
// Repeated ids collapse into one node.
func NewClusterBuilder(ids []string) *ClusterBuilder {
	b := &ClusterBuilder{
		index: make(map[string]int, len(ids)),
		ids:   make([]string, 0, len(ids)),
		uf:    NewUnionFind(0),
	}
	for _, id := range ids {
		b.node(id)
	}
	return b
}

// node returns the index of id, adding it when unseen.
func (b *ClusterBuilder) node(id string) int {
	if i, ok := b.index[id]; ok {
		return i
	}
	i := len(b.ids)
	b.index[id] = i
	b.ids = append(b.ids, id)
	b.uf.Grow(i + 1)
	return i
}

// AddPair adds one undirected edge. Ids not seeded yet become new nodes.
func (b *ClusterBuilder) AddPair(p schema.RedundancyPair) {
	ia, ib := b.node(p.A), b.node(p.B)
	b.edges = append(b.edges, edge{a: ia, b: ib, score: p.Score})
	b.uf.Union(ia, ib)
}

// AddPairs adds every pair in order.
func (b *ClusterBuilder) AddPairs(pairs []schema.RedundancyPair) {
	for _, p := range pairs {
		b.AddPair(p)
	}
}

// Components returns every connected component, singletons included.
// Members are sorted, and components are ordered by the position of their
// first member in the seeded id order, so the partition is the same for
// any edge order.
func (b *ClusterBuilder) Components() []schema.Component {
	groups := b.groups()
	out := make([]schema.Component, len(groups))
	for i, g := range groups {
		members := make([]string, len(g))
		for j, idx := range g {
			members[j] = b.ids[idx]
		}
		slices.Sort(members)
		out[i] = members
	}
	return out
}

// Clusters returns the components with more than one member, numbered from
// 1, together with statistics about the flagged pairs inside each one.
func (b *ClusterBuilder) Clusters() []schema.Cluster {
	groups := b.groups()

	clusterOf := make(map[int]int, len(groups)) // root -> position in clusters
	var clusters []schema.Cluster
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		members := make([]string, len(g))
		for j, idx := range g {
			members[j] = b.ids[idx]
		}
		slices.Sort(members)
		clusterOf[b.uf.Find(g[0])] = len(clusters)
		clusters = append(clusters, schema.Cluster{
			ID:       len(clusters) + 1,
			Members:  members,
			MinScore: 1,
		})
	}

	// Repeated pairs count once with their best score. Edges are visited in
	// index order so the float sums do not depend on insertion order.
	unique := make(map[[2]int]float64, len(b.edges))
	for _, e := range b.edges {
		if e.a == e.b {
			continue
		}
		key := [2]int{min(e.a, e.b), max(e.a, e.b)}
		if prev, ok := unique[key]; !ok || e.score > prev {
			unique[key] = e.score
		}
	}
	keys := slices.SortedFunc(maps.Keys(unique), func(x, y [2]int) int {
		if x[0] != y[0] {
			return x[0] - y[0]
		}
		return x[1] - y[1]
	})

	sums := make([]float64, len(clusters))
	for _, key := range keys {
		score := unique[key]
		ci := clusterOf[b.uf.Find(key[0])]
		c := &clusters[ci]
		c.Edges++
		c.MinScore = min(c.MinScore, score)
		c.MaxScore = max(c.MaxScore, score)
		sums[ci] += score
	}

	for i := range clusters {
		c := &clusters[i]
		c.MeanScore = sums[i] / float64(c.Edges)
		n := c.Size()
		c.Density = float64(c.Edges) / float64(n*(n-1)/2)
	}
	return clusters
}

// Unclustered returns the ids that ended up in singleton components,
// in seeded order.
func (b *ClusterBuilder) Unclustered() []string {
	var out []string
	for _, g := range b.groups() {
		if len(g) == 1 {
			out = append(out, b.ids[g[0]])
		}
	}
	return out
}

// groups partitions node indices by root, ordered by first appearance.
func (b *ClusterBuilder) groups() [][]int {
	pos := make(map[int]int, b.uf.Sets())
	var groups [][]int
	for i := range b.ids {
		root := b.uf.Find(i)
		p, ok := pos[root]
		if !ok {
			p = len(groups)
			pos[root] = p
			groups = append(groups, nil)
		}
		groups[p] = append(groups[p], i)
	}
	return groups
}

// Components is a convenience wrapper that builds the graph in one call.
func Components(ids []string, pairs []schema.RedundancyPair) []schema.Component {
	b := NewClusterBuilder(ids)
	b.AddPairs(pairs)
	return b.Components()
}
