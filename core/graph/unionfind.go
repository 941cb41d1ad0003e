// Package graph finds connected components of the redundancy graph.
package graph

// UnionFind is a disjoint-set forest over the indices [0,n).
// It uses union by rank and path compression. It is not safe for
// concurrent mutation.
type UnionFind struct {
	parent []int
	rank   []uint8
	sets   int
}

// NewUnionFind returns n singleton sets.
func NewUnionFind(n int) *UnionFind {
	u := &UnionFind{}
	u.Grow(n)
	return u
}

// Grow adds singleton sets until the forest holds n elements.
func (u *UnionFind) Grow(n int) {
	for i := len(u.parent); i < n; i++ {
		u.parent = append(u.parent, i)
		u.rank = append(u.rank, 0)
		u.sets++
	}
}

// Sets returns the number of disjoint sets.
func (u *UnionFind) Sets() int {
	return u.sets
}

// Find returns the representative of the set containing x.
func (u *UnionFind) Find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		x, u.parent[x] = u.parent[x], root
	}
	return root
}

// Union merges the sets of a and b and reports whether they were distinct.
func (u *UnionFind) Union(a, b int) bool {
	ra, rb := u.Find(a), u.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		ra, rb = rb, ra
	case u.rank[ra] == u.rank[rb]:
		u.rank[ra]++
	}
	u.parent[rb] = ra
	u.sets--
	return true
}
