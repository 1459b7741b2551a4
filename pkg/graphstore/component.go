package graphstore

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank, used offline to report how well-connected a graph
// artifact's walk layer is before it is shipped to production.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
		size[i] = 1
	}
	return &UnionFind{parent: parent, rank: make([]byte, n), size: size}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// ComponentReport summarizes the weakly-connected-component structure of a
// Store's walk layer (PT edges are time-dependent and excluded: they do not
// imply reachability at an arbitrary departure time).
type ComponentReport struct {
	NumComponents     int
	LargestComponent  int
	LargestComponentFrac float64
}

// AnalyzeWalkComponents unions every walk edge (both directions treated as
// undirected) and reports the resulting component structure. Node 0 of
// each adjacency (the header marker) never contributes an edge since it
// is skipped via Edges().
func AnalyzeWalkComponents(s *Store) ComponentReport {
	n := uint32(len(s.Walk))
	if n == 0 {
		return ComponentReport{}
	}
	uf := NewUnionFind(n)
	for u := uint32(0); u < n; u++ {
		for _, e := range s.Walk[u].Edges() {
			if uint32(e.To) < n {
				uf.Union(u, uint32(e.To))
			}
		}
	}

	sizeOf := make(map[uint32]uint32)
	for i := uint32(0); i < n; i++ {
		root := uf.Find(i)
		sizeOf[root]++
	}

	largest := uint32(0)
	for _, sz := range sizeOf {
		if sz > largest {
			largest = sz
		}
	}

	return ComponentReport{
		NumComponents:        len(sizeOf),
		LargestComponent:     int(largest),
		LargestComponentFrac: float64(largest) / float64(n),
	}
}
