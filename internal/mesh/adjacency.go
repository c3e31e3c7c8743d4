package mesh

import (
	"sort"

	"github.com/onuse/tectonica/internal/geom"
)

// BuildAdjacency derives an unordered CSR neighbour list from a
// triangulation's edges.
func BuildAdjacency(t *Triangulation) AdjacencyCSR {
	n := len(t.Points)
	sets := make([]map[int]struct{}, n)
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for _, tri := range t.Triangles {
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			sets[a][b] = struct{}{}
			sets[b][a] = struct{}{}
		}
	}
	return csrFromSets(sets)
}

// BuildCyclicAdjacency derives a CSR neighbour list ordered counter-
// clockwise around each vertex's outward normal (approximated as the
// vertex's own unit position, since vertices lie on the unit sphere),
// ties broken by neighbour index for determinism (spec §3).
func BuildCyclicAdjacency(t *Triangulation) AdjacencyCSR {
	n := len(t.Points)
	sets := make([]map[int]struct{}, n)
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for _, tri := range t.Triangles {
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			sets[a][b] = struct{}{}
			sets[b][a] = struct{}{}
		}
	}

	offsets := make([]int, n+1)
	var adj []int
	for v := 0; v < n; v++ {
		neighbors := make([]int, 0, len(sets[v]))
		for nb := range sets[v] {
			neighbors = append(neighbors, nb)
		}
		center := t.Points[v]
		tangent, bitangent := geom.TangentFrame(center)
		sort.Slice(neighbors, func(i, j int) bool {
			ai := geom.AngleAround(center, t.Points[neighbors[i]], tangent, bitangent)
			aj := geom.AngleAround(center, t.Points[neighbors[j]], tangent, bitangent)
			if ai != aj {
				return ai < aj
			}
			return neighbors[i] < neighbors[j]
		})
		offsets[v] = len(adj)
		adj = append(adj, neighbors...)
	}
	offsets[n] = len(adj)
	return AdjacencyCSR{Offsets: offsets, Adj: adj}
}

func csrFromSets(sets []map[int]struct{}) AdjacencyCSR {
	n := len(sets)
	offsets := make([]int, n+1)
	var adj []int
	for v := 0; v < n; v++ {
		neighbors := make([]int, 0, len(sets[v]))
		for nb := range sets[v] {
			neighbors = append(neighbors, nb)
		}
		sort.Ints(neighbors)
		offsets[v] = len(adj)
		adj = append(adj, neighbors...)
	}
	offsets[n] = len(adj)
	return AdjacencyCSR{Offsets: offsets, Adj: adj}
}
