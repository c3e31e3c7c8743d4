// Package mesh implements the spherical Delaunay triangulator and the
// derived adjacency structures of spec §3 (Triangulation, AdjacencyCSR)
// and §4.2 (Triangulator).
package mesh

import "github.com/onuse/tectonica/internal/geom"

// Triangle is a canonical index triple into a point set. Canonical form
// rotates the triple so the minimum index is first; the full
// triangulation is then sorted lexicographically (spec §3).
type Triangle [3]int

// Triangulation is the fixed mesh over a point set: canonical triangles
// plus the point set they index into.
type Triangulation struct {
	Points    []geom.Vector3
	Triangles []Triangle
}

// AdjacencyCSR is a compressed-sparse-row neighbour list. Offsets has
// len(Points)+1 entries; Adj[Offsets[v]:Offsets[v+1]] are v's neighbours.
type AdjacencyCSR struct {
	Offsets []int
	Adj     []int
}

// Neighbors returns the neighbour slice for vertex v.
func (a AdjacencyCSR) Neighbors(v int) []int {
	return a.Adj[a.Offsets[v]:a.Offsets[v+1]]
}

// Degree returns the number of neighbours of vertex v.
func (a AdjacencyCSR) Degree(v int) int {
	return a.Offsets[v+1] - a.Offsets[v]
}
