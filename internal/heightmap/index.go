// Package heightmap implements the HeightmapSampler of spec §4.12:
// point-location on the triangulated sphere plus barycentric elevation
// interpolation, with a nearest-centroid spatial index and a
// fallback ladder for degenerate queries.
package heightmap

import (
	"github.com/dhconnelly/rtreego"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/mesh"
)

// maxWalkSteps bounds the triangle walk to avoid cycling on
// degenerate data (spec §4.12).
const maxWalkSteps = 255

// centroidLeaf is an rtreego.Spatial wrapping one triangle's centroid,
// used for nearest-centroid lookup (spec §4.12's "axis-aligned kd-tree
// over triangle centroids", substituted here by an R-tree — see
// DESIGN.md).
type centroidLeaf struct {
	triangle int
	point    rtreego.Point
}

func (c centroidLeaf) Bounds() *rtreego.Rect {
	r, err := rtreego.NewRect(c.point, []float64{1e-9, 1e-9, 1e-9})
	if err != nil {
		// Degenerate point coordinates only occur for a NaN centroid,
		// which indicates a malformed triangle upstream.
		panic(err)
	}
	return r
}

// Index is the HeightmapSampler's spatial index plus triangle
// adjacency table (needed for the triangle walk).
type Index struct {
	Positions []geom.Vector3
	Triangles []mesh.Triangle
	neighbors [][3]int
	tree      *rtreego.Rtree
}

// NewIndex builds a heightmap Index from a canonicalised triangulation.
func NewIndex(positions []geom.Vector3, triangles []mesh.Triangle) *Index {
	idx := &Index{Positions: positions, Triangles: triangles}
	idx.neighbors = buildTriangleNeighbors(triangles)

	idx.tree = rtreego.NewTree(3, 25, 50)
	for i, t := range triangles {
		c := centroid(positions, t)
		idx.tree.Insert(centroidLeaf{triangle: i, point: rtreego.Point{c.X, c.Y, c.Z}})
	}
	return idx
}

func centroid(positions []geom.Vector3, t mesh.Triangle) geom.Vector3 {
	a, b, c := positions[t[0]], positions[t[1]], positions[t[2]]
	return a.Add(b).Add(c).Scale(1.0 / 3.0)
}

// NearestTriangle returns the index of the triangle whose centroid is
// closest to u, via the R-tree nearest-neighbour query.
func (idx *Index) NearestTriangle(u geom.Vector3) int {
	q := rtreego.Point{u.X, u.Y, u.Z}
	nearest := idx.tree.NearestNeighbor(q)
	if nearest == nil {
		return -1
	}
	return nearest.(centroidLeaf).triangle
}

// buildTriangleNeighbors computes, for each triangle, the index of the
// triangle across each of its 3 edges (-1 if none, which should not
// occur on a closed convex-hull triangulation).
func buildTriangleNeighbors(triangles []mesh.Triangle) [][3]int {
	type edgeKey struct{ a, b int }
	canon := func(a, b int) edgeKey {
		if a > b {
			a, b = b, a
		}
		return edgeKey{a, b}
	}

	edgeOwner := make(map[edgeKey][2]int) // up to 2 triangle indices per edge
	edgeCount := make(map[edgeKey]int)

	for ti, t := range triangles {
		edges := [3]edgeKey{canon(t[0], t[1]), canon(t[1], t[2]), canon(t[2], t[0])}
		for _, e := range edges {
			owners := edgeOwner[e]
			owners[edgeCount[e]] = ti
			edgeOwner[e] = owners
			edgeCount[e]++
		}
	}

	neighbors := make([][3]int, len(triangles))
	for ti, t := range triangles {
		edges := [3]edgeKey{canon(t[0], t[1]), canon(t[1], t[2]), canon(t[2], t[0])}
		for ei, e := range edges {
			owners := edgeOwner[e]
			neighbors[ti][ei] = -1
			for _, o := range owners[:edgeCount[e]] {
				if o != ti {
					neighbors[ti][ei] = o
				}
			}
		}
	}
	return neighbors
}
