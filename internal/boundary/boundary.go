// Package boundary implements the edge-classified plate boundary field
// and its geodesic distance transforms (spec §4.4, component D).
package boundary

import (
	"math"

	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/mesh"
)

// Class is the classification of a cross-plate edge.
type Class int

const (
	Interior Class = iota
	Divergent
	Convergent
	Transform
)

// Edge is a classified undirected mesh edge, a < b (spec §3).
type Edge struct {
	A, B  int
	Class Class
}

// VelocityFunc returns a plate's surface velocity (km/Ma) at point p.
type VelocityFunc func(plateID int, p geom.Vector3) geom.Vector3

// Field is the boundary edge classification plus the three shared
// distance transforms of spec §4.4.
type Field struct {
	Edges         []Edge
	ToRidge       []float64 // distance to nearest Divergent-edge endpoint
	ToSubduction  []float64 // distance to nearest Convergent-edge endpoint
	ToAnyBoundary []float64 // distance to nearest cross-plate edge endpoint
}

// Inf is the finite stand-in for +∞ used when a seed set is empty or a
// vertex is unreachable (spec §3 DistanceField).
const Inf = math.MaxFloat64

// Build classifies every edge of adj and computes the three distance
// fields, using positions (the vertices' current advected positions)
// and a planet radius in km for the great-circle weighting.
func Build(adj mesh.AdjacencyCSR, positions []geom.Vector3, vertexPlate []int, vel VelocityFunc, epsilonKmPerMa, planetRadiusKm float64) *Field {
	edges := classify(adj, positions, vertexPlate, vel, epsilonKmPerMa)

	var ridgeSeeds, subductionSeeds, anySeeds []int
	for _, e := range edges {
		switch e.Class {
		case Divergent:
			ridgeSeeds = append(ridgeSeeds, e.A, e.B)
			anySeeds = append(anySeeds, e.A, e.B)
		case Convergent:
			subductionSeeds = append(subductionSeeds, e.A, e.B)
			anySeeds = append(anySeeds, e.A, e.B)
		case Transform:
			anySeeds = append(anySeeds, e.A, e.B)
		}
	}

	n := len(positions)
	return &Field{
		Edges:         edges,
		ToRidge:       dijkstra(adj, positions, planetRadiusKm, ridgeSeeds, n),
		ToSubduction:  dijkstra(adj, positions, planetRadiusKm, subductionSeeds, n),
		ToAnyBoundary: dijkstra(adj, positions, planetRadiusKm, anySeeds, n),
	}
}

// classify enumerates edges in canonical order (outer loop over a,
// inner loop over a's sorted adjacency list, spec §4.4) and labels each
// one.
func classify(adj mesh.AdjacencyCSR, positions []geom.Vector3, vertexPlate []int, vel VelocityFunc, epsilon float64) []Edge {
	n := len(positions)
	var edges []Edge
	for a := 0; a < n; a++ {
		for _, b := range adj.Neighbors(a) {
			if b <= a {
				continue
			}
			edges = append(edges, classifyEdge(a, b, positions, vertexPlate, vel, epsilon))
		}
	}
	return edges
}

func classifyEdge(a, b int, positions []geom.Vector3, vertexPlate []int, vel VelocityFunc, epsilon float64) Edge {
	pidA, pidB := vertexPlate[a], vertexPlate[b]
	if pidA < 0 || pidB < 0 || pidA == pidB {
		return Edge{A: a, B: b, Class: Interior}
	}

	m, tangent, ok := EdgeFrame(a, b, positions)
	if !ok {
		// Co-located points: edge dropped (treated as interior, no
		// distance-field seed contribution).
		return Edge{A: a, B: b, Class: Interior}
	}
	normal := m.Cross(tangent).Normalize()

	lo, hi := pidA, pidB
	if lo > hi {
		lo, hi = hi, lo
	}
	vRel := vel(hi, m).Sub(vel(lo, m))
	proj := vRel.Dot(normal)

	switch {
	case math.Abs(proj) <= epsilon:
		return Edge{A: a, B: b, Class: Transform}
	case proj > 0:
		return Edge{A: a, B: b, Class: Divergent}
	default:
		return Edge{A: a, B: b, Class: Convergent}
	}
}

// EdgeFrame computes an edge's midpoint and in-tangent-plane edge
// tangent (spec §4.4 steps 1-2), shared by classification and by the
// uplift kernels that need the same local frame (fold direction,
// slab-pull accumulation). ok is false for a zero-length (co-located)
// tangent.
func EdgeFrame(a, b int, positions []geom.Vector3) (mid, tangent geom.Vector3, ok bool) {
	pa, pb := positions[a], positions[b]
	mid = pa.Add(pb).Normalize()
	tangent = pb.Sub(pa)
	tangent = tangent.Sub(mid.Scale(tangent.Dot(mid)))
	if tangent.Length() < 1e-12 {
		return mid, geom.Vector3{}, false
	}
	return mid, tangent.Normalize(), true
}

// EdgeNormal returns the boundary-normal direction at an edge's
// midpoint, tangent to the sphere and perpendicular to the edge
// (spec §4.4 step 3).
func EdgeNormal(mid, tangent geom.Vector3) geom.Vector3 {
	return mid.Cross(tangent).Normalize()
}

// SubductingPlate decides, for a Convergent edge, which side is
// subducting: the side whose edge-midpoint velocity has the more
// negative projection onto the boundary normal (spec §4.5, "Per-edge
// subducting/overriding assignment"). vel must be the same function
// used to build the Field.
func SubductingPlate(e Edge, positions []geom.Vector3, vertexPlate []int, vel VelocityFunc) (subducting, overriding int) {
	mid, tangent, ok := EdgeFrame(e.A, e.B, positions)
	if !ok {
		return vertexPlate[e.A], vertexPlate[e.B]
	}
	normal := EdgeNormal(mid, tangent)
	pidA, pidB := vertexPlate[e.A], vertexPlate[e.B]
	projA := vel(pidA, mid).Dot(normal)
	projB := vel(pidB, mid).Dot(normal)
	if projA <= projB {
		return pidA, pidB
	}
	return pidB, pidA
}
