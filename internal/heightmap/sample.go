package heightmap

import "github.com/onuse/tectonica/internal/geom"

// Result is the HeightmapSampler's per-query hit contract (spec §4.12).
type Result struct {
	Elevation float64
	Triangle  int
	Steps     int
	Bary      [3]float64
	Hit       bool
}

// barycentric computes the barycentric coordinates of point p with
// respect to triangle (a,b,c) by projecting p onto the triangle's
// plane along its own normal. The sphere's curvature over one
// triangle is small enough that this reference-plane projection is
// an adequate in/out test (spec §4.12 treats triangles as flat facets
// for point location).
func barycentric(p, a, b, c geom.Vector3) [3]float64 {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return [3]float64{1, 0, 0}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w
	return [3]float64{u, v, w}
}

// insideEps tolerates small negative barycentric coordinates from
// floating point error at shared edges.
const insideEps = -1e-7

func inside(bary [3]float64) bool {
	return bary[0] >= insideEps && bary[1] >= insideEps && bary[2] >= insideEps
}

// mostNegative returns the index (0,1,2) of the most negative
// barycentric coordinate, i.e. the vertex opposite the edge the walk
// should cross (spec §4.12: "moving across the edge whose opposite-
// side plane u violates").
func mostNegative(bary [3]float64) int {
	idx := 0
	for i := 1; i < 3; i++ {
		if bary[i] < bary[idx] {
			idx = i
		}
	}
	return idx
}

// Sample locates the triangle containing u starting from hint
// (obtained via NearestTriangle if the caller has none) and returns
// the barycentric-interpolated elevation from elevation, one entry
// per vertex (spec §4.12).
func (idx *Index) Sample(u geom.Vector3, hint int, elevation []float64) Result {
	if hint < 0 || hint >= len(idx.Triangles) {
		hint = idx.NearestTriangle(u)
		if hint < 0 {
			return Result{Hit: false}
		}
	}

	current := hint
	var bary [3]float64
	steps := 0
	for steps < maxWalkSteps {
		t := idx.Triangles[current]
		a, b, c := idx.Positions[t[0]], idx.Positions[t[1]], idx.Positions[t[2]]
		bary = barycentric(u, a, b, c)
		if inside(bary) {
			z := bary[0]*elevation[t[0]] + bary[1]*elevation[t[1]] + bary[2]*elevation[t[2]]
			return Result{Elevation: z, Triangle: current, Steps: steps, Bary: bary, Hit: true}
		}

		// neighbors is stored per edge (t0t1, t1t2, t2t0), so the edge
		// opposite vertex i is edge (i+1)%3.
		edge := mostNegative(bary)
		next := idx.neighbors[current][(edge+1)%3]
		if next < 0 || next == current {
			break
		}
		current = next
		steps++
	}
	return Result{Triangle: current, Steps: steps, Bary: bary, Hit: false}
}
