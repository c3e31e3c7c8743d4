package mesh

import (
	"github.com/onuse/tectonica/internal/errs"
	"github.com/onuse/tectonica/internal/geom"
)

// visibilityEps guards the visible-face test against coplanar jitter;
// points arrive already unit-normalised so an absolute epsilon is safe.
const visibilityEps = 1e-9

// buildConvexHull computes the 3-D convex hull of pts via the classic
// randomized-incremental algorithm (Barber, Dobkin & Huhdanpaa). Because
// every input point lies on the unit sphere, the sphere's strict
// convexity means every point is a hull vertex — the hull triangulation
// is exactly the spherical Delaunay triangulation spec §4.2 asks for.
//
// This is a direct (non-conflict-list) incremental hull: each insertion
// rescans every current face for visibility, giving O(n) faces scanned
// per insertion and O(n^2) overall. That is adequate for the thousands-
// to-low-tens-of-thousands of sample points this core targets; a
// conflict-graph acceleration (as qhull/Geogram use) would cut this to
// O(n log n) but is not needed at this scale.
func buildConvexHull(pts []geom.Vector3) ([]Triangle, *errs.Error) {
	if len(pts) < 4 {
		return nil, errs.New(errs.BackendFailure, "mesh.buildConvexHull", "fewer than 4 points")
	}

	seed, ok := findNonDegenerateTetrahedron(pts)
	if !ok {
		return nil, errs.New(errs.BackendFailure, "mesh.buildConvexHull", "no non-degenerate seed tetrahedron")
	}

	faces := initialTetrahedron(seed, pts)
	used := make(map[int]bool, 4)
	for _, i := range seed {
		used[i] = true
	}

	for i, p := range pts {
		if used[i] {
			continue
		}
		faces = insertPoint(faces, pts, i, p)
	}

	return faces, nil
}

// findNonDegenerateTetrahedron picks a well-spread seed in O(n): the
// point farthest from pts[0], the point farthest from that chord, and
// the point farthest from the resulting plane. This is the standard
// qhull-style seed heuristic and avoids the O(n^4) cost of scanning all
// quadruples for a non-coplanar set.
func findNonDegenerateTetrahedron(pts []geom.Vector3) ([4]int, bool) {
	n := len(pts)
	a := 0
	b := farthestFrom(pts, pts[a], -1, a)
	if b < 0 {
		return [4]int{}, false
	}
	c := farthestFromLine(pts, pts[a], pts[b], a, b)
	if c < 0 {
		return [4]int{}, false
	}
	ab := pts[b].Sub(pts[a])
	ac := pts[c].Sub(pts[a])
	planeNormal := ab.Cross(ac)
	d := -1
	best := 1e-9
	for i := 0; i < n; i++ {
		if i == a || i == b || i == c {
			continue
		}
		vol := planeNormal.Dot(pts[i].Sub(pts[a]))
		if vol < 0 {
			vol = -vol
		}
		if vol > best {
			best = vol
			d = i
		}
	}
	if d < 0 {
		return [4]int{}, false
	}
	return [4]int{a, b, c, d}, true
}

func farthestFrom(pts []geom.Vector3, from geom.Vector3, excludeA, excludeB int) int {
	best := -1
	bestD := -1.0
	for i, p := range pts {
		if i == excludeA || i == excludeB {
			continue
		}
		d := p.Sub(from).Length()
		if d > bestD {
			bestD = d
			best = i
		}
	}
	return best
}

func farthestFromLine(pts []geom.Vector3, a, b geom.Vector3, excludeA, excludeB int) int {
	dir := b.Sub(a).Normalize()
	best := -1
	bestD := -1.0
	for i, p := range pts {
		if i == excludeA || i == excludeB {
			continue
		}
		ap := p.Sub(a)
		perp := ap.Sub(dir.Scale(ap.Dot(dir)))
		d := perp.Length()
		if d > bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// initialTetrahedron builds the 4 outward-facing faces of the seed
// tetrahedron.
func initialTetrahedron(seed [4]int, pts []geom.Vector3) []Triangle {
	combos := [4][3]int{
		{seed[0], seed[1], seed[2]},
		{seed[0], seed[1], seed[3]},
		{seed[0], seed[2], seed[3]},
		{seed[1], seed[2], seed[3]},
	}
	faces := make([]Triangle, 0, 4)
	centroid := pts[seed[0]].Add(pts[seed[1]]).Add(pts[seed[2]]).Add(pts[seed[3]]).Scale(0.25)
	for _, c := range combos {
		t := Triangle{c[0], c[1], c[2]}
		a, b, cc := pts[t[0]], pts[t[1]], pts[t[2]]
		n := b.Sub(a).Cross(cc.Sub(a))
		// Orient so the normal points away from the tetrahedron
		// centroid (outward), matching every other face test below.
		if n.Dot(a.Sub(centroid)) < 0 {
			t = Triangle{t[0], t[2], t[1]}
		}
		faces = append(faces, t)
	}
	return faces
}

// insertPoint adds point index idx (at position p) to the hull,
// removing every face it is visible from and patching the resulting
// horizon with new faces through idx.
func insertPoint(faces []Triangle, pts []geom.Vector3, idx int, p geom.Vector3) []Triangle {
	visible := make([]bool, len(faces))
	anyVisible := false
	for i, f := range faces {
		a := pts[f[0]]
		n := pts[f[1]].Sub(a).Cross(pts[f[2]].Sub(a))
		if n.Dot(p.Sub(a)) > visibilityEps {
			visible[i] = true
			anyVisible = true
		}
	}
	if !anyVisible {
		// Point is inside the current hull (duplicate or
		// numerically redundant sample) — dropped per §4.2's
		// "triangles referencing invalid indices or duplicate
		// vertices are dropped" robustness requirement.
		return faces
	}

	// Directed-edge membership among visible faces, used to find the
	// horizon: an edge (a,b) is on the horizon iff its visible face
	// owns directed edge a->b but no visible face owns b->a (the
	// mating face across that edge is not visible).
	dirEdges := make(map[[2]int]bool)
	for i, f := range faces {
		if !visible[i] {
			continue
		}
		dirEdges[[2]int{f[0], f[1]}] = true
		dirEdges[[2]int{f[1], f[2]}] = true
		dirEdges[[2]int{f[2], f[0]}] = true
	}

	var horizon [][2]int
	for e := range dirEdges {
		rev := [2]int{e[1], e[0]}
		if !dirEdges[rev] {
			horizon = append(horizon, e)
		}
	}

	kept := faces[:0:0]
	for i, f := range faces {
		if !visible[i] {
			kept = append(kept, f)
		}
	}
	for _, e := range horizon {
		kept = append(kept, Triangle{e[0], e[1], idx})
	}
	return kept
}
