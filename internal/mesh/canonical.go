package mesh

import (
	"sort"

	"github.com/onuse/tectonica/internal/geom"
)

// rotateToMin rotates t so its minimum index is first, preserving the
// cyclic (and therefore winding) order.
func rotateToMin(t Triangle) Triangle {
	min := 0
	for i := 1; i < 3; i++ {
		if t[i] < t[min] {
			min = i
		}
	}
	switch min {
	case 0:
		return t
	case 1:
		return Triangle{t[1], t[2], t[0]}
	default:
		return Triangle{t[2], t[0], t[1]}
	}
}

// ensureOutward flips the winding of t, if needed, so that the face
// normal (B-A)x(C-A) points away from the sphere centre — i.e. roughly
// along +A, the invariant named in spec §3.
func ensureOutward(t Triangle, pts []geom.Vector3) Triangle {
	a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Dot(a) < 0 {
		return Triangle{t[0], t[2], t[1]}
	}
	return t
}

// Canonicalize rotates every triangle to start at its minimum index and
// sorts the set lexicographically. It is idempotent:
// Canonicalize(Canonicalize(t)) == Canonicalize(t).
func Canonicalize(tris []Triangle) []Triangle {
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		out[i] = rotateToMin(t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][2] < out[j][2]
	})
	return out
}

// EulerCharacteristic returns V, E, F for a triangulation, where E is
// the count of distinct undirected edges implied by the triangle set.
func EulerCharacteristic(pointCount int, tris []Triangle) (v, e, f int) {
	edges := make(map[[2]int]struct{})
	for _, t := range tris {
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}] = struct{}{}
		}
	}
	return pointCount, len(edges), len(tris)
}
