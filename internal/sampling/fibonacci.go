// Package sampling implements the deterministic unit-sphere point
// generator (spec §4.1, component A).
package sampling

import (
	"math"

	"github.com/onuse/tectonica/internal/geom"
)

// goldenAngle is π(3-√5), the golden-angle increment used to place
// successive points on the spiral.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Points returns n points on the unit sphere via the Fibonacci lattice:
//
//	x_k = 1 - (2k+1)/n
//	r_k = sqrt(1 - x_k^2)
//	phi_k = k * goldenAngle
//	p = (cos(phi_k)*r_k, sin(phi_k)*r_k, x_k), normalised.
//
// Pure and deterministic: identical n always yields identical output.
func Points(n int) []geom.Vector3 {
	if n <= 0 {
		return nil
	}
	pts := make([]geom.Vector3, n)
	fn := float64(n)
	for k := 0; k < n; k++ {
		x := 1 - (2*float64(k)+1)/fn
		r := math.Sqrt(math.Max(0, 1-x*x))
		phi := float64(k) * goldenAngle
		p := geom.Vector3{
			X: math.Cos(phi) * r,
			Y: math.Sin(phi) * r,
			Z: x,
		}
		pts[k] = p.Normalize()
	}
	return pts
}

// ScaledPoints returns Points(n) scaled onto a sphere of the given
// radius (the "scaled variant" named in §4.1).
func ScaledPoints(n int, radius float64) []geom.Vector3 {
	pts := Points(n)
	for i := range pts {
		pts[i] = pts[i].Scale(radius)
	}
	return pts
}

// ResolutionInverse computes N such that points on a sphere of the
// given radius are spaced roughly `res` apart, via N ≈ 4πR²/res².
func ResolutionInverse(radius, res float64) int {
	if res <= 0 {
		return 0
	}
	n := 4 * math.Pi * radius * radius / (res * res)
	return int(math.Round(n))
}
