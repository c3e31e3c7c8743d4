// Package geom holds the spherical-geometry primitives shared by every
// simulation stage: unit vectors, Euler-pole rotation, great-circle
// distance, and the tangent frames used for cyclic adjacency ordering
// and rifting drift directions.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is a point or direction in R^3. Unit length is not assumed; callers
// normalise explicitly where the invariant matters.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}
func (v Vector3) Dot(o Vector3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}
func (v Vector3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector, or the zero vector if v is (near)
// zero-length — callers that require a non-degenerate direction check
// for the zero vector explicitly (see boundary.EdgeFrame's edge
// dropping, §4.4).
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l < 1e-15 {
		return Vector3{}
	}
	return v.Scale(1.0 / l)
}

func (v Vector3) toR3() r3.Vec    { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func fromR3(v r3.Vec) Vector3     { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// GreatCircleAngle returns the angle in radians between two unit
// vectors, clamped against acos domain errors from floating-point
// drift (§4.4's "chord-to-arc length" uses this directly).
func GreatCircleAngle(a, b Vector3) float64 {
	return math.Acos(Clamp(a.Dot(b), -1, 1))
}

// GreatCircleDistance returns R*angle between two unit vectors on a
// sphere of radius R, in the same length unit as R.
func GreatCircleDistance(a, b Vector3, radius float64) float64 {
	return radius * GreatCircleAngle(a, b)
}

// RotateAboutAxis rotates unit vector p by angle (radians) about unit
// axis, using quaternion rotation (grounded on js-arias-earth's
// rotation.go, which uses gonum's quat/r3 pair for exactly this).
func RotateAboutAxis(p, axis Vector3, angle float64) Vector3 {
	rot := r3.NewRotation(angle, axis.toR3())
	return fromR3(rot.Rotate(p.toR3()))
}

// ComposeRotation returns the axis and angle of the quaternion product
// representing "apply a then b" (b is applied in the outer frame); the
// angle lies in [0, π]. Used when a rifted
// fragment's drift must compose with its parent's existing rotation
// (SPEC_FULL.md's rotation-composition supplement).
func ComposeRotation(aAxis Vector3, aAngle float64, bAxis Vector3, bAngle float64) (axis Vector3, angle float64) {
	qa := quat.Number(r3.NewRotation(aAngle, aAxis.toR3()))
	qb := quat.Number(r3.NewRotation(bAngle, bAxis.toR3()))
	q := quat.Mul(qb, qa)
	// Read the axis/angle pair off the unit quaternion
	// q = (cos(θ/2), sin(θ/2)·axis), keeping θ in [0, π].
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	im := Vector3{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := im.Length()
	if s < 1e-15 {
		return Vector3{Z: 1}, 0
	}
	return im.Scale(1 / s), 2 * math.Atan2(s, q.Real)
}

// TangentFrame builds an orthonormal (tangent, bitangent) basis in the
// plane perpendicular to normal, used to order neighbours cyclically
// around a vertex (§3 AdjacencyCSR "cyclic" variant) and to pick a
// rifted fragment's drift tangent. Boundary normals are built
// separately, from cross products in internal/boundary.
func TangentFrame(normal Vector3) (tangent, bitangent Vector3) {
	n := normal.Normalize()
	ref := Vector3{X: 1}
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = Vector3{Y: 1}
	}
	tangent = ref.Sub(n.Scale(ref.Dot(n))).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// AngleAround returns the angle of point p (on the sphere, in the
// tangent plane at center) measured counter-clockwise from tangent,
// used to sort cyclic neighbour order.
func AngleAround(center, p, tangent, bitangent Vector3) float64 {
	d := p.Sub(center)
	x := d.Dot(tangent)
	y := d.Dot(bitangent)
	a := math.Atan2(y, x)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Smoothstep implements S(t) = 3t^2 - 2t^3 for t clamped to [0,1],
// used by the subduction bump function (§4.5).
func Smoothstep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}
