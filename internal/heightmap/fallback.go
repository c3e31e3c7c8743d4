package heightmap

import (
	"math"

	"github.com/onuse/tectonica/internal/geom"
)

// RescueMode distinguishes which fallback ladder rung (spec §4.12)
// produced a hit, so the exporter can tally each mode separately
// (spec §4.13).
type RescueMode int

const (
	RescueNone RescueMode = iota
	RescueDirect
	RescueSanitizedUV
	RescueNudge
	RescueNeighborhood
	RescueSeamWrap
	RescueRowHint
	RescueFailed
)

// uvEpsilon keeps V away from the exact poles, where longitude is
// undefined (spec §4.12, fallback rung (a)).
const uvEpsilon = 1e-4

// nudgeSteps are the small ±U/±V perturbations tried at fallback
// rung (b), in UV units (the same [0,1] scale as U and V).
var nudgeSteps = []float64{1e-4, -1e-4}

// neighborhoodSteps are the two step sizes used for the expanded 3x3
// neighbourhood search at fallback rung (c).
var neighborhoodSteps = []float64{1e-3, 1e-2}

// uvToPoint converts equirectangular UV (u in [0,1) longitude, v in
// [0,1] latitude from north pole) back to a unit vector, inverse of
// the convention used by wrappedUV in internal/amplify.
func uvToPoint(u, v float64) geom.Vector3 {
	lon := (u - 0.5) * 2 * math.Pi
	lat := math.Pi/2 - v*math.Pi
	cosLat := math.Cos(lat)
	return geom.Vector3{X: math.Cos(lon) * cosLat, Y: math.Sin(lon) * cosLat, Z: math.Sin(lat)}
}

// pointToUV is the inverse of uvToPoint.
func pointToUV(p geom.Vector3) (u, v float64) {
	lon := math.Atan2(p.Y, p.X)
	lat := math.Asin(clampUnit(p.Z))
	u = lon/(2*math.Pi) + 0.5
	v = (math.Pi/2 - lat) / math.Pi
	return u, v
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

func sanitizeUV(u, v float64) (float64, float64) {
	u = u - math.Floor(u) // wrap U into [0,1)
	if v < uvEpsilon {
		v = uvEpsilon
	} else if v > 1-uvEpsilon {
		v = 1 - uvEpsilon
	}
	return u, v
}

// SampleWithFallback runs the full fallback ladder of spec §4.12: a
// direct sample, then sanitised UV, small nudges, an expanded 3x3
// neighbourhood at two step sizes, seam wrap at U=0/U=1, and finally
// the caller-supplied row hint.
func (idx *Index) SampleWithFallback(u geom.Vector3, hint int, elevation []float64, rowHint int) (Result, RescueMode) {
	if r := idx.Sample(u, hint, elevation); r.Hit {
		return r, RescueDirect
	}

	uu, vv := pointToUV(u)
	su, sv := sanitizeUV(uu, vv)
	if su != uu || sv != vv {
		p := uvToPoint(su, sv)
		if r := idx.Sample(p, hint, elevation); r.Hit {
			return r, RescueSanitizedUV
		}
	}

	for _, du := range nudgeSteps {
		for _, dv := range nudgeSteps {
			p := uvToPoint(su+du, sv+dv)
			if r := idx.Sample(p, hint, elevation); r.Hit {
				return r, RescueNudge
			}
		}
	}

	for _, step := range neighborhoodSteps {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				p := uvToPoint(su+float64(dx)*step, sv+float64(dy)*step)
				if r := idx.Sample(p, hint, elevation); r.Hit {
					return r, RescueNeighborhood
				}
			}
		}
	}

	for _, seamU := range []float64{0, 1 - 1e-6} {
		p := uvToPoint(seamU, sv)
		if r := idx.Sample(p, hint, elevation); r.Hit {
			return r, RescueSeamWrap
		}
	}

	if rowHint >= 0 {
		if r := idx.Sample(u, rowHint, elevation); r.Hit {
			return r, RescueRowHint
		}
	}

	return Result{Hit: false}, RescueFailed
}
