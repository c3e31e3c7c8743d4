package kernel

import (
	"github.com/onuse/tectonica/internal/boundary"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/plate"
)

// OceanicConfig holds the OceanicKernel's tunable constants (spec §4.6).
type OceanicConfig struct {
	RidgeCrestM    float64 // elevation at the ridge crest, m (negative)
	AbyssalPlainM  float64 // elevation of the abyssal plain, m (negative)
	RidgeHalfWidth float64 // km over which the ridge/abyssal blend saturates
	Epsilon        float64 // denominator floor for alpha
}

// DefaultOceanicConfig returns spec §4.6's literal constants.
func DefaultOceanicConfig() OceanicConfig {
	return OceanicConfig{RidgeCrestM: -1000, AbyssalPlainM: -6000, RidgeHalfWidth: 1000, Epsilon: 1e-6}
}

// ridgeProfile evaluates z_gamma(d_ridge), the quadratic ridge-to-abyss
// blend of spec §4.6.
func ridgeProfile(dRidge float64, cfg OceanicConfig) float64 {
	t := dRidge / cfg.RidgeHalfWidth
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	s := t * t
	return cfg.RidgeCrestM + (cfg.AbyssalPlainM-cfg.RidgeCrestM)*s
}

// ApplyOceanic runs one step of the OceanicKernel over every vertex
// whose plate is oceanic, mutating elevation and the ridge-direction
// cache in place. baseline holds each vertex's plate-local baseline
// elevation z̄ (spec §4.6's "per-vertex baseline" alternative; the
// cross-ridge interpolation alternative is not implemented, see
// DESIGN.md).
func ApplyOceanic(cfg OceanicConfig, field *boundary.Field, positions []geom.Vector3, vertexPlate []int, model *plate.Model, baseline []float64, elevation []float64, ridgeDirection []geom.Vector3) {
	for v := range positions {
		id := vertexPlate[v]
		p, ok := model.Plates[id]
		if !ok || p.CrustKind != plate.Oceanic {
			continue
		}

		dRidge := field.ToRidge[v]
		dAny := field.ToAnyBoundary[v]
		denom := dRidge + dAny
		if denom < cfg.Epsilon {
			denom = cfg.Epsilon
		}
		var alpha float64
		if dRidge == boundary.Inf {
			alpha = 0
		} else {
			alpha = dRidge / denom
			if alpha > 1 {
				alpha = 1
			}
		}

		zGamma := ridgeProfile(dRidge, cfg)
		elevation[v] = alpha*baseline[v] + (1-alpha)*zGamma

		if dRidge <= cfg.RidgeHalfWidth {
			if mid, ok := nearestRidgeMidpoint(positions[v], field, positions); ok {
				r := positions[v].Sub(mid).Cross(positions[v])
				if r.Length() > 1e-12 {
					ridgeDirection[v] = r.Normalize()
				}
			}
		}
	}
}

// nearestRidgeMidpoint finds the Divergent edge in field whose
// midpoint is angularly closest to p (spec §4.6's ridge-direction
// cache).
func nearestRidgeMidpoint(p geom.Vector3, field *boundary.Field, positions []geom.Vector3) (geom.Vector3, bool) {
	best := boundary.Inf
	var bestMid geom.Vector3
	found := false
	for _, e := range field.Edges {
		if e.Class != boundary.Divergent {
			continue
		}
		mid, _, ok := boundary.EdgeFrame(e.A, e.B, positions)
		if !ok {
			continue
		}
		a := geom.GreatCircleAngle(p, mid)
		if a < best {
			best = a
			bestMid = mid
			found = true
		}
	}
	return bestMid, found
}
