// Package kernel implements the per-step physical update kernels of
// spec §4.5-§4.9: subduction uplift, oceanic baseline, continental
// collision, rifting, and erosion/dampening.
package kernel

import (
	"math"

	"github.com/onuse/tectonica/internal/boundary"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/mesh"
	"github.com/onuse/tectonica/internal/plate"
)

// SubductionConfig holds the SubductionKernel's tunable constants
// (spec §4.5).
type SubductionConfig struct {
	U0      float64 // base uplift rate, m/Ma
	RC      float64 // inner bump radius, km
	RS      float64 // outer bump radius, km
	V0      float64 // reference relative velocity, km/Ma
	ZT      float64 // trench-band base elevation, m
	ZC      float64 // continental-shelf elevation ceiling, m
	Beta    float64 // fold-direction EMA gain
	Epsilon float64 // slab-pull reaction gain
}

// DefaultSubductionConfig returns the constants used across the test
// suite and the reference CLI.
func DefaultSubductionConfig() SubductionConfig {
	return SubductionConfig{
		U0: 6000, RC: 150, RS: 400, V0: 5,
		ZT: -2000, ZC: 6000, Beta: 0.1, Epsilon: 0.02,
	}
}

// bump evaluates f(d), the piecewise-C1 smoothstep bump of spec §4.5
// over [0, rs], peaking to 1 at rc.
func bump(d, rc, rs float64) float64 {
	switch {
	case d < 0 || d > rs:
		return 0
	case d <= rc:
		if rc == 0 {
			return 1
		}
		return geom.Smoothstep(d / rc)
	default:
		if rs == rc {
			return 0
		}
		return 1 - geom.Smoothstep((d-rc)/(rs-rc))
	}
}

// upliftGate evaluates h(z) = clamp((z-zt)/(zc-zt), 0, 1)^2.
func upliftGate(z, zt, zc float64) float64 {
	if zc == zt {
		return 0
	}
	t := (z - zt) / (zc - zt)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t
}

// opposingPlate finds the opposing plate id at vertex v: ring-1
// neighbours first, ring-2 (neighbours of neighbours) as fallback,
// v's own plate (zero uplift) if none found (spec §4.5).
func opposingPlate(v int, adj mesh.AdjacencyCSR, vertexPlate []int) int {
	own := vertexPlate[v]
	for _, n := range adj.Neighbors(v) {
		if vertexPlate[n] != own {
			return vertexPlate[n]
		}
	}
	for _, n := range adj.Neighbors(v) {
		for _, n2 := range adj.Neighbors(n) {
			if vertexPlate[n2] != own {
				return vertexPlate[n2]
			}
		}
	}
	return own
}

// nearestConvergentEdge returns the Convergent edge in field whose
// midpoint is angularly closest to p, used for the fold-direction
// update (spec §4.5).
func nearestConvergentEdge(p geom.Vector3, field *boundary.Field, positions []geom.Vector3) (boundary.Edge, bool) {
	best := math.Inf(1)
	var bestEdge boundary.Edge
	found := false
	for _, e := range field.Edges {
		if e.Class != boundary.Convergent {
			continue
		}
		mid, _, ok := boundary.EdgeFrame(e.A, e.B, positions)
		if !ok {
			continue
		}
		a := geom.GreatCircleAngle(p, mid)
		if a < best {
			best = a
			bestEdge = e
			found = true
		}
	}
	return bestEdge, found
}

// ApplySubduction runs one step of the SubductionKernel over every
// vertex, mutating elevation and foldDirection in place and applying
// the end-of-step slab-pull reaction to model's plates.
func ApplySubduction(cfg SubductionConfig, field *boundary.Field, adj mesh.AdjacencyCSR, positions []geom.Vector3, vertexPlate []int, model *plate.Model, planetRadiusKm, dt float64, elevation []float64, foldDirection []geom.Vector3) {
	velAt := func(plateID int, q geom.Vector3) geom.Vector3 {
		if pl, ok := model.Plates[plateID]; ok {
			return pl.VelocityAt(q, planetRadiusKm)
		}
		return geom.Vector3{}
	}

	for v := range positions {
		d := field.ToSubduction[v]
		if d == boundary.Inf {
			continue
		}
		f := bump(d, cfg.RC, cfg.RS)
		if f == 0 {
			continue
		}

		ownID := vertexPlate[v]
		oppID := opposingPlate(v, adj, vertexPlate)
		ownPlate, ok1 := model.Plates[ownID]
		oppPlate, ok2 := model.Plates[oppID]
		if !ok1 || !ok2 || ownID == oppID {
			continue
		}

		p := positions[v]
		vRel := oppPlate.VelocityAt(p, planetRadiusKm).Sub(ownPlate.VelocityAt(p, planetRadiusKm))
		g := vRel.Length() / cfg.V0
		h := upliftGate(elevation[v], cfg.ZT, cfg.ZC)

		elevation[v] += cfg.U0 * f * g * h * dt

		if e, ok := nearestConvergentEdge(p, field, positions); ok {
			sub, over := boundary.SubductingPlate(e, positions, vertexPlate, velAt)
			subPlate, okS := model.Plates[sub]
			overPlate, okO := model.Plates[over]
			if okS && okO {
				rel := overPlate.VelocityAt(p, planetRadiusKm).Sub(subPlate.VelocityAt(p, planetRadiusKm))
				updated := foldDirection[v].Add(rel.Scale(cfg.Beta * dt))
				// constrain tangent to the sphere at p
				updated = updated.Sub(p.Scale(updated.Dot(p)))
				if updated.Length() > 1e-12 {
					foldDirection[v] = updated.Normalize()
				}
			}
		}
	}

	accel := make(map[int]geom.Vector3)
	for _, e := range field.Edges {
		if e.Class != boundary.Convergent {
			continue
		}
		sub, _ := boundary.SubductingPlate(e, positions, vertexPlate, velAt)
		subPlate, ok := model.Plates[sub]
		if !ok {
			continue
		}
		mid, _, ok := boundary.EdgeFrame(e.A, e.B, positions)
		if !ok {
			continue
		}
		contribution := subPlate.Centroid.Cross(mid)
		if contribution.Length() < 1e-12 {
			continue
		}
		accel[sub] = accel[sub].Add(contribution.Normalize())
	}

	for plateID, a := range accel {
		if p, ok := model.Plates[plateID]; ok {
			p.ApplySlabPullReaction(a, cfg.Epsilon, dt)
		}
	}
}
