package kernel

import (
	"math"

	"github.com/onuse/tectonica/internal/boundary"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/plate"
)

// CollisionConfig holds the CollisionKernel's tunable constants
// (spec §4.7).
type CollisionConfig struct {
	DeltaC         float64 // Δc, uplift-per-area-per-speed coefficient
	GuardrailM     float64 // peak-height cap, m
	MergeAngleDeg  float64 // near-duplicate merge radius, degrees
	RadiusPerSpeed float64 // km of affected radius per km/Ma of closing speed
	RadiusPerArea  float64 // km of affected radius per unit terrane area
}

// DefaultCollisionConfig returns spec §4.7's reference constants.
func DefaultCollisionConfig() CollisionConfig {
	return CollisionConfig{DeltaC: 1.0, GuardrailM: 4000, MergeAngleDeg: 0.5, RadiusPerSpeed: 40, RadiusPerArea: 0.05}
}

// Event is a candidate collision event at a convergent continental-
// continental edge midpoint.
type Event struct {
	Center         geom.Vector3
	Area           float64 // deterministic-approximation terrane area
	Radius         float64 // angular radius, km (great-circle)
	PeakDz         float64
	PlateA, PlateB int
}

// BuildEvents creates one candidate event per Convergent edge where
// both endpoints' plates are Continental, then merges near-duplicates
// (same ordered plate pair, centres within MergeAngleDeg) by averaging
// centre and area (spec §4.7).
func BuildEvents(cfg CollisionConfig, field *boundary.Field, positions []geom.Vector3, vertexPlate []int, model *plate.Model, planetRadiusKm float64) []Event {
	var raw []Event
	for _, e := range field.Edges {
		if e.Class != boundary.Convergent {
			continue
		}
		pidA, pidB := vertexPlate[e.A], vertexPlate[e.B]
		pa, okA := model.Plates[pidA]
		pb, okB := model.Plates[pidB]
		if !okA || !okB || pa.CrustKind != plate.Continental || pb.CrustKind != plate.Continental {
			continue
		}
		mid, _, ok := boundary.EdgeFrame(e.A, e.B, positions)
		if !ok {
			continue
		}
		lo, hi := pidA, pidB
		if lo > hi {
			lo, hi = hi, lo
		}
		closing := pb.VelocityAt(mid, planetRadiusKm).Sub(pa.VelocityAt(mid, planetRadiusKm)).Length()
		area := geom.GreatCircleAngle(positions[e.A], positions[e.B]) * planetRadiusKm
		radius := cfg.RadiusPerSpeed*closing + cfg.RadiusPerArea*area
		peak := cfg.DeltaC * area * 1000
		if peak > cfg.GuardrailM {
			peak = cfg.GuardrailM
		}
		raw = append(raw, Event{Center: mid, Area: area, Radius: radius, PeakDz: peak, PlateA: lo, PlateB: hi})
	}
	return mergeEvents(raw, cfg.MergeAngleDeg)
}

func mergeEvents(events []Event, mergeAngleDeg float64) []Event {
	mergeAngle := mergeAngleDeg * math.Pi / 180
	var out []Event
	for _, e := range events {
		merged := false
		for i := range out {
			if out[i].PlateA != e.PlateA || out[i].PlateB != e.PlateB {
				continue
			}
			if geom.GreatCircleAngle(out[i].Center, e.Center) <= mergeAngle {
				out[i].Center = out[i].Center.Add(e.Center).Normalize()
				out[i].Area = (out[i].Area + e.Area) / 2
				out[i].Radius = (out[i].Radius + e.Radius) / 2
				out[i].PeakDz = (out[i].PeakDz + e.PeakDz) / 2
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, e)
		}
	}
	return out
}

// ApplyCollision applies every event's quartic surge profile to the
// vertices within its angular radius, mutating elevation and (when
// foldDirection is non-nil) the radial fold-vector cache in place
// (spec §4.7).
func ApplyCollision(events []Event, positions []geom.Vector3, planetRadiusKm float64, elevation []float64, foldDirection []geom.Vector3) {
	for _, ev := range events {
		if ev.Radius <= 0 {
			continue
		}
		for v, p := range positions {
			d := geom.GreatCircleDistance(p, ev.Center, planetRadiusKm)
			if d > ev.Radius {
				continue
			}
			t := d / ev.Radius
			falloff := (1 - t*t)
			falloff = falloff * falloff
			elevation[v] += ev.PeakDz * falloff

			if foldDirection != nil {
				radial := p.Sub(ev.Center)
				radial = radial.Sub(p.Scale(radial.Dot(p)))
				if radial.Length() > 1e-12 {
					foldDirection[v] = radial.Normalize()
				}
			}
		}
	}
}
