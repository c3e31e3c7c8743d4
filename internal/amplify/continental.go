package amplify

import (
	"math"
	"sort"

	"github.com/onuse/tectonica/internal/exemplar"
	"github.com/onuse/tectonica/internal/geom"
)

// TerrainClass classifies a continental vertex's local terrain
// character for exemplar selection (spec §4.11's Open Question:
// resolved as an explicit enum rather than a packed bitfield, see
// SPEC_FULL.md).
type TerrainClass int

const (
	Plain TerrainClass = iota
	Orogenic
	Ancient
)

// ExemplarWeight is one exemplar's contribution to a vertex's blended
// relief, part of a slice of up to 4 summing to 1 (spec §4.11).
type ExemplarWeight struct {
	Index  uint8
	Weight float32
}

// ContinentalParams are the classification thresholds that decide
// TerrainClass from local slope, plate-boundary proximity, and crust
// age.
type ContinentalParams struct {
	OrogenicSlope      float64 // m per km; above this, terrain is Orogenic
	OrogenicBoundaryKm float64 // within this of any boundary, terrain can be Orogenic
	AncientAgeMa       float64 // above this crust age, terrain is Ancient
}

// DefaultContinentalParams returns reasonable reference thresholds.
func DefaultContinentalParams() ContinentalParams {
	return ContinentalParams{OrogenicSlope: 20, OrogenicBoundaryKm: 300, AncientAgeMa: 500}
}

// ClassifyTerrain decides a vertex's TerrainClass (spec §4.11).
func ClassifyTerrain(params ContinentalParams, slope, distanceToBoundaryKm, crustAgeMa float64) TerrainClass {
	if slope >= params.OrogenicSlope && distanceToBoundaryKm <= params.OrogenicBoundaryKm {
		return Orogenic
	}
	if crustAgeMa >= params.AncientAgeMa {
		return Ancient
	}
	return Plain
}

// SelectExemplars picks up to 4 exemplars whose region matches class,
// weighted by inverse elevation-mean distance to targetElevation, with
// weights normalised to sum to 1 (spec §4.11: "select up to 4 exemplar
// indices with weights summing to 1").
func SelectExemplars(lib *exemplar.Library, class TerrainClass, targetElevation float64) []ExemplarWeight {
	region := regionName(class)
	type candidate struct {
		index int
		dist  float64
	}
	var candidates []candidate
	for i := 0; i < lib.Count(); i++ {
		p, ok := lib.Patch(i)
		if !ok || p.Region != region {
			continue
		}
		candidates = append(candidates, candidate{index: i, dist: math.Abs(p.ElevationMeanM - targetElevation)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if len(candidates) > 4 {
		candidates = candidates[:4]
	}
	if len(candidates) == 0 {
		return nil
	}

	weights := make([]ExemplarWeight, len(candidates))
	total := 0.0
	for i, c := range candidates {
		w := 1.0 / (1.0 + c.dist)
		weights[i] = ExemplarWeight{Index: uint8(c.index), Weight: float32(w)}
		total += w
	}
	if total > 0 {
		for i := range weights {
			weights[i].Weight = float32(float64(weights[i].Weight) / total)
		}
	}
	return weights
}

func regionName(class TerrainClass) string {
	switch class {
	case Orogenic:
		return "orogenic"
	case Ancient:
		return "ancient"
	default:
		return "plain"
	}
}

// wrappedUV deterministically derives sample coordinates from a
// vertex's spherical position so repeated calls for the same vertex
// are stable (spec §4.11: "deterministic wrapped/random UV").
func wrappedUV(p geom.Vector3) (u, v float64) {
	u = math.Atan2(p.Y, p.X)/(2*math.Pi) + 0.5
	v = math.Acos(clampUnit(p.Z)) / math.Pi
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

// Continental computes the CPU reference Stage-B continental
// amplification for every vertex with a non-empty weight set,
// blending exemplar samples and adding the result to the baseline
// (spec §4.11). weights[v] is nil for non-continental vertices.
func Continental(lib *exemplar.Library, baseline []float64, positions []geom.Vector3, weights [][]ExemplarWeight) []float64 {
	out := make([]float64, len(baseline))
	copy(out, baseline)

	for v, ws := range weights {
		if len(ws) == 0 {
			continue
		}
		u, vv := wrappedUV(positions[v])
		var blended float64
		for _, w := range ws {
			sample, ok := lib.Sample(int(w.Index), u, vv)
			if !ok {
				continue
			}
			blended += sample * float64(w.Weight)
		}
		out[v] = baseline[v] + blended
	}
	return out
}
