package amplify

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Oceanic computes the CPU reference Stage-B oceanic amplification
// (spec §4.10): procedural fault noise parameterised by the local
// ridge direction and crust age, amplitude decaying with age, added
// to the baseline. Returns amplified_elevation, one entry per vertex;
// non-oceanic vertices pass the baseline through unchanged.
func Oceanic(s Snapshot) []float64 {
	noise := opensimplex.NewNormalized(s.Params.Seed)
	out := make([]float64, len(s.Baseline))

	for v, base := range s.Baseline {
		out[v] = base
		if v >= len(s.OceanicMask) || !s.OceanicMask[v] {
			continue
		}

		p := s.Positions[v]
		ridge := s.RidgeDirection[v]
		freq := s.Params.NoiseFrequency

		// Sample along the ridge-perpendicular direction so fault
		// lineations run parallel to the ridge, like abyssal-hill
		// fabric.
		u := p.X*ridge.Y - p.Y*ridge.X
		w := p.Z

		n := noise.Eval2(u*freq, w*freq)*2 - 1 // normalized() returns [0,1]

		age := 0.0
		if v < len(s.CrustAge) {
			age = s.CrustAge[v]
		}
		decay := math.Exp(-age / math.Max(s.Params.AgeFalloff, 1e-9))

		out[v] = base + n*s.Params.RidgeAmplitude*decay
	}
	return out
}
