package kernel

import (
	"github.com/onuse/tectonica/internal/boundary"
	"github.com/onuse/tectonica/internal/plate"
)

// ErosionConfig holds the ErosionKernel's tunable constants (spec §4.9).
// The literal defaults below are the ones spec.md names.
type ErosionConfig struct {
	ZC                       float64 // continental erosion reference height, m
	ZT                       float64 // oceanic dampening reference depth, m
	EpsilonC                 float64 // continental erosion rate, m/Ma
	EpsilonO                 float64 // oceanic dampening rate, m/Ma
	EpsilonT                 float64 // trench accretion rate, m/Ma
	TrenchBandKm             float64
	EnableContinentalErosion bool
	EnableOceanicDampening   bool
	EnableTrenchAccretion    bool
}

// DefaultErosionConfig returns spec §4.9's literal constants.
func DefaultErosionConfig() ErosionConfig {
	return ErosionConfig{
		ZC: 10000, ZT: -10000, EpsilonC: 30, EpsilonO: 40, EpsilonT: 300,
		TrenchBandKm:             200,
		EnableContinentalErosion: true,
		EnableOceanicDampening:   true,
		EnableTrenchAccretion:    true,
	}
}

// ApplyErosion runs one step of the ErosionKernel over every vertex,
// mutating elevation in place (spec §4.9). Each term is independently
// toggleable per cfg's enable flags.
func ApplyErosion(cfg ErosionConfig, field *boundary.Field, vertexPlate []int, model *plate.Model, dt float64, elevation []float64) {
	for v, id := range vertexPlate {
		p, ok := model.Plates[id]
		if !ok {
			continue
		}
		z := elevation[v]

		if cfg.EnableContinentalErosion && p.CrustKind == plate.Continental && z > 0 {
			elevation[v] -= (z / cfg.ZC) * cfg.EpsilonC * dt
		}
		if cfg.EnableOceanicDampening && p.CrustKind == plate.Oceanic {
			elevation[v] -= (1 - z/cfg.ZT) * cfg.EpsilonO * dt
		}
		if cfg.EnableTrenchAccretion && field.ToSubduction[v] != boundary.Inf && field.ToSubduction[v] <= cfg.TrenchBandKm {
			elevation[v] += cfg.EpsilonT * dt
		}
	}
}
