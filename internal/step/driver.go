// Package step drives one simulation tick through the fixed kernel
// order of spec §2: plate advection, boundary reclassification, the
// five physical update kernels E-I, and (on request) the two Stage-B
// amplification passes.
package step

import (
	"github.com/onuse/tectonica/internal/amplify"
	"github.com/onuse/tectonica/internal/boundary"
	"github.com/onuse/tectonica/internal/config"
	"github.com/onuse/tectonica/internal/errs"
	"github.com/onuse/tectonica/internal/exemplar"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/kernel"
	"github.com/onuse/tectonica/internal/logx"
	"github.com/onuse/tectonica/internal/mesh"
	"github.com/onuse/tectonica/internal/plate"
	"github.com/onuse/tectonica/internal/sampling"
)

// Simulation owns every array and record that flows through a
// simulation run: the fixed mesh/adjacency, the plate model, and the
// per-vertex state arrays the kernels mutate in place (spec §3
// VertexState, TopologyVersion/SurfaceVersion).
type Simulation struct {
	Settings config.Settings

	Points    []geom.Vector3 // original lattice positions, stable for the topology's lifetime
	Mesh      *mesh.Triangulation
	Adjacency mesh.AdjacencyCSR
	Plates    *plate.Model
	Field     *boundary.Field

	Elevation          []float64
	AmplifiedElevation []float64
	FoldDirection      []geom.Vector3
	RidgeDirection     []geom.Vector3
	CrustAge           []float64
	oceanicBaseline    []float64

	SubductionCfg kernel.SubductionConfig
	OceanicCfg    kernel.OceanicConfig
	CollisionCfg  kernel.CollisionConfig
	RiftingCfg    kernel.RiftingConfig
	ErosionCfg    kernel.ErosionConfig
	AmplifyParams amplify.Params
	Continental   amplify.ContinentalParams

	TopologyVersion uint64
	SurfaceVersion  uint64
	StepIndex       int
}

// New bootstraps a fresh simulation: sampler, triangulator, an
// initial plate partition, and zeroed per-vertex state (spec §2's A,
// B, C at topology creation).
func New(cfg config.Settings) errs.Result[*Simulation] {
	pts := sampling.Points(cfg.SampleCount)

	meshCfg := mesh.Config{
		Backend:     mesh.Backend(backendFor(cfg.Backend)),
		Shuffle:     cfg.Shuffle,
		ShuffleSeed: cfg.ShuffleSeed,
	}
	tri := mesh.Triangulate(pts, meshCfg, mesh.AlwaysAvailable)
	if !tri.IsOk() {
		return errs.Fail[*Simulation](tri.Err)
	}
	adj := mesh.BuildCyclicAdjacency(tri.Value)
	model := Bootstrap(pts, cfg.PlateCount, cfg.ContinentalFraction, cfg.Seed)

	erosionCfg := kernel.DefaultErosionConfig()
	erosionCfg.EnableContinentalErosion = cfg.EnableContinentalErosion
	erosionCfg.EnableOceanicDampening = cfg.EnableOceanicDampening
	erosionCfg.EnableTrenchAccretion = cfg.EnableTrenchAccretion
	erosionCfg.TrenchBandKm = cfg.TrenchBandKm

	n := len(pts)
	sim := &Simulation{
		Settings:           cfg,
		Points:             pts,
		Mesh:               tri.Value,
		Adjacency:          adj,
		Plates:             model,
		Elevation:          make([]float64, n),
		AmplifiedElevation: make([]float64, n),
		FoldDirection:      make([]geom.Vector3, n),
		RidgeDirection:     make([]geom.Vector3, n),
		CrustAge:           make([]float64, n),
		oceanicBaseline:    make([]float64, n),
		SubductionCfg:      kernel.DefaultSubductionConfig(),
		OceanicCfg:         kernel.DefaultOceanicConfig(),
		CollisionCfg:       kernel.DefaultCollisionConfig(),
		RiftingCfg:         kernel.DefaultRiftingConfig(),
		ErosionCfg:         erosionCfg,
		AmplifyParams:      amplify.Params{RidgeAmplitude: 150, AgeFalloff: 40, NoiseFrequency: 8, Seed: cfg.Seed},
		Continental:        amplify.DefaultContinentalParams(),
		TopologyVersion:    1,
	}
	sim.initElevation()
	sim.rebuildField()
	return errs.Ok(sim)
}

func backendFor(b config.TriangulationBackend) mesh.Backend {
	switch b {
	case config.BackendPrimary:
		return mesh.BackendPrimary
	case config.BackendFallback:
		return mesh.BackendFallback
	default:
		return mesh.BackendAuto
	}
}

// initElevation seeds every vertex's baseline elevation from its
// plate's crust kind: continental plates start near sea level,
// oceanic plates start at the abyssal plain depth. The oceanic
// baseline is frozen here and fed to ApplyOceanic every step as z̄
// (spec §4.6).
func (s *Simulation) initElevation() {
	for v, id := range s.Plates.VertexPlate {
		p, ok := s.Plates.Plates[id]
		if !ok {
			continue
		}
		if p.CrustKind == plate.Continental {
			s.Elevation[v] = 200
		} else {
			s.Elevation[v] = s.OceanicCfg.AbyssalPlainM
		}
		s.oceanicBaseline[v] = s.Elevation[v]
		s.AmplifiedElevation[v] = s.Elevation[v]
	}
}

// velocityFunc adapts the plate model into the VelocityFunc shape the
// boundary and kernel packages expect.
func (s *Simulation) velocityFunc() boundary.VelocityFunc {
	return func(plateID int, p geom.Vector3) geom.Vector3 {
		pl, ok := s.Plates.Plates[plateID]
		if !ok {
			return geom.Vector3{}
		}
		return pl.VelocityAt(p, s.Settings.PlanetRadiusKm)
	}
}

func (s *Simulation) rebuildField() {
	positions := s.Plates.CurrentPositions(s.Points)
	s.Field = boundary.Build(s.Adjacency, positions, s.Plates.VertexPlate, s.velocityFunc(), s.Settings.BoundaryTransformEps, s.Settings.PlanetRadiusKm)
}

// CurrentPositions returns every vertex's current advected position.
func (s *Simulation) CurrentPositions() []geom.Vector3 {
	return s.Plates.CurrentPositions(s.Points)
}

// Step advances the simulation by dt (Ma), applying component C
// (Euler-pole integration), D (boundary reclassification), then E
// through I in the fixed order of spec §2.
func (s *Simulation) Step(dt float64) {
	s.Plates.Advance(dt)
	positions := s.CurrentPositions()
	s.rebuildFieldAt(positions)

	kernel.ApplySubduction(s.SubductionCfg, s.Field, s.Adjacency, positions, s.Plates.VertexPlate, s.Plates, s.Settings.PlanetRadiusKm, dt, s.Elevation, s.FoldDirection)
	kernel.ApplyOceanic(s.OceanicCfg, s.Field, positions, s.Plates.VertexPlate, s.Plates, s.oceanicBaseline, s.Elevation, s.RidgeDirection)

	events := kernel.BuildEvents(s.CollisionCfg, s.Field, positions, s.Plates.VertexPlate, s.Plates, s.Settings.PlanetRadiusKm)
	kernel.ApplyCollision(events, positions, s.Settings.PlanetRadiusKm, s.Elevation, s.FoldDirection)

	riftResults := kernel.ApplyRifting(s.RiftingCfg, s.Plates, positions, s.Settings.Seed+int64(s.StepIndex))
	if len(riftResults) > 0 {
		s.TopologyVersion++
		logx.Log.Info().Int("step", s.StepIndex).Int("rifted_plates", len(riftResults)).Msg("plates rifted")
	}

	kernel.ApplyErosion(s.ErosionCfg, s.Field, s.Plates.VertexPlate, s.Plates, dt, s.Elevation)

	s.updateCrustAge(dt)
	s.SurfaceVersion++
	s.StepIndex++
}

func (s *Simulation) rebuildFieldAt(positions []geom.Vector3) {
	s.Field = boundary.Build(s.Adjacency, positions, s.Plates.VertexPlate, s.velocityFunc(), s.Settings.BoundaryTransformEps, s.Settings.PlanetRadiusKm)
}

// updateCrustAge resets a vertex's crust age when it sits within the
// ridge half-width (freshly re-crystallised) and ages every other
// vertex by dt (spec §4.10's "crust age since last re-crystallisation
// at the ridge").
func (s *Simulation) updateCrustAge(dt float64) {
	for v := range s.CrustAge {
		if v < len(s.Field.ToRidge) && s.Field.ToRidge[v] <= s.OceanicCfg.RidgeHalfWidth {
			s.CrustAge[v] = 0
			continue
		}
		s.CrustAge[v] += dt
	}
}

// AmplifyStageB runs Stage B (J: oceanic fault noise, K: continental
// exemplar blending) if enabled and the render LOD meets the
// configured minimum; otherwise amplified elevation falls back to the
// baseline and a structured reason is returned (spec §6's
// `AmplificationNotReady`).
func (s *Simulation) AmplifyStageB(lib *exemplar.Library) *errs.Error {
	if s.Settings.RenderSubdivisionLevel < s.Settings.MinAmplificationLOD {
		copy(s.AmplifiedElevation, s.Elevation)
		return errs.New(errs.AmplificationNotReady, "step.AmplifyStageB", "render LOD below min_amplification_lod")
	}
	if !s.Settings.EnableOceanicAmplification && !s.Settings.EnableContinentalAmplification {
		copy(s.AmplifiedElevation, s.Elevation)
		return errs.New(errs.AmplificationNotReady, "step.AmplifyStageB", "Stage B amplification disabled")
	}

	positions := s.CurrentPositions()
	oceanicMask := make([]bool, len(positions))
	for v, id := range s.Plates.VertexPlate {
		if p, ok := s.Plates.Plates[id]; ok {
			oceanicMask[v] = p.CrustKind == plate.Oceanic
		}
	}

	out := make([]float64, len(s.Elevation))
	copy(out, s.Elevation)

	if s.Settings.EnableOceanicAmplification {
		snap := amplify.Snapshot{
			Baseline:       out,
			Positions:      positions,
			RidgeDirection: s.RidgeDirection,
			CrustAge:       s.CrustAge,
			OceanicMask:    oceanicMask,
			Params:         s.AmplifyParams,
		}
		out = amplify.Oceanic(snap)
	}

	if s.Settings.EnableContinentalAmplification && lib != nil {
		weights := make([][]amplify.ExemplarWeight, len(positions))
		for v, id := range s.Plates.VertexPlate {
			p, ok := s.Plates.Plates[id]
			if !ok || p.CrustKind != plate.Continental {
				continue
			}
			slope := 0.0
			if v < len(s.Field.ToAnyBoundary) && s.Field.ToAnyBoundary[v] != boundary.Inf && s.Field.ToAnyBoundary[v] > 0 {
				slope = out[v] / s.Field.ToAnyBoundary[v]
			}
			class := amplify.ClassifyTerrain(s.Continental, slope, s.Field.ToAnyBoundary[v], s.CrustAge[v])
			weights[v] = amplify.SelectExemplars(lib, class, out[v])
		}
		out = amplify.Continental(lib, out, positions, weights)
	}

	s.AmplifiedElevation = out
	return nil
}
