package kernel

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/plate"
)

// RiftingConfig holds the RiftingKernel's tunable constants (spec §4.8).
type RiftingConfig struct {
	LambdaBase          float64 // λ_base
	ReferenceArea       float64 // A₀
	MaxFragmentAngleDeg float64 // bound on drift-direction rotation, degrees
}

// DefaultRiftingConfig returns spec §4.8's reference constants.
func DefaultRiftingConfig() RiftingConfig {
	return RiftingConfig{LambdaBase: 0.01, ReferenceArea: 1.0, MaxFragmentAngleDeg: 45}
}

// continentalRatioFactor is f(continental_ratio): rifting likelihood
// falls off as a plate becomes more continental, since continents
// resist rifting more than oceanic crust.
func continentalRatioFactor(ratio float64) float64 {
	return 1 - 0.5*ratio
}

// plateSeed derives a deterministic per-plate hash seed from the
// simulation seed and plate id (spec §4.8: "per-plate deterministic
// hash seed"), so rifting outcomes do not depend on map iteration
// order.
func plateSeed(simSeed int64, plateID int) int64 {
	h := fnv.New64a()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(simSeed >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(int64(plateID) >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}

// plateArea sums the spherical-cap fraction area contributed by each
// assigned vertex (area ≈ 4π/N per Fibonacci sample, spec §4.1), a
// deterministic proxy for a plate's share of total surface area.
func plateArea(model *plate.Model, plateID int) float64 {
	n := len(model.VertexPlate)
	if n == 0 {
		return 0
	}
	count := 0
	for _, id := range model.VertexPlate {
		if id == plateID {
			count++
		}
	}
	return 4 * math.Pi * float64(count) / float64(n)
}

// RiftingResult reports the fragments produced by one plate's rifting
// event, for logging/metrics.
type RiftingResult struct {
	ParentID    int
	FragmentIDs []int
}

// ApplyRifting evaluates the Poisson rifting trial for every plate and
// splits those selected, reassigning vertices by geodesic Voronoi and
// spinning up fresh plate records for the new fragments (spec §4.8).
// simSeed is the overall simulation seed. There is no dt parameter: any
// per-step scaling of the probability comes from the caller's choice of
// cfg.LambdaBase.
func ApplyRifting(cfg RiftingConfig, model *plate.Model, positions []geom.Vector3, simSeed int64) []RiftingResult {
	var results []RiftingResult

	candidateIDs := make([]int, 0, len(model.Plates))
	for id := range model.Plates {
		candidateIDs = append(candidateIDs, id)
	}
	// Deterministic order: ascending id, independent of map iteration.
	for i := 1; i < len(candidateIDs); i++ {
		for j := i; j > 0 && candidateIDs[j-1] > candidateIDs[j]; j-- {
			candidateIDs[j-1], candidateIDs[j] = candidateIDs[j], candidateIDs[j-1]
		}
	}

	for _, id := range candidateIDs {
		p, ok := model.Plates[id]
		if !ok {
			continue
		}
		area := plateArea(model, id)
		lambda0 := cfg.LambdaBase * continentalRatioFactor(p.ContinentalRatio) * area / cfg.ReferenceArea
		prob := lambda0 * math.Exp(-lambda0)

		rng := rand.New(rand.NewSource(plateSeed(simSeed, id)))
		if rng.Float64() >= prob {
			continue
		}

		result := riftPlate(cfg, model, positions, id, rng)
		if result != nil {
			results = append(results, *result)
		}
	}
	return results
}

func riftPlate(cfg RiftingConfig, model *plate.Model, positions []geom.Vector3, parentID int, rng *rand.Rand) *RiftingResult {
	var members []int
	for v, id := range model.VertexPlate {
		if id == parentID {
			members = append(members, v)
		}
	}
	if len(members) < 2 {
		return nil
	}

	k := 2 + rng.Intn(3)
	if k > len(members) {
		k = len(members)
	}

	// Choose k distinct seed vertices deterministically (Fisher-Yates
	// partial shuffle of the member list using the plate's own stream).
	seedIdx := append([]int(nil), members...)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(seedIdx)-i)
		seedIdx[i], seedIdx[j] = seedIdx[j], seedIdx[i]
	}
	seedVerts := seedIdx[:k]

	parent := model.Plates[parentID]
	fragmentIDs := make([]int, k)
	fragmentIDs[0] = parentID
	seeds := map[int]geom.Vector3{parentID: positions[seedVerts[0]]}

	for i := 1; i < k; i++ {
		frag := model.AddFragmentPlate(parent, parent.EulerAxis, parent.AngularSpeed, parent.CrustKind, parent.ContinentalRatio)
		fragmentIDs[i] = frag.ID
		seeds[frag.ID] = positions[seedVerts[i]]
	}

	onlyFrom := map[int]bool{parentID: true}
	model.AssignByGeodesicVoronoi(positions, seeds, false, onlyFrom)

	for _, fragID := range fragmentIDs {
		if fragID == parentID {
			continue
		}
		rotateDriftDirection(model.Plates[fragID], cfg.MaxFragmentAngleDeg, rng, positions, model)
	}

	return &RiftingResult{ParentID: parentID, FragmentIDs: fragmentIDs}
}

// rotateDriftDirection sets a fragment's Euler axis to the unit
// tangent at its centroid rotated by a bounded hash-seeded angle
// (spec §4.8).
func rotateDriftDirection(frag *plate.Plate, maxAngleDeg float64, rng *rand.Rand, positions []geom.Vector3, model *plate.Model) {
	model.RecomputeCentroid(frag.ID, positions)
	tangent, _ := geom.TangentFrame(frag.Centroid)
	angle := (rng.Float64()*2 - 1) * maxAngleDeg * math.Pi / 180
	frag.EulerAxis = geom.RotateAboutAxis(tangent, frag.Centroid, angle)
}
