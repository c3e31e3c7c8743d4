package step

import (
	"math"
	"math/rand"

	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/plate"
	"github.com/onuse/tectonica/internal/sampling"
)

// Bootstrap partitions a fresh mesh into plateCount plates: seed
// centroids are drawn from a Fibonacci lattice of their own (so the
// partition is deterministic and roughly even-area, same rationale as
// the point sampler itself), each seed plate gets a random Euler axis
// near its own centroid with a random rotation speed, and every vertex
// is assigned to its angularly nearest seed via geodesic Voronoi.
//
// This bootstrap sits outside the simulation core proper: the plate
// model's job starts once a partition exists, not from a bare point
// set. It lives here rather than in internal/plate so that package
// never needs math/rand.
func Bootstrap(positions []geom.Vector3, plateCount int, continentalFraction float64, seed int64) *plate.Model {
	model := plate.NewModel(len(positions))
	if plateCount <= 0 {
		return model
	}

	rng := rand.New(rand.NewSource(seed))
	seeds := sampling.Points(plateCount)
	seedMap := make(map[int]geom.Vector3, plateCount)

	for i, centroid := range seeds {
		axis := randomAxisNear(centroid, rng)
		speed := (rng.Float64()*2 - 1) * 0.02 // rad/Ma, a few cm/yr at planet radius
		kind := plate.Oceanic
		ratio := 0.0
		if rng.Float64() < continentalFraction {
			kind = plate.Continental
			ratio = 0.4 + rng.Float64()*0.5
		}
		p := model.AddPlate(axis, speed, kind, ratio)
		p.Centroid = centroid
		seedMap[p.ID] = centroid
	}

	model.AssignByGeodesicVoronoi(positions, seedMap, true, nil)
	for id := range seedMap {
		model.RecomputeCentroid(id, positions)
	}
	return model
}

// randomAxisNear perturbs centroid slightly so most plates rotate
// roughly "outward" from their own position rather than sharing one
// global axis, which would degenerate into rigid-body co-rotation.
func randomAxisNear(centroid geom.Vector3, rng *rand.Rand) geom.Vector3 {
	tangent, bitangent := geom.TangentFrame(centroid)
	theta := rng.Float64() * 2 * math.Pi
	spread := 0.3
	perturbed := centroid.Add(tangent.Scale(math.Cos(theta) * spread)).Add(bitangent.Scale(math.Sin(theta) * spread))
	return perturbed.Normalize()
}
