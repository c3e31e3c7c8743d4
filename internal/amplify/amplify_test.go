package amplify

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/onuse/tectonica/internal/exemplar"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotHashDeterministic(t *testing.T) {
	pts := sampling.Points(100)
	s := Snapshot{
		Baseline:       make([]float64, 100),
		Positions:      pts,
		RidgeDirection: make([]geom.Vector3, 100),
		CrustAge:       make([]float64, 100),
		OceanicMask:    make([]bool, 100),
		Params:         Params{RidgeAmplitude: 100, AgeFalloff: 30, NoiseFrequency: 1, Seed: 7},
	}
	a := s.Hash()
	b := s.Hash()
	assert.Equal(t, a, b)

	s.Baseline[0] = 1
	assert.NotEqual(t, a, s.Hash())
}

func TestWithinParity(t *testing.T) {
	cpu := []float64{10, 20, 30}
	gpuOK := []float64{10.05, 19.96, 30.02}
	gpuBad := []float64{10, 20, 31}
	assert.True(t, WithinParity(cpu, gpuOK))
	assert.False(t, WithinParity(cpu, gpuBad))
	assert.False(t, WithinParity(cpu, []float64{1}))
}

func TestOceanicAmplificationDecaysWithAge(t *testing.T) {
	pts := sampling.Points(50)
	n := len(pts)
	baseline := make([]float64, n)
	ridge := make([]geom.Vector3, n)
	age := make([]float64, n)
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
		ridge[i] = geom.Vector3{X: 1}
		age[i] = float64(i)
	}

	s := Snapshot{
		Baseline: baseline, Positions: pts, RidgeDirection: ridge, CrustAge: age, OceanicMask: mask,
		Params: Params{RidgeAmplitude: 1000, AgeFalloff: 20, NoiseFrequency: 0.01, Seed: 1},
	}
	out := Oceanic(s)

	youngDelta := math.Abs(out[0] - baseline[0])
	oldDelta := math.Abs(out[n-1] - baseline[n-1])
	assert.Greater(t, youngDelta, oldDelta*0.5) // young crust has materially more fault relief than very old crust
}

func TestOceanicAmplificationSkipsNonOceanic(t *testing.T) {
	pts := sampling.Points(20)
	n := len(pts)
	baseline := make([]float64, n)
	for i := range baseline {
		baseline[i] = -3000
	}
	s := Snapshot{
		Baseline: baseline, Positions: pts,
		RidgeDirection: make([]geom.Vector3, n), CrustAge: make([]float64, n), OceanicMask: make([]bool, n),
		Params: Params{RidgeAmplitude: 500, AgeFalloff: 10, NoiseFrequency: 1, Seed: 3},
	}
	out := Oceanic(s)
	assert.Equal(t, baseline, out)
}

func fakeLibrary(t *testing.T) *exemplar.Library {
	t.Helper()
	dir := t.TempDir()
	m := struct {
		Exemplars []exemplar.Patch `json:"exemplars"`
	}{
		Exemplars: []exemplar.Patch{
			{ID: "a", Region: "orogenic", ElevationMinM: 0, ElevationMaxM: 4000, ElevationMeanM: 2000, PNG16Path: "a.png"},
			{ID: "b", Region: "plain", ElevationMinM: 0, ElevationMaxM: 500, ElevationMeanM: 200, PNG16Path: "b.png"},
		},
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	lib := exemplar.NewLibrary(4)
	require.True(t, lib.Load(path, stubDecoder{}).IsOk())
	return lib
}

type stubDecoder struct{}

func (stubDecoder) Decode(path string, resolution int) ([][]float64, error) {
	grid := make([][]float64, resolution)
	for y := range grid {
		grid[y] = make([]float64, resolution)
		for x := range grid[y] {
			grid[y][x] = 100
		}
	}
	return grid, nil
}

func TestSelectExemplarsWeightsSumToOne(t *testing.T) {
	lib := fakeLibrary(t)
	weights := SelectExemplars(lib, Orogenic, 2000)
	require.NotEmpty(t, weights)
	var sum float32
	for _, w := range weights {
		sum += w.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
	require.LessOrEqual(t, len(weights), 4)
}

func TestClassifyTerrainBuckets(t *testing.T) {
	params := DefaultContinentalParams()
	assert.Equal(t, Orogenic, ClassifyTerrain(params, 50, 100, 10))
	assert.Equal(t, Ancient, ClassifyTerrain(params, 1, 1000, 600))
	assert.Equal(t, Plain, ClassifyTerrain(params, 1, 1000, 10))
}

func TestContinentalAddsBlendedRelief(t *testing.T) {
	lib := fakeLibrary(t)
	pts := sampling.Points(5)
	baseline := []float64{0, 0, 0, 0, 0}
	weights := make([][]ExemplarWeight, 5)
	weights[0] = []ExemplarWeight{{Index: 1, Weight: 1}}

	out := Continental(lib, baseline, pts, weights)
	assert.InDelta(t, 100, out[0], 1e-6)
	assert.Equal(t, 0.0, out[1])
}
