package step

import (
	"testing"

	"github.com/onuse/tectonica/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(sampleCount, plateCount int) config.Settings {
	s := config.Default()
	s.SampleCount = sampleCount
	s.PlateCount = plateCount
	s.StepCount = 3
	return s
}

func TestNewProducesFullyPopulatedSimulation(t *testing.T) {
	sim := mustNew(t, testSettings(1500, 6))
	n := len(sim.Points)
	require.Equal(t, n, len(sim.Elevation))
	require.Equal(t, n, len(sim.FoldDirection))
	require.Equal(t, n, len(sim.CrustAge))
	assert.NotNil(t, sim.Field)
	assert.Equal(t, uint64(1), sim.TopologyVersion)

	for _, id := range sim.Plates.VertexPlate {
		assert.GreaterOrEqual(t, id, 1, "every vertex should be assigned to a bootstrap plate")
	}
}

func TestStepAdvancesSurfaceVersionAndLeavesElevationFinite(t *testing.T) {
	sim := mustNew(t, testSettings(1500, 6))
	before := sim.SurfaceVersion

	sim.Step(2)

	assert.Equal(t, before+1, sim.SurfaceVersion)
	assert.Equal(t, 1, sim.StepIndex)
	for _, z := range sim.Elevation {
		assert.False(t, isNaNOrInf(z), "elevation should never become NaN/Inf after a step")
	}
}

func TestMultipleStepsRemainDeterministicGivenSameSeed(t *testing.T) {
	settingsA := testSettings(1200, 5)
	settingsB := testSettings(1200, 5)

	simA := mustNew(t, settingsA)
	simB := mustNew(t, settingsB)

	for i := 0; i < 3; i++ {
		simA.Step(2)
		simB.Step(2)
	}

	require.Equal(t, len(simA.Elevation), len(simB.Elevation))
	for i := range simA.Elevation {
		assert.Equal(t, simA.Elevation[i], simB.Elevation[i])
	}
}

func TestAmplifyStageBFallsBackWhenLODTooLow(t *testing.T) {
	settings := testSettings(800, 4)
	settings.RenderSubdivisionLevel = 1
	settings.MinAmplificationLOD = 10
	sim := mustNew(t, settings)
	sim.Step(2)

	err := sim.AmplifyStageB(nil)
	require.NotNil(t, err)
	assert.Equal(t, "amplification_not_ready", err.Kind.String())
	assert.Equal(t, sim.Elevation, sim.AmplifiedElevation)
}

func TestAmplifyStageBOceanicOnlyRunsWhenLODMet(t *testing.T) {
	settings := testSettings(800, 4)
	settings.RenderSubdivisionLevel = 7
	settings.MinAmplificationLOD = 5
	settings.EnableOceanicAmplification = true
	settings.EnableContinentalAmplification = false
	sim := mustNew(t, settings)
	sim.Step(2)

	err := sim.AmplifyStageB(nil)
	assert.Nil(t, err)
	assert.Equal(t, len(sim.Elevation), len(sim.AmplifiedElevation))
}

func mustNew(t *testing.T, cfg config.Settings) *Simulation {
	t.Helper()
	result := New(cfg)
	require.True(t, result.IsOk())
	return result.Value
}

func isNaNOrInf(f float64) bool {
	return f != f || f > 1e300 || f < -1e300
}
