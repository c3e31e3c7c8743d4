package mesh

import (
	"bytes"
	"testing"

	"github.com/onuse/tectonica/internal/errs"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/logx"
	"github.com/onuse/tectonica/internal/sampling"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(v geom.Vector3) geom.Vector3 { return v.Normalize() }

func tetrahedronPoints() []geom.Vector3 {
	return []geom.Vector3{
		normalize(geom.Vector3{X: 1, Y: 1, Z: 1}),
		normalize(geom.Vector3{X: 1, Y: -1, Z: -1}),
		normalize(geom.Vector3{X: -1, Y: 1, Z: -1}),
		normalize(geom.Vector3{X: -1, Y: -1, Z: 1}),
	}
}

func TestTetrahedronAdjacency(t *testing.T) {
	pts := tetrahedronPoints()
	result := Triangulate(pts, Config{}, AlwaysAvailable)
	require.True(t, result.IsOk())
	tri := result.Value
	require.Len(t, tri.Triangles, 4)

	adj := BuildAdjacency(tri)
	want := [][]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
	for v := 0; v < 4; v++ {
		neighbors := append([]int(nil), adj.Neighbors(v)...)
		assert.ElementsMatch(t, want[v], neighbors)
	}
}

func TestEulerCharacteristicHoldsForHull(t *testing.T) {
	pts := sampling.Points(1200)
	result := Triangulate(pts, Config{}, AlwaysAvailable)
	require.True(t, result.IsOk())
	v, e, f := EulerCharacteristic(len(pts), result.Value.Triangles)
	assert.Equal(t, 2, v-e+f)
	assert.Equal(t, 2*v-4, f)
	assert.Equal(t, 3*v-6, e)
}

func TestFibonacci10000Scenario(t *testing.T) {
	if testing.Short() {
		t.Skip("O(n^2) incremental hull at n=10000; run without -short")
	}
	pts := sampling.Points(10000)
	result := Triangulate(pts, Config{}, AlwaysAvailable)
	require.True(t, result.IsOk())
	v, e, f := EulerCharacteristic(len(pts), result.Value.Triangles)
	assert.Equal(t, 10000, v)
	assert.Equal(t, 19996, f)
	assert.Equal(t, 29994, e)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	tris := []Triangle{{3, 1, 2}, {0, 4, 5}, {2, 3, 1}}
	once := Canonicalize(tris)
	twice := Canonicalize(once)
	assert.Equal(t, once, twice)
}

func TestTriangulateDeterministic(t *testing.T) {
	pts := sampling.Points(800)
	a := Triangulate(pts, Config{Shuffle: true, ShuffleSeed: 42}, AlwaysAvailable)
	b := Triangulate(pts, Config{Shuffle: true, ShuffleSeed: 42}, AlwaysAvailable)
	require.True(t, a.IsOk())
	require.True(t, b.IsOk())
	assert.Equal(t, a.Value.Triangles, b.Value.Triangles)
}

func TestMeanDegreeWithinBand(t *testing.T) {
	pts := sampling.Points(1500)
	result := Triangulate(pts, Config{}, AlwaysAvailable)
	require.True(t, result.IsOk())
	adj := BuildAdjacency(result.Value)
	total := 0
	minDeg := 1 << 30
	for v := range pts {
		d := adj.Degree(v)
		total += d
		if d < minDeg {
			minDeg = d
		}
	}
	mean := float64(total) / float64(len(pts))
	assert.GreaterOrEqual(t, mean, 5.5)
	assert.LessOrEqual(t, mean, 6.5)
	assert.GreaterOrEqual(t, minDeg, 3)
}

func TestCyclicAdjacencyMonotone(t *testing.T) {
	pts := sampling.Points(400)
	result := Triangulate(pts, Config{}, AlwaysAvailable)
	require.True(t, result.IsOk())
	cyclic := BuildCyclicAdjacency(result.Value)

	for v := 0; v < len(pts); v++ {
		neighbors := cyclic.Neighbors(v)
		center := pts[v]
		tangent, bitangent := geom.TangentFrame(center)
		prev := -1.0
		for _, n := range neighbors {
			a := geom.AngleAround(center, pts[n], tangent, bitangent)
			assert.GreaterOrEqual(t, a, prev)
			prev = a
		}
	}
}

func TestBackendFallbackLogsAndSwitches(t *testing.T) {
	var logged bytes.Buffer
	saved := logx.Log
	logx.SetOutput(zerolog.ConsoleWriter{Out: &logged, NoColor: true})
	defer func() { logx.Log = saved }()

	primaryUnavailable := func(b Backend) bool { return b != BackendPrimary }
	pts := sampling.Points(200)
	result := Triangulate(pts, Config{Backend: BackendPrimary}, primaryUnavailable)
	require.True(t, result.IsOk())
	assert.Contains(t, logged.String(), "triangulator backend unavailable, using fallback")
}

func TestTooFewPointsIsBackendFailure(t *testing.T) {
	result := Triangulate([]geom.Vector3{{X: 1}, {Y: 1}}, Config{}, AlwaysAvailable)
	require.False(t, result.IsOk())
	assert.Equal(t, errs.BackendFailure, result.Err.Kind)
}
