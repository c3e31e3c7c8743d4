package heightmap

import (
	"testing"

	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/mesh"
	"github.com/onuse/tectonica/internal/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, n int) (*Index, []geom.Vector3) {
	t.Helper()
	pts := sampling.Points(n)
	result := mesh.Triangulate(pts, mesh.Config{}, mesh.AlwaysAvailable)
	require.True(t, result.IsOk())
	return NewIndex(pts, result.Value.Triangles), pts
}

func TestSampleHitsAtVertexReturnsThatVertexElevation(t *testing.T) {
	idx, pts := buildIndex(t, 800)
	elevation := make([]float64, len(pts))
	for i := range elevation {
		elevation[i] = float64(i)
	}

	r := idx.Sample(pts[10], -1, elevation)
	require.True(t, r.Hit)
	assert.InDelta(t, elevation[10], r.Elevation, 1e-6)
}

func TestSampleAtCentroidInterpolates(t *testing.T) {
	idx, pts := buildIndex(t, 500)
	elevation := make([]float64, len(pts))
	for i := range elevation {
		elevation[i] = 100 // constant field: centroid sample must equal 100 everywhere
	}

	tri := idx.Triangles[0]
	c := pts[tri[0]].Add(pts[tri[1]]).Add(pts[tri[2]]).Scale(1.0 / 3.0).Normalize()

	r := idx.Sample(c, 0, elevation)
	require.True(t, r.Hit)
	assert.InDelta(t, 100, r.Elevation, 1e-6)
}

func TestSampleWalkTerminatesFromBadHint(t *testing.T) {
	idx, pts := buildIndex(t, 500)
	elevation := make([]float64, len(pts))
	r := idx.Sample(pts[0], len(idx.Triangles)/2, elevation)
	assert.LessOrEqual(t, r.Steps, maxWalkSteps)
}

func TestNearestTriangleFindsCloseCentroid(t *testing.T) {
	idx, pts := buildIndex(t, 500)
	nearest := idx.NearestTriangle(pts[0])
	require.GreaterOrEqual(t, nearest, 0)
	r := idx.Sample(pts[0], nearest, make([]float64, len(pts)))
	assert.True(t, r.Hit)
}

func TestBarycentricSumsToOne(t *testing.T) {
	idx, pts := buildIndex(t, 300)
	elevation := make([]float64, len(pts))
	r := idx.Sample(pts[5], -1, elevation)
	require.True(t, r.Hit)
	sum := r.Bary[0] + r.Bary[1] + r.Bary[2]
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestSampleWithFallbackSucceedsOnDirectHit(t *testing.T) {
	idx, pts := buildIndex(t, 400)
	elevation := make([]float64, len(pts))
	r, mode := idx.SampleWithFallback(pts[0], -1, elevation, -1)
	assert.True(t, r.Hit)
	assert.Equal(t, RescueDirect, mode)
}

func TestUVRoundTrip(t *testing.T) {
	p := geom.Vector3{X: 0.5, Y: 0.5, Z: 0.70710678}.Normalize()
	u, v := pointToUV(p)
	back := uvToPoint(u, v)
	assert.InDelta(t, p.X, back.X, 1e-6)
	assert.InDelta(t, p.Y, back.Y, 1e-6)
	assert.InDelta(t, p.Z, back.Z, 1e-6)
}
