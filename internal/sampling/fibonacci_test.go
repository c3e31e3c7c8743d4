package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsDeterministic(t *testing.T) {
	a := Points(2000)
	b := Points(2000)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestPointsAreUnit(t *testing.T) {
	pts := Points(500)
	for i, p := range pts {
		l := p.Length()
		assert.InDeltaf(t, 1.0, l, 1e-9, "point %d not unit length: %f", i, l)
	}
}

func TestPointsZeroAndNegative(t *testing.T) {
	assert.Nil(t, Points(0))
	assert.Nil(t, Points(-5))
}

func TestScaledPoints(t *testing.T) {
	pts := ScaledPoints(100, 6371.0)
	for _, p := range pts {
		assert.InDelta(t, 6371.0, p.Length(), 1e-6)
	}
}

func TestResolutionInverse(t *testing.T) {
	n := ResolutionInverse(6371.0, 50.0)
	assert.Greater(t, n, 0)
	assert.Equal(t, 0, ResolutionInverse(6371.0, 0))
}
