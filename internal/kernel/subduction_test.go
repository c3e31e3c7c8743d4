package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBumpZeroOutsideRange(t *testing.T) {
	assert.Equal(t, 0.0, bump(-1, 150, 400))
	assert.Equal(t, 0.0, bump(401, 150, 400))
}

func TestBumpPeaksAtInnerRadius(t *testing.T) {
	assert.InDelta(t, 1.0, bump(150, 150, 400), 1e-9)
}

func TestBumpMonotoneOnEachLeg(t *testing.T) {
	prev := bump(0, 150, 400)
	for d := 10.0; d <= 150; d += 10 {
		cur := bump(d, 150, 400)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	prev = bump(150, 150, 400)
	for d := 160.0; d <= 400; d += 10 {
		cur := bump(d, 150, 400)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestUpliftGateClampsToUnitSquare(t *testing.T) {
	assert.Equal(t, 0.0, upliftGate(-20000, -2000, 6000))
	assert.Equal(t, 1.0, upliftGate(20000, -2000, 6000))
	mid := upliftGate(2000, -2000, 6000)
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 1.0)
}

func TestUpliftGateMonotone(t *testing.T) {
	prev := -1.0
	for z := -2000.0; z <= 6000; z += 500 {
		cur := upliftGate(z, -2000, 6000)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
