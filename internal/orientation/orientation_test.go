package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePoseFromAccelFlat(t *testing.T) {
	p := ComputePoseFromAccel(0, 0, 1)
	assert.InDelta(t, 0.0, p.Roll, 1e-6)
	assert.InDelta(t, 0.0, p.Pitch, 1e-6)
	assert.Zero(t, p.Yaw)
}

func TestComputePoseFromAccelTilted(t *testing.T) {
	// 45° roll: gravity split evenly between Y and Z.
	p := ComputePoseFromAccel(0, math.Sqrt2/2, math.Sqrt2/2)
	assert.InDelta(t, 45.0, p.Roll, 1e-6)
	assert.InDelta(t, 0.0, p.Pitch, 1e-6)

	// Nose down: pitch -90°, defined and finite.
	p = ComputePoseFromAccel(1, 0, 0)
	assert.InDelta(t, -90.0, p.Pitch, 1e-6)
	assert.False(t, math.IsNaN(p.Roll))
}

func TestComputePoseUnitsDoNotMatter(t *testing.T) {
	// Raw counts and g values give the same angles; only ratios count.
	a := ComputePoseFromAccel(0.1, -0.3, 0.95)
	b := ComputePoseFromAccel(0.1*16384, -0.3*16384, 0.95*16384)
	assert.InDelta(t, a.Roll, b.Roll, 1e-9)
	assert.InDelta(t, a.Pitch, b.Pitch, 1e-9)
}

func TestMockSourceProducesBoundedPoses(t *testing.T) {
	src := NewMockSource()
	for i := 0; i < 10; i++ {
		p, err := src.Next()
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(p.Roll), 20.0)
		assert.LessOrEqual(t, math.Abs(p.Pitch), 15.0)
		assert.GreaterOrEqual(t, p.Yaw, 0.0)
		assert.Less(t, p.Yaw, 360.0)
	}
}
