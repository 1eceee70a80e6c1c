package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestAngle(t *testing.T) {
	assert.InDelta(t, 90, Angle(Vec3{1, 0, 0}, Vec3{0, 0, 1}), eps)
	assert.InDelta(t, 0, Angle(Vec3{0, 0, 2}, Vec3{0, 0, 1}), eps)
	assert.InDelta(t, 180, Angle(Vec3{0, 0, -1}, Vec3{0, 0, 1}), eps)
	assert.InDelta(t, 45, Angle(Vec3{1, 0, 1}, Vec3{0, 0, 1}), eps)
	assert.Equal(t, 0.0, Angle(Vec3{}, Vec3{0, 0, 1}))
}

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, Vec3{}, Normalize(Vec3{1e-7, 0, 0}))
	n := Normalize(Vec3{3, 0, 4})
	assert.InDelta(t, 1, n.Len(), eps)
}

func TestZeroTransformActsAsIdentity(t *testing.T) {
	var tr Transform
	p := Vec3{1, 2, 3}
	got := tr.InverseTransformPoint(p)
	assert.InDeltaSlice(t, p[:], got[:], eps)
	f := tr.Forward()
	assert.InDeltaSlice(t, Forward[:], f[:], eps)
}

func TestInverseTransformPointRoundTrip(t *testing.T) {
	tr := Pose(Vec3{10, 0, -4}, 90)
	tr.Scale = Vec3{2, 1, 0.5}

	local := Vec3{0.25, -1, 3}
	world := tr.TransformPoint(local)
	back := tr.InverseTransformPoint(world)
	assert.InDeltaSlice(t, local[:], back[:], 1e-9)
}

func TestPoseForward(t *testing.T) {
	// yaw 90 around +Y turns +Z towards +X
	f := Pose(Vec3{}, 90).Forward()
	assert.InDeltaSlice(t, []float64{1, 0, 0}, f[:], 1e-9)
}

func TestBodySpeed(t *testing.T) {
	b := Body{Velocity: Vec3{3, 0, 4}, Transform: Identity()}
	assert.InDelta(t, 5, b.Speed(), eps)
	fwd := b.Forward()
	assert.InDeltaSlice(t, Forward[:], fwd[:], eps)
}
