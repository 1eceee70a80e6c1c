package scenario

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/driftlab/internal/core/systems"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

func driftReading(b physics.Body) float64 {
	fwd := b.Forward()
	return physics.Angle(fwd, physics.Normalize(b.Velocity.Add(fwd)))
}

func TestBodyForMatchesSlip(t *testing.T) {
	for _, tc := range []struct {
		speed, slip, heading float64
	}{
		{18, 0, 0},
		{16, 28, 30},
		{6, 10, -90},
		{30, 60, 200},
		{1.5, 45, 10},
	} {
		b := BodyFor(physics.Pose(physics.Vec3{1, 0, 2}, tc.heading), tc.speed, tc.slip)
		assert.InDelta(t, tc.speed, b.Speed(), 1e-9)
		assert.InDelta(t, tc.slip, driftReading(b), 1e-6)
	}
}

func TestBodyForSaturatesAtLowSpeed(t *testing.T) {
	b := BodyFor(physics.Identity(), 0.5, 60)
	assert.InDelta(t, 0.5, b.Speed(), 1e-9)
	assert.InDelta(t, 30, driftReading(b), 1e-6)
}

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(`
name: test
target: car
segments:
  - duration: 0.5
    speed: 10
  - duration: 0.25
    dt: 0.05
    speed: 12
    slip_deg: 20
    collisions:
      - at: 0.1
        impulse: [0, 0, -4]
        contacts: [[0.5, 0, 0.5]]
`))
	require.NoError(t, err)
	assert.Equal(t, "car", s.Target)
	require.Len(t, s.Segments, 2)
	assert.Equal(t, DefaultDT, s.Segments[0].DT)
	assert.InDelta(t, 0.75, s.Duration(), 1e-12)
}

func TestLoadRejectsBadScripts(t *testing.T) {
	for name, tc := range map[string]struct {
		doc string
		err error
	}{
		"empty":         {doc: "name: x\n", err: ErrNoSegments},
		"zero duration": {doc: "segments: [{speed: 3}]\n", err: ErrInvalidSegment},
		"negative speed": {
			doc: "segments: [{duration: 1, speed: -1}]\n",
			err: ErrInvalidSegment,
		},
		"impact late": {
			doc: "segments: [{duration: 1, collisions: [{at: 2, contacts: [[0, 0, 0]]}]}]\n",
			err: ErrInvalidImpact,
		},
		"impact without contacts": {
			doc: "segments: [{duration: 1, collisions: [{at: 0.5}]}]\n",
			err: ErrInvalidImpact,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := Load(strings.NewReader("segments: [{duration: 1, sped: 3}]\n"))
	assert.Error(t, err)
}

func TestFrames(t *testing.T) {
	s := &Script{
		Target: "car",
		Segments: []Segment{
			{Name: "a", Duration: 0.5, DT: 0.1, Speed: 10},
			{Name: "b", Duration: 0.3, DT: 0.1, Speed: 10, HeadingDeg: 90, Impacts: []Impact{{
				At:       0.2,
				Impulse:  [3]float64{0, 0, -5},
				Contacts: [][3]float64{{0.5, 0, 0.5}},
			}}},
		},
	}
	require.NoError(t, s.Validate())
	frames := s.Frames()
	require.Len(t, frames, 8)

	assert.Equal(t, "a", frames[0].Segment)
	assert.InDelta(t, 0, frames[0].Time, 1e-12)
	assert.InDelta(t, 0.7, frames[7].Time, 1e-9)
	// five steps of 10 m/s along +Z
	assertVec(t, physics.Vec3{0, 0, 5}, frames[5].Body.Transform.Position)

	var hits []int
	for _, f := range frames {
		if len(f.Collisions) > 0 {
			hits = append(hits, f.Index)
		}
	}
	require.Equal(t, []int{6}, hits)

	c := frames[6].Collisions[0]
	assert.Equal(t, "car", c.Target)
	assert.InDelta(t, 5, c.Magnitude(), 1e-9)
	assertVec(t, physics.Vec3{0.5, 0, 0.5}, c.Transform.InverseTransformPoint(c.Contacts[0]))
}

func TestDemoLoads(t *testing.T) {
	s := Demo()
	assert.NotEmpty(t, s.Frames())
	assert.Equal(t, "car", s.Target)
}

func TestDriverStepsWorld(t *testing.T) {
	world := systems.NewWorld(nil, nil)
	require.NoError(t, world.Start(context.Background()))
	s := &Script{Segments: []Segment{{Duration: 0.05, DT: 0.01, Speed: 3}}}
	require.NoError(t, s.Validate())

	d := NewDriver(world, s.Frames(), nil)
	require.NoError(t, d.Run(context.Background(), 0))
	assert.Equal(t, int64(5), world.FrameCount())
	assert.Equal(t, 0, d.Remaining())
	assert.ErrorIs(t, d.Step(), ErrFramesExhausted)
}

func TestDriverStopsOnCancel(t *testing.T) {
	world := systems.NewWorld(nil, nil)
	require.NoError(t, world.Start(context.Background()))
	s := &Script{Segments: []Segment{{Duration: 1, DT: 0.01}}}
	require.NoError(t, s.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewDriver(world, s.Frames(), nil).Run(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), world.FrameCount())
}

func assertVec(t *testing.T, want, got physics.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-9)
}
