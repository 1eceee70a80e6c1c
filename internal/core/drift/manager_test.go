package drift

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/hud"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

const dt = 0.05

// driftBody returns a body heading +Z whose measured drift angle (between
// heading and heading+velocity) is angleDeg at the given speed.
func driftBody(speed, angleDeg float64) physics.Body {
	phi := mgl64.DegToRad(angleDeg)
	k := math.Cos(phi) + math.Sqrt(speed*speed-math.Sin(phi)*math.Sin(phi))
	return physics.Body{
		Velocity:  physics.Vec3{k * math.Sin(phi), 0, k*math.Cos(phi) - 1},
		Transform: physics.Identity(),
	}
}

func straightBody(speed float64) physics.Body {
	return physics.Body{Velocity: physics.Vec3{0, 0, speed}, Transform: physics.Identity()}
}

type fixture struct {
	board   *hud.Board
	manager *Manager
	events  []bus.Event
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{board: hud.NewBoard()}
	b := bus.New()
	for _, typ := range []string{bus.TypeDriftStarted, bus.TypeDriftCancelled, bus.TypeDriftNearStop, bus.TypeDriftEnded} {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			f.events = append(f.events, e)
			return nil
		})
		require.NoError(t, err)
	}
	m, err := New(cfg, BoardLabels(f.board), f.board.Indicator(), WithPublisher(b))
	require.NoError(t, err)
	m.Start()
	f.manager = m
	return f
}

func (f *fixture) run(t *testing.T, body physics.Body, frames int) {
	t.Helper()
	for i := 0; i < frames; i++ {
		require.NoError(t, f.manager.Update(dt, body))
	}
}

func (f *fixture) eventTypes() []string {
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type()
	}
	return out
}

func mustColor(t *testing.T, s string) hud.Color {
	t.Helper()
	c, err := hud.ParseColor(s)
	require.NoError(t, err)
	return c
}

func TestStartHidesIndicatorAndRendersZeroes(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	assert.False(t, f.board.IndicatorActive())
	assert.Equal(t, "Total: 000", f.board.Text(hud.LabelTotal))
	assert.Equal(t, "000", f.board.Text(hud.LabelCurrent))
	assert.Equal(t, "1.0X", f.board.Text(hud.LabelFactor))
	assert.Equal(t, "0°", f.board.Text(hud.LabelAngle))
	assert.Equal(t, Idle, f.manager.State().State)
}

func TestEntryAfterContinuousDelay(t *testing.T) {
	f := newFixture(t, Config{
		MinimumSpeed:  5,
		MinimumAngle:  10,
		DriftingDelay: 0.2,
	})
	body := driftBody(8, 30)

	f.run(t, body, 4)
	s := f.manager.State()
	assert.Equal(t, StartingDrift, s.State)
	assert.InDelta(t, 30, s.Angle, 1e-9)
	assert.InDelta(t, 8, s.Speed, 1e-9)
	assert.Equal(t, 0.0, s.CurrentScore)

	f.run(t, body, 1)
	s = f.manager.State()
	assert.Equal(t, Drifting, s.State)
	assert.InDelta(t, 1.0, s.Factor, dt+1e-9)
	assert.True(t, f.board.IndicatorActive())
	assert.NotEmpty(t, s.Episode)

	f.run(t, body, 10)
	s = f.manager.State()
	assert.InDelta(t, 1.55, s.Factor, 1e-9)
	// factor_i = 1 + dt*i over eleven drifting frames
	assert.InDelta(t, dt*30*(11+dt*55), s.CurrentScore, 1e-9)
	assert.Equal(t, "30°", f.board.Text(hud.LabelAngle))
	assert.Equal(t, []string{bus.TypeDriftStarted}, f.eventTypes())
}

func TestEntryAbortedWhenConditionBreaks(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	f.run(t, driftBody(8, 30), 3)
	assert.Equal(t, StartingDrift, f.manager.State().State)

	f.run(t, straightBody(8), 1)
	assert.Equal(t, Idle, f.manager.State().State)

	// the delay starts over
	f.run(t, driftBody(8, 30), 4)
	assert.Equal(t, StartingDrift, f.manager.State().State)
	f.run(t, driftBody(8, 30), 1)
	assert.Equal(t, Drifting, f.manager.State().State)
}

func TestRepeatedQualifyingFramesDoNotRestartEntry(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.run(t, driftBody(8, 30), 5)
	assert.Equal(t, Drifting, f.manager.State().State)
	assert.Len(t, f.events, 1)
}

func TestSpeedAndAngleThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DriftingDelay = 0

	f := newFixture(t, cfg)
	f.run(t, driftBody(4.9, 30), 3)
	assert.Equal(t, Idle, f.manager.State().State)

	f.run(t, driftBody(8, 9.5), 3)
	assert.Equal(t, Idle, f.manager.State().State)

	f.run(t, driftBody(8, 10.01), 1)
	assert.Equal(t, Drifting, f.manager.State().State)
}

func TestDegenerateAngleIsClampedToZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DriftingDelay = 0
	f := newFixture(t, cfg)

	reversing := physics.Body{Velocity: physics.Vec3{0.5, 0, -8}, Transform: physics.Identity()}
	f.run(t, reversing, 3)

	s := f.manager.State()
	assert.Equal(t, 0.0, s.Angle)
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, "0°", f.board.Text(hud.LabelAngle))
}

func TestFullEpisodeCommitsOnce(t *testing.T) {
	cfg := DefaultConfig()
	f := newFixture(t, cfg)

	f.run(t, driftBody(8, 30), 25)
	require.Equal(t, Drifting, f.manager.State().State)
	score := f.manager.State().CurrentScore
	require.Greater(t, score, 0.0)

	straight := straightBody(8)
	f.run(t, straight, 2)
	s := f.manager.State()
	assert.Equal(t, StoppingDrift, s.State)
	assert.Equal(t, mustColor(t, cfg.NormalDriftColor), f.board.Color(hud.LabelCurrent))

	f.run(t, straight, 1) // 0.1s after the stop began
	assert.Equal(t, mustColor(t, cfg.NearStopColor), f.board.Color(hud.LabelCurrent))

	f.run(t, straight, 15)
	s = f.manager.State()
	assert.Equal(t, StoppingDrift, s.State)
	assert.Equal(t, 0.0, s.TotalScore)

	f.run(t, straight, 1) // 0.1 + 4*0.2 seconds
	s = f.manager.State()
	assert.Equal(t, Idle, s.State)
	assert.InDelta(t, score, s.TotalScore, 1e-9)
	assert.InDelta(t, score, s.CurrentScore, 1e-9)
	assert.Equal(t, mustColor(t, cfg.DriftEndedColor), f.board.Color(hud.LabelCurrent))
	assert.True(t, f.board.IndicatorActive())

	f.run(t, straight, 9)
	assert.InDelta(t, score, f.manager.State().CurrentScore, 1e-9)

	f.run(t, straight, 1) // 0.5s after the commit
	s = f.manager.State()
	assert.Equal(t, 0.0, s.CurrentScore)
	assert.InDelta(t, score, s.TotalScore, 1e-9)
	assert.False(t, f.board.IndicatorActive())
	assert.Equal(t, "000", f.board.Text(hud.LabelCurrent))
	assert.Equal(t, FormatTotal(score), f.board.Text(hud.LabelTotal))

	f.run(t, straight, 40)
	assert.InDelta(t, score, f.manager.State().TotalScore, 1e-9)
	assert.Equal(t, []string{bus.TypeDriftStarted, bus.TypeDriftNearStop, bus.TypeDriftEnded}, f.eventTypes())

	summary, ok := f.events[2].Data().(Summary)
	require.True(t, ok)
	assert.InDelta(t, score, summary.Score, 1e-9)
	assert.InDelta(t, 30, summary.Peak, 1e-9)
	assert.Equal(t, f.events[0].Data().(Snapshot).Episode, summary.Episode)
}

func TestRequalifyingCancelsStopWithoutLoss(t *testing.T) {
	for name, stoppedFrames := range map[string]int{
		"before near-stop":   1,
		"after near-stop":    3,
		"just before commit": 17,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, DefaultConfig())
			f.run(t, driftBody(8, 30), 10)
			score := f.manager.State().CurrentScore

			f.run(t, straightBody(8), stoppedFrames)
			require.Equal(t, StoppingDrift, f.manager.State().State)
			assert.InDelta(t, score, f.manager.State().CurrentScore, 1e-9)

			factorBefore := f.manager.State().Factor
			f.run(t, driftBody(8, 30), 1)
			s := f.manager.State()
			assert.Equal(t, Drifting, s.State)
			assert.Equal(t, 0.0, s.TotalScore)
			// no entry delay and no factor reset on cancel
			assert.InDelta(t, factorBefore+dt, s.Factor, 1e-9)
			assert.InDelta(t, score+dt*30*factorBefore, s.CurrentScore, 1e-9)
			assert.Equal(t, mustColor(t, DefaultConfig().NormalDriftColor), f.board.Color(hud.LabelCurrent))

			// let it finish: exactly one commit with everything accumulated
			final := s.CurrentScore
			f.run(t, straightBody(8), 40)
			s = f.manager.State()
			assert.InDelta(t, final, s.TotalScore, 1e-9)
			assert.Equal(t, 1, countType(f.events, bus.TypeDriftEnded))
			assert.Equal(t, 1, countType(f.events, bus.TypeDriftCancelled))
		})
	}
}

func TestNewEpisodeDuringResetWindowStartsClean(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.run(t, driftBody(8, 30), 10)
	f.run(t, straightBody(8), 19)
	first := f.manager.State()
	require.Equal(t, Idle, first.State)
	require.Greater(t, first.CurrentScore, 0.0)

	// re-enter before the 0.5s reset elapses
	f.run(t, driftBody(8, 30), 5)
	s := f.manager.State()
	require.Equal(t, Drifting, s.State)
	assert.InDelta(t, dt*30*1, s.CurrentScore, 1e-9)
	assert.InDelta(t, first.TotalScore, s.TotalScore, 1e-9)
	assert.NotEqual(t, first.Episode, s.Episode)
	assert.True(t, f.board.IndicatorActive())

	f.run(t, straightBody(8), 40)
	s = f.manager.State()
	assert.InDelta(t, first.TotalScore+dt*30*1, s.TotalScore, 1e-9)
	assert.Equal(t, 2, countType(f.events, bus.TypeDriftEnded))
}

func TestStopTimersCarryAcrossLongFrames(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.run(t, driftBody(8, 30), 10)
	score := f.manager.State().CurrentScore

	require.NoError(t, f.manager.Update(dt, straightBody(8)))
	// one long frame covers near-stop, commit and reset
	require.NoError(t, f.manager.Update(2, straightBody(8)))

	s := f.manager.State()
	assert.Equal(t, Idle, s.State)
	assert.InDelta(t, score, s.TotalScore, 1e-9)
	assert.Equal(t, 0.0, s.CurrentScore)
	assert.False(t, f.board.IndicatorActive())
}

func TestNewValidatesPorts(t *testing.T) {
	board := hud.NewBoard()
	labels := BoardLabels(board)

	missing := labels
	missing.Factor = nil
	_, err := New(DefaultConfig(), missing, board.Indicator())
	assert.ErrorIs(t, err, ErrMissingLabel)
	assert.ErrorContains(t, err, "factor")

	_, err = New(DefaultConfig(), labels, nil)
	assert.ErrorIs(t, err, ErrMissingIndicator)

	cfg := DefaultConfig()
	cfg.NearStopColor = "plaid"
	_, err = New(cfg, labels, board.Indicator())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, hud.ErrUnknownColor)

	cfg = DefaultConfig()
	cfg.DriftingDelay = -1
	_, err = New(cfg, labels, board.Indicator())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCommitIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	board := hud.NewBoard()
	m, err := New(DefaultConfig(), BoardLabels(board), board.Indicator(),
		WithLogger(log.NewWithZap(zap.New(core))))
	require.NoError(t, err)
	m.Start()

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Update(dt, driftBody(8, 30)))
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, m.Update(dt, straightBody(8)))
	}

	entries := logs.FilterMessage("drift committed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "drift", entries[0].LoggerName)
}

func TestFailingHandlerDoesNotDropLaterEvents(t *testing.T) {
	b := bus.New()
	boom := errors.New("hud offline")
	var delivered []string
	for typ, fail := range map[string]error{bus.TypeDriftNearStop: boom, bus.TypeDriftEnded: nil} {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			delivered = append(delivered, e.Type())
			return fail
		})
		require.NoError(t, err)
	}
	board := hud.NewBoard()
	m, err := New(DefaultConfig(), BoardLabels(board), board.Indicator(), WithPublisher(b))
	require.NoError(t, err)
	m.Start()

	for i := 0; i < 6; i++ {
		require.NoError(t, m.Update(dt, driftBody(8, 30)))
	}
	require.NoError(t, m.Update(dt, straightBody(8)))

	// one long frame runs near-stop, commit and reset
	err = m.Update(2, straightBody(8))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{bus.TypeDriftNearStop, bus.TypeDriftEnded}, delivered)
	assert.Equal(t, Idle, m.State().State)
	assert.Positive(t, m.State().TotalScore)
}

func countType(events []bus.Event, typ string) int {
	n := 0
	for _, e := range events {
		if e.Type() == typ {
			n++
		}
	}
	return n
}
