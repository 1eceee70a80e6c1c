package drift

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/hud"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

const (
	// Readings above this come from velocity nearly cancelling the heading
	// and are treated as no drift at all.
	maxValidAngle = 120.0

	nearStopDelay = 0.1
	resetDelay    = 0.5
	commitFactor  = 4.0

	timerEpsilon = 1e-9

	eventSource = "drift"
)

// Label is a HUD text element.
type Label interface {
	SetText(text string)
	SetColor(c hud.Color)
}

// Indicator is the visual drift badge.
type Indicator interface {
	SetActive(active bool)
}

// Labels groups the four HUD outputs.
type Labels struct {
	Total   Label
	Current Label
	Factor  Label
	Angle   Label
}

// BoardLabels binds Labels to a hud.Board.
func BoardLabels(b *hud.Board) Labels {
	return Labels{
		Total:   b.MustLabel(hud.LabelTotal),
		Current: b.MustLabel(hud.LabelCurrent),
		Factor:  b.MustLabel(hud.LabelFactor),
		Angle:   b.MustLabel(hud.LabelAngle),
	}
}

// Manager scores drifts of a single rigid body. It is advanced explicitly
// once per frame and is not safe for concurrent use.
type Manager struct {
	cfg       Config
	colors    palette
	labels    Labels
	indicator Indicator
	publisher bus.Publisher
	logger    log.Log

	state   State
	speed   float64
	angle   float64
	factor  float64
	current float64
	total   float64

	entryRemaining float64
	stop           stopSequence

	episode  string
	duration float64
	peak     float64

	pending []bus.Event
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPublisher emits drift lifecycle events on p.
func WithPublisher(p bus.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLogger sets the component logger.
func WithLogger(l log.Log) Option {
	return func(m *Manager) { m.logger = l }
}

// New validates the configuration and the HUD ports. Missing ports are
// reported here rather than on the first frame.
func New(cfg Config, labels Labels, indicator Indicator, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	colors, _ := cfg.palette()

	for _, port := range []struct {
		name  string
		label Label
	}{
		{"total", labels.Total},
		{"current", labels.Current},
		{"factor", labels.Factor},
		{"angle", labels.Angle},
	} {
		if port.label == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLabel, port.name)
		}
	}
	if indicator == nil {
		return nil, ErrMissingIndicator
	}

	m := &Manager{
		cfg:       cfg,
		colors:    colors,
		labels:    labels,
		indicator: indicator,
		logger:    log.Nop(),
		factor:    1,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("drift")
	return m, nil
}

// Start resets the state and hides the indicator.
func (m *Manager) Start() {
	m.state = Idle
	m.speed, m.angle = 0, 0
	m.factor = 1
	m.current, m.total = 0, 0
	m.entryRemaining = 0
	m.stop = stopSequence{}
	m.episode = ""
	m.indicator.SetActive(false)
	m.render()
}

// Update advances the machine by dt seconds using the body sampled for this
// frame. The returned error only carries event delivery failures; the state
// has been advanced regardless.
func (m *Manager) Update(dt float64, body physics.Body) error {
	if dt < 0 {
		dt = 0
	}

	m.advanceStop(dt)
	m.sample(body)

	if m.qualifies() {
		switch m.state {
		case StoppingDrift:
			m.cancelStop()
		case Idle:
			m.beginEntry()
		case StartingDrift:
			m.countdownEntry(dt)
		}
	} else {
		switch m.state {
		case StartingDrift:
			m.abortEntry()
		case Drifting:
			m.beginStop()
		}
	}

	if m.drifting() {
		m.current += dt * m.angle * m.factor
		m.factor += dt
		m.duration += dt
		if m.angle > m.peak {
			m.peak = m.angle
		}
		m.indicator.SetActive(true)
	}

	m.render()
	return m.flush()
}

// State returns a copy of the current drift state.
func (m *Manager) State() Snapshot {
	return Snapshot{
		State:        m.state,
		Speed:        m.speed,
		Angle:        m.angle,
		Factor:       m.factor,
		CurrentScore: m.current,
		TotalScore:   m.total,
		Episode:      m.episode,
	}
}

func (m *Manager) sample(body physics.Body) {
	m.speed = body.Speed()
	forward := body.Forward()
	m.angle = physics.Angle(forward, physics.Normalize(body.Velocity.Add(forward)))
	if m.angle > maxValidAngle {
		m.angle = 0
	}
}

func (m *Manager) qualifies() bool {
	return m.angle >= m.cfg.MinimumAngle && m.speed > m.cfg.MinimumSpeed
}

func (m *Manager) drifting() bool {
	return m.state == Drifting || m.state == StoppingDrift
}

func (m *Manager) beginEntry() {
	m.state = StartingDrift
	m.entryRemaining = m.cfg.DriftingDelay
	m.logger.Debug("drift entry pending", log.Float64("delay", m.cfg.DriftingDelay))
	if m.entryRemaining <= timerEpsilon {
		m.enter()
	}
}

func (m *Manager) countdownEntry(dt float64) {
	m.entryRemaining -= dt
	if m.entryRemaining <= timerEpsilon {
		m.enter()
	}
}

func (m *Manager) abortEntry() {
	m.state = Idle
	m.entryRemaining = 0
	m.logger.Debug("drift entry aborted")
}

// enter starts a new episode. A reset still pending from the previous
// episode is applied first so its score is not carried over.
func (m *Manager) enter() {
	if m.stop.committed() {
		m.resetEpisode()
	}
	m.stop = stopSequence{}
	m.entryRemaining = 0
	m.factor = 1
	m.state = Drifting
	m.episode = uuid.NewString()
	m.duration, m.peak = 0, 0
	m.labels.Current.SetColor(m.colors.normal)

	m.logger.Debug("drift started", log.String("episode", m.episode), log.Float64("angle", m.angle), log.Float64("speed", m.speed))
	m.emit(bus.TypeDriftStarted, m.State())
}

func (m *Manager) beginStop() {
	m.state = StoppingDrift
	m.stop = stopSequence{stage: stageNearStop, remaining: nearStopDelay}
	m.logger.Debug("drift stopping", log.String("episode", m.episode))
}

func (m *Manager) cancelStop() {
	m.stop = stopSequence{}
	m.state = Drifting
	m.labels.Current.SetColor(m.colors.normal)
	m.logger.Debug("drift stop cancelled", log.String("episode", m.episode), log.Float64("score", m.current))
	m.emit(bus.TypeDriftCancelled, m.State())
}

// advanceStop runs the stop sequence timers. Time left over after a stage
// elapses carries into the next one.
func (m *Manager) advanceStop(dt float64) {
	if !m.stop.inFlight() {
		return
	}
	m.stop.remaining -= dt
	for m.stop.inFlight() && m.stop.remaining <= timerEpsilon {
		carry := m.stop.remaining
		switch m.stop.stage {
		case stageNearStop:
			m.labels.Current.SetColor(m.colors.nearStop)
			m.emit(bus.TypeDriftNearStop, m.State())
			m.stop = stopSequence{stage: stageCommit, remaining: m.cfg.DriftingDelay*commitFactor + carry}
		case stageCommit:
			m.commit()
			m.stop = stopSequence{stage: stageReset, remaining: resetDelay + carry}
		case stageReset:
			m.resetEpisode()
			m.stop = stopSequence{}
		}
	}
}

func (m *Manager) commit() {
	m.total += m.current
	m.state = Idle
	m.labels.Current.SetColor(m.colors.ended)

	summary := Summary{
		Episode:  m.episode,
		Score:    m.current,
		Total:    m.total,
		Duration: m.duration,
		Peak:     m.peak,
	}
	m.logger.Info("drift committed",
		log.String("episode", summary.Episode),
		log.Float64("score", summary.Score),
		log.Float64("total", summary.Total),
		log.Float64("duration", summary.Duration),
	)
	m.emit(bus.TypeDriftEnded, summary)
}

func (m *Manager) resetEpisode() {
	m.current = 0
	m.indicator.SetActive(false)
}

func (m *Manager) render() {
	m.labels.Total.SetText(FormatTotal(m.total))
	m.labels.Current.SetText(FormatScore(m.current))
	m.labels.Factor.SetText(FormatFactor(m.factor))
	m.labels.Angle.SetText(FormatAngle(m.angle))
}

func (m *Manager) emit(eventType string, data any) {
	if m.publisher == nil {
		return
	}
	m.pending = append(m.pending, bus.NewEvent(eventType, eventSource, data, nil))
}

func (m *Manager) flush() error {
	if len(m.pending) == 0 {
		return nil
	}
	err := m.publisher.PublishBatch(m.pending...)
	if err != nil {
		m.logger.Warn("drift event delivery failed", log.Int("events", len(m.pending)), log.Error(err))
	}
	clear(m.pending)
	m.pending = m.pending[:0]
	return err
}
