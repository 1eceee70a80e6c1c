package systems

import (
	"context"
	"time"

	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/observability/log"
)

// World is the owning simulation loop: a frame clock, the event bus and the
// system manager. Step must be called from a single goroutine.
type World struct {
	bus     bus.EventBus
	manager *Manager
	logger  log.Log

	deltaTime  float64
	totalTime  float64
	frameCount int64
	started    bool
	paused     bool
}

func NewWorld(eventBus bus.EventBus, logger log.Log) *World {
	if logger == nil {
		logger = log.Nop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	return &World{
		bus:     eventBus,
		manager: NewManager(logger),
		logger:  logger.Named("world"),
	}
}

func (w *World) Bus() bus.EventBus  { return w.bus }
func (w *World) Systems() *Manager  { return w.manager }
func (w *World) DeltaTime() float64 { return w.deltaTime }
func (w *World) FrameCount() int64  { return w.frameCount }

// TotalTime is the simulated time elapsed over all steps.
func (w *World) TotalTime() time.Duration {
	return time.Duration(w.totalTime * float64(time.Second))
}

func (w *World) IsPaused() bool   { return w.paused }
func (w *World) SetPaused(p bool) { w.paused = p }
func (w *World) IsStarted() bool  { return w.started }
func (w *World) Register(s System) error {
	if w.started {
		return ErrWorldStarted
	}
	return w.manager.RegisterSystem(s)
}

// Start initializes every registered system.
func (w *World) Start(ctx context.Context) error {
	if w.started {
		return ErrWorldStarted
	}
	if err := w.manager.InitializeAll(ctx, w); err != nil {
		return err
	}
	w.started = true
	w.logger.Info("world started", log.Any("systems", w.manager.GetExecutionOrder()))
	return nil
}

// Step advances the world by dt seconds. A paused world still counts frames
// but hands systems a zero delta.
func (w *World) Step(dt float64) error {
	if !w.started {
		return ErrWorldNotActive
	}
	if dt < 0 || w.paused {
		dt = 0
	}
	w.deltaTime = dt
	w.totalTime += dt
	w.frameCount++
	return w.manager.Update(dt, w)
}

// Publish is a shortcut for hosts feeding engine events into the world.
func (w *World) Publish(event bus.Event) error {
	return w.bus.Publish(event)
}

// PublishToTopic delivers event only to handlers subscribed on topic.
func (w *World) PublishToTopic(topic string, event bus.Event) error {
	return w.bus.PublishToTopic(topic, event)
}

func (w *World) Stop(ctx context.Context) error {
	if !w.started {
		return nil
	}
	w.started = false
	w.logger.Info("world stopped", log.Int64("frames", w.frameCount), log.Duration("simulated", w.TotalTime()))
	return w.manager.ShutdownAll(ctx)
}
