package deform

import (
	"context"
	"fmt"

	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

var _ systems.System = (*System)(nil)

// System binds a Deformer to collision events published on the world bus.
type System struct {
	target   string
	deformer *Deformer
	bus      bus.EventBus
	sub      bus.Subscription
}

// NewSystem listens for collisions published on the target's topic. An empty
// target listens on the default topic.
func NewSystem(target string, deformer *Deformer) *System {
	return &System{target: target, deformer: deformer}
}

func (s *System) Name() string {
	if s.target == "" {
		return "deform"
	}
	return "deform:" + s.target
}

func (s *System) Priority() systems.Priority { return systems.PriorityHigh }
func (s *System) Deformer() *Deformer        { return s.deformer }

func (s *System) Initialize(_ context.Context, world *systems.World) error {
	sub, err := world.Bus().SubscribeTopic(s.target, bus.TypeCollision, s.handle)
	if err != nil {
		return err
	}
	s.bus, s.sub = world.Bus(), sub
	s.deformer.logger.Debug("listening for collisions",
		log.String("topic", s.target),
		log.String("subscription", sub.ID()),
	)
	return nil
}

// Update is a no-op: deformation is driven by collision events, not frames.
func (s *System) Update(float64, *systems.World) error { return nil }

func (s *System) Shutdown(context.Context) error {
	if s.sub == nil || !s.sub.IsActive() {
		return nil
	}
	err := s.bus.Unsubscribe(s.sub)
	s.sub = nil
	return err
}

func (s *System) handle(e bus.Event) error {
	var c physics.Collision
	switch data := e.Data().(type) {
	case physics.Collision:
		c = data
	case *physics.Collision:
		if data == nil {
			return fmt.Errorf("%w: nil collision", ErrUnexpectedPayload)
		}
		c = *data
	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedPayload, e.Data())
	}
	_, err := s.deformer.OnCollision(c)
	return err
}
