package drift

import (
	"context"

	"github.com/zeusync/driftlab/internal/core/systems"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

var _ systems.System = (*System)(nil)

// System drives a Manager from the world's frame clock.
type System struct {
	manager *Manager
	source  physics.BodySource
}

func NewSystem(manager *Manager, source physics.BodySource) *System {
	return &System{manager: manager, source: source}
}

func (s *System) Name() string                   { return "drift" }
func (s *System) Priority() systems.Priority     { return systems.PriorityNormal }
func (s *System) Manager() *Manager              { return s.manager }
func (s *System) Shutdown(context.Context) error { return nil }

func (s *System) Initialize(context.Context, *systems.World) error {
	if s.source == nil {
		return ErrMissingBody
	}
	s.manager.Start()
	return nil
}

func (s *System) Update(deltaTime float64, _ *systems.World) error {
	return s.manager.Update(deltaTime, s.source.Body())
}
