package systems

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/zeusync/driftlab/internal/core/observability/log"
)

// Manager owns the registered systems and runs them in priority order.
// Systems with equal priority keep their registration order.
type Manager struct {
	systems []System
	metrics map[string]*Metrics
	logger  log.Log
}

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		metrics: make(map[string]*Metrics),
		logger:  logger.Named("systems"),
	}
}

func (m *Manager) RegisterSystem(s System) error {
	if s == nil {
		return ErrNilSystem
	}
	if _, exists := m.metrics[s.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	m.systems = append(m.systems, s)
	sort.SliceStable(m.systems, func(i, j int) bool {
		return m.systems[i].Priority() > m.systems[j].Priority()
	})
	m.metrics[s.Name()] = &Metrics{}
	m.logger.Debug("system registered", log.String("system", s.Name()), log.Int("priority", int(s.Priority())))
	return nil
}

func (m *Manager) GetSystem(name string) (System, bool) {
	for _, s := range m.systems {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// GetExecutionOrder lists system names in the order Update runs them.
func (m *Manager) GetExecutionOrder() []string {
	names := make([]string, len(m.systems))
	for i, s := range m.systems {
		names[i] = s.Name()
	}
	return names
}

func (m *Manager) GetSystemMetrics(name string) (Metrics, bool) {
	mt, ok := m.metrics[name]
	if !ok {
		return Metrics{}, false
	}
	return *mt, true
}

// InitializeAll stops at the first failing system.
func (m *Manager) InitializeAll(ctx context.Context, world *World) error {
	for _, s := range m.systems {
		if err := s.Initialize(ctx, world); err != nil {
			return fmt.Errorf("initialize %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Update runs every system even when an earlier one fails; errors are joined.
func (m *Manager) Update(deltaTime float64, world *World) error {
	var all error
	for _, s := range m.systems {
		mt := m.metrics[s.Name()]
		mt.ExecutionCount++
		if err := s.Update(deltaTime, world); err != nil {
			mt.ErrorCount++
			mt.LastError = err
			all = errors.Join(all, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return all
}

// ShutdownAll runs in reverse execution order and joins errors.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	var all error
	for i := len(m.systems) - 1; i >= 0; i-- {
		if err := m.systems[i].Shutdown(ctx); err != nil {
			all = errors.Join(all, fmt.Errorf("shutdown %s: %w", m.systems[i].Name(), err))
		}
	}
	return all
}
