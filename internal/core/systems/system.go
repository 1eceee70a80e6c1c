package systems

import (
	"context"
)

// System is a gameplay processor driven by the World once per frame.
type System interface {
	Name() string
	Priority() Priority

	// Initialize runs once before the first frame. A non-nil error aborts
	// the world start.
	Initialize(ctx context.Context, world *World) error
	Update(deltaTime float64, world *World) error
	Shutdown(ctx context.Context) error
}

// Priority defines execution order; higher runs first.
type Priority uint16

const (
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Metrics are per-system execution counters.
type Metrics struct {
	ExecutionCount uint64
	ErrorCount     uint64
	LastError      error
}
