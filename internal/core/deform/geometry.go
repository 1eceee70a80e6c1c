package deform

import (
	"sync"

	"github.com/zeusync/driftlab/internal/core/audio"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

// RenderGeometry receives the committed vertex buffer for drawing.
type RenderGeometry interface {
	SetVertices(vertices []physics.Vec3, fingerprint uint64)
}

// CollisionGeometry receives the committed vertex buffer so later contacts
// are resolved against the dented shape.
type CollisionGeometry interface {
	SetSharedMesh(vertices []physics.Vec3, fingerprint uint64)
}

// ClipPlayer plays one-shot sounds in the world.
type ClipPlayer interface {
	PlayClipAtPoint(clip *audio.Clip, position physics.Vec3, volume float64) error
}

// GeometryBuffer is an in-memory geometry sink usable as either port. Hosts
// read it from other goroutines, so it keeps its own copy under a lock.
type GeometryBuffer struct {
	mu          sync.RWMutex
	vertices    []physics.Vec3
	fingerprint uint64
	revision    uint64
}

func NewGeometryBuffer() *GeometryBuffer {
	return &GeometryBuffer{}
}

func (g *GeometryBuffer) SetVertices(vertices []physics.Vec3, fingerprint uint64) {
	g.store(vertices, fingerprint)
}

func (g *GeometryBuffer) SetSharedMesh(vertices []physics.Vec3, fingerprint uint64) {
	g.store(vertices, fingerprint)
}

func (g *GeometryBuffer) store(vertices []physics.Vec3, fingerprint uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cap(g.vertices) < len(vertices) {
		g.vertices = make([]physics.Vec3, len(vertices))
	}
	g.vertices = g.vertices[:len(vertices)]
	copy(g.vertices, vertices)
	g.fingerprint = fingerprint
	g.revision++
}

// Vertices returns a copy of the last committed buffer.
func (g *GeometryBuffer) Vertices() []physics.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]physics.Vec3, len(g.vertices))
	copy(out, g.vertices)
	return out
}

func (g *GeometryBuffer) Fingerprint() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fingerprint
}

// Revision counts commits.
func (g *GeometryBuffer) Revision() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.revision
}
