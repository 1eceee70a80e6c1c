package physics

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is the vector type shared by every component. Engine conventions:
// +Z is forward, +Y is up.
type Vec3 = mgl64.Vec3

// BodySource supplies the rigid body state sampled at the start of a frame.
type BodySource interface {
	Body() Body
}

// Body is the subset of rigid body state the gameplay components read.
type Body struct {
	Velocity  Vec3
	Transform Transform
}

// Speed is the magnitude of the body's velocity.
func (b Body) Speed() float64 { return b.Velocity.Len() }

// Forward is the body's heading in world space.
func (b Body) Forward() Vec3 { return b.Transform.Forward() }

// StaticBody is a BodySource that always returns the same state. The
// simulation host mutates it between frames.
type StaticBody struct {
	State Body
}

func (s *StaticBody) Body() Body { return s.State }
