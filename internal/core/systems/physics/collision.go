package physics

// Collision is one contact episode delivered by the physics engine.
type Collision struct {
	// Target names the object that was hit. Empty matches every listener.
	Target string
	// Impulse is the total impulse applied to resolve the contact.
	Impulse Vec3
	// Contacts are world-space contact points, in engine order.
	Contacts []Vec3
	// Transform is the pose of the hit object at contact time.
	Transform Transform
}

// Magnitude of the collision impulse.
func (c Collision) Magnitude() float64 { return c.Impulse.Len() }
