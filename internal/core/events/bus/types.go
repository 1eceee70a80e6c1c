package bus

// Event types exchanged between the simulation host and its components.
const (
	TypeCollision = "physics.collision"

	TypeDriftStarted   = "drift.started"
	TypeDriftCancelled = "drift.cancelled"
	TypeDriftNearStop  = "drift.near_stop"
	TypeDriftEnded     = "drift.ended"

	TypeDeformApplied = "deform.applied"
)

// Publisher is the narrow view components need to emit events.
type Publisher interface {
	Publish(event Event) error
	PublishBatch(events ...Event) error
}
