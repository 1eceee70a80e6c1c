package drift

// State is the externally visible phase of the drift state machine.
type State uint8

const (
	Idle State = iota
	// StartingDrift waits out the entry delay while the condition holds.
	StartingDrift
	Drifting
	// StoppingDrift runs the stop sequence up to the commit.
	StoppingDrift
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case StartingDrift:
		return "starting"
	case Drifting:
		return "drifting"
	case StoppingDrift:
		return "stopping"
	default:
		return "unknown"
	}
}

type stopStage uint8

const (
	stageNone stopStage = iota
	stageNearStop
	stageCommit
	stageReset
)

// stopSequence is the in-flight stop timer. The reset stage outlives the
// commit, so it can be pending while the state is already Idle.
type stopSequence struct {
	stage     stopStage
	remaining float64
}

func (s stopSequence) inFlight() bool { return s.stage != stageNone }

// committed reports whether the score has already been folded into the total.
func (s stopSequence) committed() bool { return s.stage == stageReset }

// Snapshot is a read-only copy of the drift state.
type Snapshot struct {
	State        State
	Speed        float64
	Angle        float64
	Factor       float64
	CurrentScore float64
	TotalScore   float64
	Episode      string
}

// Summary describes a finished drift episode; it is the payload of
// drift.ended events.
type Summary struct {
	Episode  string
	Score    float64
	Total    float64
	Duration float64
	Peak     float64
}
