package app

// State is the orchestrator state machine:
//
//	Idle -> Starting -> Running -> Stopping -> Stopped
//
// Failed is terminal and reachable from any state before Stopped.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Phase is either the start or the stop pass over all services.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseStop  Phase = "stop"
)
