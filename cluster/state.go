package cluster

// State is the lifecycle state of a remote cluster.
type State string

const (
	StateStarting             State = "STARTING"
	StateBootstrapping        State = "BOOTSTRAPPING"
	StateRunning              State = "RUNNING"
	StateWaiting              State = "WAITING"
	StateTerminating          State = "TERMINATING"
	StateShuttingDown         State = "SHUTTING_DOWN"
	StateTerminated           State = "TERMINATED"
	StateTerminatedWithErrors State = "TERMINATED_WITH_ERRORS"
	StateUnknown              State = "UNKNOWN"
)

var knownStates = map[State]bool{
	StateStarting:             true,
	StateBootstrapping:        true,
	StateRunning:              true,
	StateWaiting:              true,
	StateTerminating:          true,
	StateShuttingDown:         true,
	StateTerminated:           true,
	StateTerminatedWithErrors: true,
}

// ParseState maps a state name reported by a service to a State.
// Unrecognized names map to StateUnknown.
func ParseState(s string) State {
	st := State(s)
	if knownStates[st] {
		return st
	}
	return StateUnknown
}

// Ready reports whether the cluster is idle and available for work.
func (s State) Ready() bool {
	return s == StateWaiting
}

// Terminal reports whether the cluster has shut down and can never become ready again.
func (s State) Terminal() bool {
	return s == StateTerminated || s == StateTerminatedWithErrors
}

func (s State) String() string {
	return string(s)
}
