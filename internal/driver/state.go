package driver

// State is the phase a compilation is in.
type State uint8

const (
	StateIdle State = iota
	StateLexing
	StateParsing
	StateResolving
	StateGenerating
	StateDone
	// StateFailed is reached only on fatal conditions.
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateLexing:     "lexing",
	StateParsing:    "parsing",
	StateResolving:  "resolving",
	StateGenerating: "generating",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports Done and Failed.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// next lists the forward transitions. Failed is reachable from any
// non-terminal state, Done from any started one (early stage stop).
var next = [...]State{
	StateIdle:       StateLexing,
	StateLexing:     StateParsing,
	StateParsing:    StateResolving,
	StateResolving:  StateGenerating,
	StateGenerating: StateDone,
}

func validTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	if to == StateDone && from != StateIdle {
		return true
	}
	return int(from) < len(next) && next[from] == to
}
