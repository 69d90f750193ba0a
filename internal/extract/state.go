package extract

// State is the phase a single extraction is in.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateAwaitingModel
	StateParsing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateAwaitingModel:
		return "awaiting_model"
	case StateParsing:
		return "parsing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// StateObserver is told about every transition of one extraction.
type StateObserver func(State)

// run tracks the state of one invocation. It is never shared between calls.
type run struct {
	state   State
	observe StateObserver
}

func newRun(observe StateObserver) *run {
	return &run{state: StateIdle, observe: observe}
}

func (r *run) to(s State) {
	if r.state == s || r.state.Terminal() {
		return
	}
	r.state = s
	if r.observe != nil {
		r.observe(s)
	}
}

// reset returns a canceled run to Idle so the caller may start over.
func (r *run) reset() {
	r.state = StateIdle
	if r.observe != nil {
		r.observe(StateIdle)
	}
}
