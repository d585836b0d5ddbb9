package heartbeat

// State is the emitter's lifecycle state.
type State uint32

// Emitter states.
const (
	StateIdle         State = iota // Created, not initialized
	StateInitializing              // Initializing the serial channel
	StateReady                     // Initialized, not yet warming up
	StateWarmingUp                 // In (or just past) the warm-up delay
	StateRunning                   // In the tick loop
	StateFinished                  // Limited variant wrote its trailer
	StateStopped                   // Loop left because the context ended
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateWarmingUp:
		return "warming-up"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further operation is possible.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateStopped
}
