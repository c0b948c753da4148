package server

// State is a position in the server lifecycle. States only move forward:
//
//	Idle → HealthStarting → Serving → ShuttingDown → Stopped
//
// A failure after Idle jumps straight to Stopped; a malformed bind address
// leaves the server Idle.
type State int32

const (
	// Idle is the state before Run.
	Idle State = iota
	// HealthStarting means the health server has been spawned and the main
	// listener is being prepared.
	HealthStarting
	// Serving means the main listener is accepting and readiness is set.
	Serving
	// ShuttingDown means readiness is cleared and in-flight requests drain.
	ShuttingDown
	// Stopped means Run has returned or is about to.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HealthStarting:
		return "health_starting"
	case Serving:
		return "serving"
	case ShuttingDown:
		return "shutting_down"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
