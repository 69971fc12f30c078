// ABOUTME: Sync state of the timing authority
// ABOUTME: Idle, Armed, Playing and Stalled with string names
package songtime

// State is the playback/sync state of an Authority
type State int

const (
	// Idle means no playback has been requested
	Idle State = iota
	// Armed means Play was called and a stable buffer period is awaited
	Armed
	// Playing means a start was scheduled; time advances at the nominal rate
	Playing
	// Stalled means lag was detected; time advances at the catch-up rate
	Stalled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Playing:
		return "playing"
	case Stalled:
		return "stalled"
	default:
		return "unknown"
	}
}
