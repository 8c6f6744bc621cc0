package plugin

// HostState is the lifecycle state of a Host.
type HostState int

// Host states.
const (
	// StateEmpty - no plugin registered yet.
	StateEmpty HostState = iota

	// StateRegistered - at least one plugin registered, not initialized.
	StateRegistered

	// StateRunning - all initializers succeeded. The collection is frozen.
	StateRunning
)

// String returns a string representation of the state.
func (s HostState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRegistered:
		return "registered"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// AcceptsPlugins reports whether plugins can still be added.
func (s HostState) AcceptsPlugins() bool {
	return s != StateRunning
}
