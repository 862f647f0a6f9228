package events

// Action is the outcome directive a Handler returns once an event has been
// confirmed. The set is closed; the step coordinator matches it exhaustively.
type Action int

const (
	// Continue accepts the event and keeps integrating.
	Continue Action = iota

	// Stop accepts the event and halts propagation at the event time.
	// The propagation can be resumed later with a new target.
	Stop

	// ResetState accepts the event, replaces the state through the
	// handler's ResetState, discards the step remainder and restarts the
	// search from the new state.
	ResetState

	// ResetDerivatives accepts the event and keeps the state, but
	// invalidates the rest of the step because the dynamics are about to
	// change.
	ResetDerivatives

	// ResetEvents accepts the event and re-runs the whole same-step
	// search, for the case where the handler changed the definition of
	// another detector's switching function.
	ResetEvents
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	case ResetState:
		return "reset_state"
	case ResetDerivatives:
		return "reset_derivatives"
	case ResetEvents:
		return "reset_events"
	default:
		return "unknown"
	}
}
