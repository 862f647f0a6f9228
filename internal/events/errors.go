package events

import "errors"

// Domain errors for event detection.
var (
	// ErrTooManyResets indicates the per-step bound on RESET_EVENTS
	// re-scans was exceeded, usually a handler loop feeding itself.
	ErrTooManyResets = errors.New("events: too many event resets in a single step")

	// ErrNoResetState indicates a handler returned ResetState without
	// providing a usable replacement state.
	ErrNoResetState = errors.New("events: handler requested state reset but provided no reset state")

	// ErrNonFiniteG indicates a switching function returned NaN or Inf.
	ErrNonFiniteG = errors.New("events: switching function returned a non-finite value")
)
