package traject

import "errors"

// Domain errors for propagation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("traject: invalid state (NaN or Inf detected)")

	// ErrInvalidTarget indicates a propagation target equal to the current time
	// with no work to do being requested as an error, or a non-finite target.
	ErrInvalidTarget = errors.New("traject: invalid propagation target")

	// ErrStepTooSmall indicates the adaptive step size fell below its minimum.
	ErrStepTooSmall = errors.New("traject: adaptive step size below minimum")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("traject: dimension mismatch between state and system")

	// ErrOutsideStep indicates an interpolation time outside the current step.
	ErrOutsideStep = errors.New("traject: interpolation time outside step")
)
