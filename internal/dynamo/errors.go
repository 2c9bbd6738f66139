package dynamo

import "errors"

// Domain errors for integration and model construction.
var (
	// ErrDimensionMismatch indicates vectors whose lengths disagree, most often
	// a derivative function returning the wrong number of components.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and derivative")

	// ErrInvalidStep indicates a time step that is not a positive finite number.
	ErrInvalidStep = errors.New("dynamo: time step must be positive and finite")

	// ErrInvalidSpan indicates an integration interval with end <= start.
	ErrInvalidSpan = errors.New("dynamo: end time must be greater than start time")

	// ErrEmptyState indicates a zero-length initial state.
	ErrEmptyState = errors.New("dynamo: initial state is empty")

	// ErrDegenerate indicates a model configuration without a unique fixed point.
	ErrDegenerate = errors.New("dynamo: degenerate system (no unique equilibrium)")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)
