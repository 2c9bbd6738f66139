package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Add returns s + other. Vectors of different length are rejected rather than
// padded or truncated.
func (s State) Add(other State) (State, error) {
	return s.AddScaled(1, other)
}

func (s State) Sub(other State) (State, error) {
	return s.AddScaled(-1, other)
}

// AddScaled returns s + alpha*other.
func (s State) AddScaled(alpha float64, other State) (State, error) {
	if len(s) != len(other) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(s), len(other))
	}
	result := make(State, len(s))
	floats.AddScaledTo(result, s, alpha, other)
	return result, nil
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

// DerivativeFunc maps (t, x) to dx/dt. Implementations must be free of side
// effects: integrators call them at intermediate, off-grid times and states.
type DerivativeFunc func(t float64, x State) State

type System interface {
	Derive(t float64, x State) State
	StateDim() int
}

// FuncOf adapts a System to a DerivativeFunc.
func FuncOf(sys System) DerivativeFunc {
	return sys.Derive
}

type Stepper interface {
	Step(f DerivativeFunc, t float64, x State, dt float64) (State, error)
	Name() string
}

type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
