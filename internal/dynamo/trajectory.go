package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Trajectory is the output of an integration run: one row per state component,
// one column per sample time. Column 0 is the initial state.
type Trajectory struct {
	data  *mat.Dense
	times []float64
}

// NewTrajectory allocates storage for dims components sampled at times and
// writes x0 into the first column.
func NewTrajectory(x0 State, times []float64) (*Trajectory, error) {
	if len(x0) == 0 {
		return nil, ErrEmptyState
	}
	if len(times) == 0 {
		return nil, ErrInvalidSpan
	}
	tr := &Trajectory{
		data:  mat.NewDense(len(x0), len(times), nil),
		times: append([]float64(nil), times...),
	}
	tr.data.SetCol(0, x0)
	return tr, nil
}

// FromColumns builds a trajectory from already computed samples, e.g. when
// loading a stored run. Every column must have the same length.
func FromColumns(times []float64, cols []State) (*Trajectory, error) {
	if len(times) != len(cols) {
		return nil, fmt.Errorf("%w: %d times vs %d samples", ErrDimensionMismatch, len(times), len(cols))
	}
	if len(cols) == 0 {
		return nil, ErrEmptyState
	}
	tr, err := NewTrajectory(cols[0], times)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(cols); i++ {
		if err := tr.SetColumn(i, cols[i]); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// SetColumn writes sample i. It is meant for the producer filling the
// trajectory left to right; consumers should treat a returned trajectory as
// read-only.
func (tr *Trajectory) SetColumn(i int, x State) error {
	if len(x) != tr.Dims() {
		return fmt.Errorf("%w: column %d has %d components, want %d", ErrDimensionMismatch, i, len(x), tr.Dims())
	}
	tr.data.SetCol(i, x)
	return nil
}

func (tr *Trajectory) Dims() int {
	r, _ := tr.data.Dims()
	return r
}

func (tr *Trajectory) Len() int {
	return len(tr.times)
}

func (tr *Trajectory) Times() []float64 {
	return append([]float64(nil), tr.times...)
}

func (tr *Trajectory) Time(i int) float64 {
	return tr.times[i]
}

func (tr *Trajectory) At(dim, i int) float64 {
	return tr.data.At(dim, i)
}

func (tr *Trajectory) Column(i int) State {
	return mat.Col(nil, i, tr.data)
}

func (tr *Trajectory) Row(dim int) []float64 {
	return mat.Row(nil, dim, tr.data)
}

func (tr *Trajectory) Final() State {
	return tr.Column(tr.Len() - 1)
}

// IsFinite reports whether every sample is free of NaN and Inf. Integrators
// never check this themselves.
func (tr *Trajectory) IsFinite() bool {
	for i := 0; i < tr.Len(); i++ {
		if !tr.Column(i).IsValid() {
			return false
		}
	}
	return true
}

// Matrix exposes the samples without copying.
func (tr *Trajectory) Matrix() mat.Matrix {
	return tr.data
}
