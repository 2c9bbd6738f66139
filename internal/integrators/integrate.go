package integrators

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/compsim/internal/dynamo"
)

// MaxSamples bounds the size of a time grid.
const MaxSamples = 1 << 28

var ErrNilDerivative = errors.New("integrators: nil derivative function")

// TimeGrid returns t0, t0+dt, t0+2dt, ... strictly below tmax. A final partial
// interval is dropped rather than taken with a shorter step.
func TimeGrid(t0, tmax, dt float64) ([]float64, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt=%g", dynamo.ErrInvalidStep, dt)
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(tmax) || math.IsInf(tmax, 0) {
		return nil, fmt.Errorf("%w: t0=%g tmax=%g", dynamo.ErrInvalidSpan, t0, tmax)
	}
	if tmax <= t0 {
		return nil, fmt.Errorf("%w: t0=%g tmax=%g", dynamo.ErrInvalidSpan, t0, tmax)
	}

	count := math.Ceil((tmax - t0) / dt)
	if count > MaxSamples {
		return nil, fmt.Errorf("%w: %g samples exceeds limit of %d", dynamo.ErrInvalidStep, count, MaxSamples)
	}
	n := int(count)
	if n < 1 {
		n = 1
	}

	times := make([]float64, n)
	for i := range times {
		times[i] = t0 + float64(i)*dt
	}
	return times, nil
}

// Integrate solves dx/dt = f(t, x) from x0 over [t0, tmax) with classical RK4
// and a fixed step dt. The trajectory has one column per grid time and its
// first column equals x0.
//
// Invalid stepping parameters or an empty x0 fail before any work is done.
// If f ever returns a vector of the wrong length the call fails with a
// *dynamo.SimulationError wrapping dynamo.ErrDimensionMismatch and no
// trajectory. NaN or Inf produced by f is not detected; it propagates into all
// later samples and callers should check Trajectory.IsFinite if it matters.
func Integrate(f dynamo.DerivativeFunc, x0 dynamo.State, t0, tmax, dt float64) (*dynamo.Trajectory, error) {
	return IntegrateWith(NewRK4(), f, x0, t0, tmax, dt)
}

// IntegrateWith is Integrate with an explicit stepper. The stepper must not
// be used concurrently by another integration.
func IntegrateWith(stepper dynamo.Stepper, f dynamo.DerivativeFunc, x0 dynamo.State, t0, tmax, dt float64) (*dynamo.Trajectory, error) {
	if f == nil {
		return nil, ErrNilDerivative
	}
	if len(x0) == 0 {
		return nil, dynamo.ErrEmptyState
	}

	times, err := TimeGrid(t0, tmax, dt)
	if err != nil {
		return nil, err
	}

	traj, err := dynamo.NewTrajectory(x0, times)
	if err != nil {
		return nil, err
	}

	x := x0.Clone()
	for i := 0; i < len(times)-1; i++ {
		next, err := stepper.Step(f, times[i], x, dt)
		if err != nil {
			return nil, &dynamo.SimulationError{Step: i, Time: times[i], Wrapped: err}
		}
		if err := traj.SetColumn(i+1, next); err != nil {
			return nil, &dynamo.SimulationError{Step: i, Time: times[i], Wrapped: err}
		}
		x = next
	}

	return traj, nil
}

var steppers = map[string]func() dynamo.Stepper{
	"rk4":   func() dynamo.Stepper { return NewRK4() },
	"euler": func() dynamo.Stepper { return NewEuler() },
}

// New returns a fresh stepper by name.
func New(name string) (dynamo.Stepper, error) {
	fn, ok := steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, List())
	}
	return fn(), nil
}

func List() []string {
	names := make([]string, 0, len(steppers))
	for name := range steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
