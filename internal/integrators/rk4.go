package integrators

import (
	"fmt"

	"github.com/san-kum/compsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical explicit fourth-order Runge-Kutta method with a fixed
// step. Local truncation error is O(dt^5), global error O(dt^4) for smooth f.
// There is no error control: accuracy is governed only by the caller's dt.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// Step advances x from t to t+dt:
//
//	k1 = dt*f(t, x)
//	k2 = dt*f(t+dt/2, x+k1/2)
//	k3 = dt*f(t+dt/2, x+k2/2)
//	k4 = dt*f(t+dt, x+k3)
//	x' = x + (k1 + 2*k2 + 2*k3 + k4)/6
func (r *RK4) Step(f dynamo.DerivativeFunc, t float64, x dynamo.State, dt float64) (dynamo.State, error) {
	n := len(x)
	r.ensureScratch(n)

	if err := stage(r.k1, f, t, x, dt); err != nil {
		return nil, err
	}

	floats.AddScaledTo(r.scratch, x, 0.5, r.k1)
	if err := stage(r.k2, f, t+dt/2, r.scratch, dt); err != nil {
		return nil, err
	}

	floats.AddScaledTo(r.scratch, x, 0.5, r.k2)
	if err := stage(r.k3, f, t+dt/2, r.scratch, dt); err != nil {
		return nil, err
	}

	floats.AddTo(r.scratch, x, r.k3)
	if err := stage(r.k4, f, t+dt, r.scratch, dt); err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + (r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])/6
	}

	return result, nil
}

// stage stores dt*f(t, x) in dst.
func stage(dst dynamo.State, f dynamo.DerivativeFunc, t float64, x dynamo.State, dt float64) error {
	dx := f(t, x)
	if len(dx) != len(dst) {
		return fmt.Errorf("%w: derivative has %d components, state has %d",
			dynamo.ErrDimensionMismatch, len(dx), len(dst))
	}
	floats.ScaleTo(dst, dt, dx)
	return nil
}
