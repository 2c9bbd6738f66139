package integrators

import "github.com/san-kum/compsim/internal/dynamo"

// Euler is the explicit first-order method. It exists as a baseline for
// comparing against RK4.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(f dynamo.DerivativeFunc, t float64, x dynamo.State, dt float64) (dynamo.State, error) {
	return x.AddScaled(dt, f(t, x))
}
