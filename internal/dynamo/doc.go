// Package dynamo provides the core primitives shared by models and integrators.
//
// The package defines the fundamental types for numerical integration of
// ordinary differential equations dX/dt = f(t, X):
//
//   - [State]: length-checked vector of dynamical variables
//   - [DerivativeFunc]: the right-hand side f
//   - [System]: struct-based models exposing f through Derive
//   - [Stepper]: a single fixed-size integration step
//   - [Trajectory]: samples of an integration run, dims x times
//
// # Example
//
//	comp, _ := models.NewCompetition(params)
//	traj, err := integrators.Integrate(comp.Func(), dynamo.State{0.47, 0.35}, 0, 100, 0.01)
//
// # Thread Safety
//
// A Trajectory is read-only once returned and may be shared between
// goroutines. Steppers keep scratch buffers and must not be shared.
package dynamo
