// Package models provides the population dynamics equations integrated by
// compsim.
//
// Each model implements [dynamo.System]:
//
//   - [Competition]: generalized Lotka-Volterra competition between N species
//   - [Logistic]: single-species logistic growth with a closed-form solution
//
// Models hold only read-only coefficients and are safe to share between
// concurrent integrations.
package models
