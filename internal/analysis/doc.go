// Package analysis turns integrated trajectories into answers about the
// competition: who survives, how accurate the integration was, and what the
// phase space looks like.
//
//   - [Summarize]: per-species statistics over the tail of a run
//   - [Classify], [Predict]: observed and theoretical competition outcomes
//   - [Convergence]: observed order of accuracy against a closed-form solution
//   - [BifurcationDiagram]: long-run populations across a coefficient sweep
//   - [PhasePortrait]: one species against another, with an ASCII renderer
package analysis
