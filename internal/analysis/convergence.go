package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/integrators"
	"github.com/san-kum/compsim/internal/models"
)

// EstimateOrder returns the observed order of accuracy p from errors at two
// step sizes whose ratio is ratio (coarse/fine): err ~ C dt^p.
func EstimateOrder(errCoarse, errFine, ratio float64) float64 {
	return math.Log(errCoarse/errFine) / math.Log(ratio)
}

type ConvergencePoint struct {
	Dt    float64
	Error float64
	// Order relative to the previous point; NaN for the first one.
	Order float64
}

// Convergence integrates the logistic model with each step size and compares
// the state at tEval with the closed-form solution.
func Convergence(stepper string, l *models.Logistic, x0, tEval float64, dts []float64) ([]ConvergencePoint, error) {
	points := make([]ConvergencePoint, 0, len(dts))
	for i, dt := range dts {
		s, err := integrators.New(stepper)
		if err != nil {
			return nil, err
		}
		// extend past tEval by half a step so tEval is the last grid point
		traj, err := integrators.IntegrateWith(s, l.Func(), dynamo.State{x0}, 0, tEval+dt/2, dt)
		if err != nil {
			return nil, fmt.Errorf("dt=%g: %w", dt, err)
		}
		idx := int(math.Round(tEval / dt))
		if idx >= traj.Len() {
			idx = traj.Len() - 1
		}

		p := ConvergencePoint{
			Dt:    dt,
			Error: math.Abs(traj.At(0, idx) - l.Solution(x0, traj.Time(idx))),
			Order: math.NaN(),
		}
		if i > 0 {
			prev := points[i-1]
			p.Order = EstimateOrder(prev.Error, p.Error, prev.Dt/dt)
		}
		points = append(points, p)
	}
	return points, nil
}
