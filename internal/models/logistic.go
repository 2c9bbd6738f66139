package models

import (
	"math"

	"github.com/san-kum/compsim/internal/dynamo"
)

type LogisticParams struct {
	Rate     float64 `yaml:"rate" json:"rate"`
	Capacity float64 `yaml:"capacity" json:"capacity"`
}

// Logistic is single-species growth r x (1 - x/K). It has a closed-form
// solution and is used to measure integrator accuracy.
type Logistic struct {
	Rate     float64
	Capacity float64
}

func NewLogistic(p LogisticParams) *Logistic {
	return &Logistic{Rate: p.Rate, Capacity: p.Capacity}
}

func (l *Logistic) StateDim() int { return 1 }

func (l *Logistic) Derive(_ float64, x dynamo.State) dynamo.State {
	if len(x) != 1 {
		return nil
	}
	return dynamo.State{l.Rate * x[0] * (1 - x[0]/l.Capacity)}
}

func (l *Logistic) Func() dynamo.DerivativeFunc {
	return l.Derive
}

// Solution is the exact population at time t starting from x0 at t = 0.
func (l *Logistic) Solution(x0, t float64) float64 {
	if x0 == 0 {
		return 0
	}
	return l.Capacity / (1 + (l.Capacity/x0-1)*math.Exp(-l.Rate*t))
}

func (l *Logistic) Labels() []string { return []string{"Population"} }
