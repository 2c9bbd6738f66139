package models

import (
	"fmt"

	"github.com/san-kum/compsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CompetitionParams configures a generalized Lotka-Volterra competition
// system. Alphas is the two-species shorthand: Alphas[0] is the effect of
// species 2 on species 1 and Alphas[1] the effect of species 1 on species 2.
// Interaction is the full N x N form; its diagonal is ignored and treated as 1.
// Interaction takes precedence when both are set.
type CompetitionParams struct {
	GrowthRate  []float64   `yaml:"growth_rate" json:"growth_rate"`
	CarryingCap []float64   `yaml:"carrying_cap" json:"carrying_cap"`
	Alphas      []float64   `yaml:"alphas,omitempty" json:"alphas,omitempty"`
	Interaction [][]float64 `yaml:"interaction,omitempty" json:"interaction,omitempty"`
}

func (p CompetitionParams) clone() CompetitionParams {
	c := CompetitionParams{
		GrowthRate:  append([]float64(nil), p.GrowthRate...),
		CarryingCap: append([]float64(nil), p.CarryingCap...),
		Alphas:      append([]float64(nil), p.Alphas...),
	}
	if p.Interaction != nil {
		c.Interaction = make([][]float64, len(p.Interaction))
		for i, row := range p.Interaction {
			c.Interaction[i] = append([]float64(nil), row...)
		}
	}
	return c
}

// Competition is the system
//
//	dx[i]/dt = r[i] * x[i] * (1 - (x[i] + sum_{j != i} a[i][j]*x[j]) / K[i])
//
// Parameters are not range-checked. A zero carrying capacity divides by zero
// and a negative one flips the sign of the crowding term; both show up as
// Inf/NaN or unbounded values in the integrated trajectory.
type Competition struct {
	rate     []float64
	capacity []float64
	alpha    *mat.Dense
	params   CompetitionParams
}

func NewCompetition(p CompetitionParams) (*Competition, error) {
	n := len(p.GrowthRate)
	if n == 0 {
		return nil, fmt.Errorf("competition: %w: no species", dynamo.ErrDimensionMismatch)
	}
	if len(p.CarryingCap) != n {
		return nil, fmt.Errorf("competition: %w: %d growth rates, %d carrying capacities",
			dynamo.ErrDimensionMismatch, n, len(p.CarryingCap))
	}

	alpha := mat.NewDense(n, n, nil)
	switch {
	case p.Interaction != nil:
		if len(p.Interaction) != n {
			return nil, fmt.Errorf("competition: %w: interaction has %d rows, want %d",
				dynamo.ErrDimensionMismatch, len(p.Interaction), n)
		}
		for i, row := range p.Interaction {
			if len(row) != n {
				return nil, fmt.Errorf("competition: %w: interaction row %d has %d entries, want %d",
					dynamo.ErrDimensionMismatch, i, len(row), n)
			}
			alpha.SetRow(i, row)
		}
	case len(p.Alphas) > 0:
		if n != 2 || len(p.Alphas) != 2 {
			return nil, fmt.Errorf("competition: %w: alphas shorthand needs exactly 2 species and 2 coefficients",
				dynamo.ErrDimensionMismatch)
		}
		alpha.Set(0, 1, p.Alphas[0])
		alpha.Set(1, 0, p.Alphas[1])
	}
	for i := 0; i < n; i++ {
		alpha.Set(i, i, 1)
	}

	params := p.clone()
	return &Competition{
		rate:     params.GrowthRate,
		capacity: params.CarryingCap,
		alpha:    alpha,
		params:   params,
	}, nil
}

func (c *Competition) StateDim() int { return len(c.rate) }

// Derive returns nil when x has the wrong length so that integrators report a
// dimension mismatch instead of indexing out of range.
func (c *Competition) Derive(_ float64, x dynamo.State) dynamo.State {
	n := len(c.rate)
	if len(x) != n {
		return nil
	}
	dx := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		load := floats.Dot(c.alpha.RawRowView(i), x)
		dx[i] = c.rate[i] * x[i] * (1 - load/c.capacity[i])
	}
	return dx
}

func (c *Competition) Func() dynamo.DerivativeFunc {
	return c.Derive
}

// Params returns a copy of the configuration.
func (c *Competition) Params() CompetitionParams {
	return c.params.clone()
}

// Interaction returns a copy of the full coefficient matrix, diagonal included.
func (c *Competition) Interaction() *mat.Dense {
	return mat.DenseCopyOf(c.alpha)
}

// Equilibrium solves A x = K for the interior fixed point. For two species
// this is x1 = (K1 - a12 K2)/(1 - a12 a21), x2 = (K2 - a21 K1)/(1 - a12 a21).
// Components may be negative, meaning there is no feasible coexistence point.
func (c *Competition) Equilibrium() (dynamo.State, error) {
	n := len(c.rate)
	var x mat.VecDense
	if err := x.SolveVec(c.alpha, mat.NewVecDense(n, append([]float64(nil), c.capacity...))); err != nil {
		return nil, fmt.Errorf("competition: %w: %v", dynamo.ErrDegenerate, err)
	}
	return dynamo.State(mat.Col(nil, 0, &x)), nil
}

func (c *Competition) Labels() []string {
	labels := make([]string, len(c.rate))
	for i := range labels {
		labels[i] = fmt.Sprintf("Species %d", i+1)
	}
	return labels
}
