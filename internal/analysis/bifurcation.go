package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/models"
	"github.com/san-kum/compsim/internal/sweep"
)

// BifurcationPoint holds the distinct long-run values of one state component
// for a given parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// withAlpha returns a copy of base with a12 (alphaIndex 0) or a21 (1) set
// to v. When base carries a full interaction matrix the off-diagonal entry
// is changed there, since it takes precedence over Alphas.
func withAlpha(base models.CompetitionParams, alphaIndex int, v float64) models.CompetitionParams {
	p := base
	if base.Interaction != nil {
		p.Interaction = [][]float64{
			append([]float64(nil), base.Interaction[0]...),
			append([]float64(nil), base.Interaction[1]...),
		}
		if alphaIndex == 0 {
			p.Interaction[0][1] = v
		} else {
			p.Interaction[1][0] = v
		}
		return p
	}
	p.Alphas = append([]float64(nil), base.Alphas...)
	p.Alphas[alphaIndex] = v
	return p
}

// BifurcationDiagram sweeps one competition coefficient (alphaIndex 0 is
// a12, 1 is a21) over values and records the distinct values taken by
// stateIndex once t >= transient. The integrations run concurrently.
func BifurcationDiagram(
	ctx context.Context,
	base models.CompetitionParams,
	alphaIndex int,
	values []float64,
	x0 dynamo.State,
	span sweep.Span,
	transient float64,
	stateIndex int,
	workers int,
) ([]BifurcationPoint, error) {
	if alphaIndex != 0 && alphaIndex != 1 {
		return nil, fmt.Errorf("alpha index must be 0 or 1, got %d", alphaIndex)
	}
	if base.Interaction != nil {
		if len(base.Interaction) != 2 || len(base.Interaction[0]) != 2 || len(base.Interaction[1]) != 2 {
			return nil, fmt.Errorf("bifurcation: %w: interaction matrix must be 2x2", dynamo.ErrDimensionMismatch)
		}
	} else if len(base.Alphas) != 2 {
		return nil, fmt.Errorf("bifurcation: %w: base parameters need two alphas", dynamo.ErrDimensionMismatch)
	}
	if stateIndex < 0 || stateIndex >= len(x0) {
		return nil, fmt.Errorf("bifurcation: %w: state index %d", dynamo.ErrDimensionMismatch, stateIndex)
	}

	jobs := make([]sweep.Job, len(values))
	for i, v := range values {
		p := withAlpha(base, alphaIndex, v)
		comp, err := models.NewCompetition(p)
		if err != nil {
			return nil, err
		}
		jobs[i] = sweep.Job{
			Name: fmt.Sprintf("alpha[%d]=%.4g", alphaIndex, v),
			F:    comp.Func(),
			X0:   x0.Clone(),
			T0:   span.T0, TMax: span.TMax, Dt: span.Dt,
		}
	}

	results, err := sweep.Run(ctx, jobs, workers)
	if err != nil {
		return nil, err
	}

	points := make([]BifurcationPoint, len(results))
	for i, res := range results {
		traj := res.Trajectory
		seen := make(map[int]bool)
		distinct := make([]float64, 0, 4)
		for j := 0; j < traj.Len(); j++ {
			if traj.Time(j) < transient {
				continue
			}
			val := traj.At(stateIndex, j)
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			// quantize so a settled trajectory collapses to one value
			key := int(math.Round(val * 1000))
			if !seen[key] {
				seen[key] = true
				distinct = append(distinct, val)
			}
		}
		points[i] = BifurcationPoint{Param: values[i], Values: distinct}
	}

	return points, nil
}
