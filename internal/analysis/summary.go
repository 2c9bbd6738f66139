package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type DimSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Final  float64 `json:"final"`
}

type Summary struct {
	From    float64      `json:"from"`
	Samples int          `json:"samples"`
	Finite  bool         `json:"finite"`
	Dims    []DimSummary `json:"dims"`
}

// Summarize computes per-component statistics over the samples with
// t >= from. When no sample qualifies only the final sample is used.
func Summarize(traj *dynamo.Trajectory, from float64) Summary {
	start := traj.Len() - 1
	for i := 0; i < traj.Len(); i++ {
		if traj.Time(i) >= from {
			start = i
			break
		}
	}

	s := Summary{
		From:    traj.Time(start),
		Samples: traj.Len() - start,
		Finite:  traj.IsFinite(),
		Dims:    make([]DimSummary, traj.Dims()),
	}
	for d := range s.Dims {
		row := traj.Row(d)[start:]
		mean, std := stat.MeanStdDev(row, nil)
		if len(row) < 2 {
			std = 0
		}
		s.Dims[d] = DimSummary{
			Min:    floats.Min(row),
			Max:    floats.Max(row),
			Mean:   mean,
			StdDev: std,
			Final:  row[len(row)-1],
		}
	}
	return s
}

// Metrics flattens a summary into name/value pairs for run metadata.
func (s Summary) Metrics(labels []string) map[string]float64 {
	m := make(map[string]float64, len(s.Dims)*3)
	for i, d := range s.Dims {
		name := fmt.Sprintf("x%d", i)
		if i < len(labels) {
			name = strings.ReplaceAll(strings.ToLower(labels[i]), " ", "_")
		}
		m[name+"_final"] = d.Final
		m[name+"_mean"] = d.Mean
		m[name+"_max"] = d.Max
	}
	return m
}

type OutcomeKind string

const (
	Coexistence OutcomeKind = "coexistence"
	Exclusion   OutcomeKind = "exclusion"
	Extinction  OutcomeKind = "extinction"
	Persistence OutcomeKind = "persistence"
	Diverged    OutcomeKind = "diverged"
)

type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Survivors []int       `json:"survivors"`
}

func (o Outcome) String() string {
	if o.Kind != Exclusion {
		return string(o.Kind)
	}
	names := make([]string, len(o.Survivors))
	for i, s := range o.Survivors {
		names[i] = fmt.Sprintf("%d", s+1)
	}
	return fmt.Sprintf("exclusion (species %s survives)", strings.Join(names, ", "))
}

// Classify labels a final state by which components stay above tol.
func Classify(final dynamo.State, tol float64) Outcome {
	if !final.IsValid() {
		return Outcome{Kind: Diverged}
	}
	survivors := make([]int, 0, len(final))
	for i, v := range final {
		if v > tol {
			survivors = append(survivors, i)
		}
	}
	switch {
	case len(survivors) == 0:
		return Outcome{Kind: Extinction, Survivors: survivors}
	case len(final) == 1:
		return Outcome{Kind: Persistence, Survivors: survivors}
	case len(survivors) == len(final):
		return Outcome{Kind: Coexistence, Survivors: survivors}
	default:
		return Outcome{Kind: Exclusion, Survivors: survivors}
	}
}

type Prediction string

const (
	StableCoexistence Prediction = "stable coexistence"
	Bistable          Prediction = "bistable (winner depends on initial state)"
	Species1Wins      Prediction = "species 1 wins"
	Species2Wins      Prediction = "species 2 wins"
)

// Predict applies the classical two-species invasion criteria, comparing each
// competition coefficient with the ratio of carrying capacities.
func Predict(p models.CompetitionParams) (Prediction, error) {
	comp, err := models.NewCompetition(p)
	if err != nil {
		return "", err
	}
	if comp.StateDim() != 2 {
		return "", fmt.Errorf("predict: %w: need exactly two species", dynamo.ErrDimensionMismatch)
	}

	a := comp.Interaction()
	k := comp.Params().CarryingCap
	a12, a21 := a.At(0, 1), a.At(1, 0)
	oneInvades := a12 < k[0]/k[1]
	twoInvades := a21 < k[1]/k[0]

	switch {
	case oneInvades && twoInvades:
		return StableCoexistence, nil
	case !oneInvades && !twoInvades:
		return Bistable, nil
	case oneInvades:
		return Species1Wins, nil
	default:
		return Species2Wins, nil
	}
}
