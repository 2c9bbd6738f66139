package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/integrators"
	"github.com/san-kum/compsim/internal/models"
	"github.com/san-kum/compsim/internal/sweep"
)

func referenceRun(t *testing.T) *dynamo.Trajectory {
	t.Helper()
	comp, err := models.NewCompetition(models.DefaultParams().Competition)
	if err != nil {
		t.Fatal(err)
	}
	traj, err := integrators.Integrate(comp.Func(), dynamo.State{0.47, 0.35}, 0, 100, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	return traj
}

func TestSummarize(t *testing.T) {
	traj, err := dynamo.FromColumns(
		[]float64{0, 1, 2, 3},
		[]dynamo.State{{1, 10}, {2, 20}, {3, 30}, {4, 40}},
	)
	if err != nil {
		t.Fatal(err)
	}

	s := Summarize(traj, 1)
	if s.Samples != 3 || s.From != 1 {
		t.Errorf("expected 3 samples from t=1, got %d from %v", s.Samples, s.From)
	}
	if !s.Finite {
		t.Error("expected finite summary")
	}

	d := s.Dims[1]
	if d.Min != 20 || d.Max != 40 || d.Mean != 30 || d.Final != 40 {
		t.Errorf("unexpected summary %+v", d)
	}
	if math.Abs(d.StdDev-10) > 1e-12 {
		t.Errorf("expected stddev 10, got %v", d.StdDev)
	}
}

func TestSummarize_FromBeyondEnd(t *testing.T) {
	traj, _ := dynamo.FromColumns([]float64{0, 1}, []dynamo.State{{1}, {2}})

	s := Summarize(traj, 50)
	if s.Samples != 1 || s.Dims[0].Final != 2 || s.Dims[0].StdDev != 0 {
		t.Errorf("expected summary of the final sample, got %+v", s)
	}
}

func TestSummaryMetrics(t *testing.T) {
	traj, _ := dynamo.FromColumns([]float64{0, 1}, []dynamo.State{{1, 2}, {3, 4}})
	m := Summarize(traj, 0).Metrics([]string{"Species 1"})

	if m["species_1_final"] != 3 {
		t.Errorf("expected species_1_final 3, got %v", m["species_1_final"])
	}
	if m["x1_mean"] != 3 {
		t.Errorf("expected x1_mean 3, got %v", m["x1_mean"])
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		final    dynamo.State
		expected OutcomeKind
	}{
		{"coexistence", dynamo.State{0.6, 0.6}, Coexistence},
		{"exclusion", dynamo.State{1, 1e-12}, Exclusion},
		{"extinction", dynamo.State{0, 1e-9}, Extinction},
		{"single species", dynamo.State{0.9}, Persistence},
		{"diverged", dynamo.State{math.NaN(), 1}, Diverged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.final, 1e-6); got.Kind != tt.expected {
				t.Errorf("Classify(%v) = %s, want %s", tt.final, got.Kind, tt.expected)
			}
		})
	}

	out := Classify(dynamo.State{1e-12, 0.9}, 1e-6)
	if out.String() != "exclusion (species 2 survives)" {
		t.Errorf("unexpected description %q", out.String())
	}
}

func TestPredict(t *testing.T) {
	tests := []struct {
		name     string
		alphas   []float64
		expected Prediction
	}{
		{"weak competition", []float64{0.5, 0.5}, StableCoexistence},
		{"strong competition", []float64{1.3, 1.3}, Bistable},
		{"species 1 dominant", []float64{0.7, 1.4}, Species1Wins},
		{"species 2 dominant", []float64{1.4, 0.7}, Species2Wins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.CompetitionParams{
				GrowthRate: []float64{1, 1}, CarryingCap: []float64{1, 1}, Alphas: tt.alphas,
			}
			got, err := Predict(p)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("Predict = %q, want %q", got, tt.expected)
			}
		})
	}

	if _, err := Predict(models.CompetitionParams{GrowthRate: []float64{1}, CarryingCap: []float64{1}}); err == nil {
		t.Error("expected error for a single species")
	}
}

func TestReferenceRunOutcome(t *testing.T) {
	traj := referenceRun(t)

	early := Summarize(traj, 0)
	for i, d := range early.Dims {
		if d.Max > 1.0+1e-9 || d.Min < 0 {
			t.Errorf("species %d left [0, 1]: %+v", i+1, d)
		}
	}

	out := Classify(traj.Final(), 1e-6)
	if out.Kind != Exclusion || len(out.Survivors) != 1 || out.Survivors[0] != 0 {
		t.Errorf("expected species 1 to win, got %s", out)
	}
}

func TestConvergenceOrder(t *testing.T) {
	l := models.NewLogistic(models.LogisticParams{Rate: 1, Capacity: 1})
	dts := []float64{0.1, 0.05, 0.025}

	tests := []struct {
		stepper string
		order   float64
	}{
		{"rk4", 4},
		{"euler", 1},
	}

	for _, tt := range tests {
		t.Run(tt.stepper, func(t *testing.T) {
			points, err := Convergence(tt.stepper, l, 0.1, 5, dts)
			if err != nil {
				t.Fatal(err)
			}
			if !math.IsNaN(points[0].Order) {
				t.Errorf("first point should have no order, got %v", points[0].Order)
			}
			for _, p := range points[1:] {
				if math.Abs(p.Order-tt.order) > 0.2 {
					t.Errorf("dt=%g: observed order %.3f, want about %v", p.Dt, p.Order, tt.order)
				}
			}
		})
	}
}

func TestEstimateOrder(t *testing.T) {
	if got := EstimateOrder(16, 1, 2); math.Abs(got-4) > 1e-12 {
		t.Errorf("EstimateOrder(16, 1, 2) = %v, want 4", got)
	}
}

func TestPhasePortrait(t *testing.T) {
	traj := referenceRun(t)

	portrait, err := PhasePortrait(traj, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(portrait.Points) != traj.Len() {
		t.Errorf("expected %d points, got %d", traj.Len(), len(portrait.Points))
	}
	if portrait.Points[0] != (Point{X: 0.47, Y: 0.35}) {
		t.Errorf("first point %v is not the initial state", portrait.Points[0])
	}

	art := PhasePortraitToASCII(portrait, 40, 12)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	if !strings.ContainsRune(art, 'o') || !strings.ContainsRune(art, '*') {
		t.Error("expected start and end markers")
	}

	if _, err := PhasePortrait(traj, 0, 2); err == nil {
		t.Error("expected error for out-of-range axis")
	}
}

func TestPhasePortraitToASCII_Empty(t *testing.T) {
	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("expected empty output for nil portrait")
	}
	if PhasePortraitToASCII(&PhasePortrait2D{}, 10, 10) != "" {
		t.Error("expected empty output for no points")
	}
}

func TestBifurcationDiagram(t *testing.T) {
	base := models.DefaultParams().Competition
	values := []float64{0.5, 0.8, 1.5}

	points, err := BifurcationDiagram(context.Background(), base, 1, values,
		dynamo.State{0.47, 0.35}, sweep.Span{T0: 0, TMax: 200, Dt: 0.05}, 150, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	for _, p := range points {
		if len(p.Values) != 1 {
			t.Errorf("alpha=%v: expected a single settled value, got %v", p.Param, p.Values)
		}
	}
	// a21 = 1.5 with a12 = 1.3: species 2 is excluded
	if v := points[2].Values[0]; v > 1e-3 {
		t.Errorf("expected species 2 to vanish at a21=1.5, got %v", v)
	}
	// a21 = 0.5 with a12 = 1.3: species 1 is excluded, species 2 at capacity
	if v := points[0].Values[0]; math.Abs(v-1) > 1e-3 {
		t.Errorf("expected species 2 at capacity for a21=0.5, got %v", v)
	}

	if _, err := BifurcationDiagram(context.Background(), base, 2, values,
		dynamo.State{0.47, 0.35}, sweep.Span{TMax: 1, Dt: 0.1}, 0, 0, 1); err == nil {
		t.Error("expected error for invalid alpha index")
	}
}

func TestBifurcationDiagram_Interaction(t *testing.T) {
	base := models.CompetitionParams{
		GrowthRate:  []float64{1, 1},
		CarryingCap: []float64{1, 1},
		Interaction: [][]float64{{1, 0.5}, {2, 1}},
	}

	points, err := BifurcationDiagram(context.Background(), base, 1, []float64{0.5},
		dynamo.State{0.47, 0.35}, sweep.Span{T0: 0, TMax: 200, Dt: 0.05}, 150, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	// a12 = a21 = 0.5: both species coexist at 2/3
	if len(points[0].Values) != 1 || math.Abs(points[0].Values[0]-2.0/3) > 1e-3 {
		t.Errorf("expected species 2 to settle at 2/3, got %v", points[0].Values)
	}
	if base.Interaction[1][0] != 2 {
		t.Errorf("base interaction was modified: %v", base.Interaction)
	}

	base.Interaction = [][]float64{{1, 0.5, 0.5}, {0.5, 1, 0.5}, {0.5, 0.5, 1}}
	if _, err := BifurcationDiagram(context.Background(), base, 0, []float64{0.5},
		dynamo.State{0.1, 0.1, 0.1}, sweep.Span{TMax: 1, Dt: 0.1}, 0, 0, 1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch for a 3x3 interaction, got %v", err)
	}
}

func TestBifurcationDiagram_SkipsNonFinite(t *testing.T) {
	base := models.DefaultParams().Competition
	base.CarryingCap = []float64{0, 1}

	points, err := BifurcationDiagram(context.Background(), base, 1, []float64{0.5},
		dynamo.State{0.47, 0.35}, sweep.Span{T0: 0, TMax: 2, Dt: 0.1}, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(points[0].Values) != 0 {
		t.Errorf("expected diverged samples to be skipped, got %v", points[0].Values)
	}
}
