package sweep

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/models"
	"gonum.org/v1/gonum/mat"
)

func decay(rate float64) dynamo.DerivativeFunc {
	return func(_ float64, x dynamo.State) dynamo.State {
		return dynamo.State{-rate * x[0]}
	}
}

func TestRunPreservesOrder(t *testing.T) {
	rates := []float64{0.1, 0.5, 1, 2, 4, 8}
	jobs := make([]Job, len(rates))
	for i, r := range rates {
		jobs[i] = Job{Name: string(rune('a' + i)), F: decay(r), X0: dynamo.State{1}, T0: 0, TMax: 1, Dt: 0.01}
	}

	results, err := Run(context.Background(), jobs, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}

	for i, res := range results {
		if res.Name != jobs[i].Name {
			t.Errorf("result %d is %s, want %s", i, res.Name, jobs[i].Name)
		}
		last := res.Trajectory.Len() - 1
		want := math.Exp(-rates[i] * res.Trajectory.Time(last))
		if math.Abs(res.Trajectory.At(0, last)-want) > 1e-6 {
			t.Errorf("job %s: got %v, want %v", res.Name, res.Trajectory.At(0, last), want)
		}
	}
}

func TestRunMatchesSequential(t *testing.T) {
	comp, err := models.NewCompetition(models.DefaultParams().Competition)
	if err != nil {
		t.Fatal(err)
	}
	initial := []dynamo.State{{0.47, 0.35}, {0.3, 0.6}, {0.1, 0.1}, {0.9, 0.05}}
	jobs := GridInitial(comp, initial, Span{T0: 0, TMax: 20, Dt: 0.01})

	parallel, err := Run(context.Background(), jobs, 0)
	if err != nil {
		t.Fatal(err)
	}
	sequential, err := Run(context.Background(), jobs, 1)
	if err != nil {
		t.Fatal(err)
	}

	for i := range jobs {
		if !mat.Equal(parallel[i].Trajectory.Matrix(), sequential[i].Trajectory.Matrix()) {
			t.Errorf("job %s differs between parallel and sequential runs", jobs[i].Name)
		}
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	bad := func(_ float64, _ dynamo.State) dynamo.State { return dynamo.State{1, 2} }
	jobs := []Job{
		{Name: "good", F: decay(1), X0: dynamo.State{1}, TMax: 1, Dt: 0.1},
		{Name: "bad", F: bad, X0: dynamo.State{1}, TMax: 1, Dt: 0.1},
	}

	results, err := Run(context.Background(), jobs, 1)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if results != nil {
		t.Error("expected no results on failure")
	}
}

func TestRunUnknownStepper(t *testing.T) {
	jobs := []Job{{Name: "x", F: decay(1), X0: dynamo.State{1}, TMax: 1, Dt: 0.1, Stepper: "leapfrog"}}
	if _, err := Run(context.Background(), jobs, 1); err == nil {
		t.Error("expected error for unknown stepper")
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Name: "x", F: decay(1), X0: dynamo.State{1}, TMax: 1, Dt: 0.1}}
	if _, err := Run(ctx, jobs, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridAlphas(t *testing.T) {
	base := models.DefaultParams().Competition
	jobs, err := GridAlphas(base, []float64{0.5, 1.5}, []float64{0.5, 1.5, 2.5}, dynamo.State{0.47, 0.35}, Span{TMax: 1, Dt: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 6 {
		t.Fatalf("expected 6 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "a12=0.5,a21=0.5" {
		t.Errorf("unexpected job name %q", jobs[0].Name)
	}
	if base.Alphas[0] != 1.3 {
		t.Error("GridAlphas modified the base parameters")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(Linspace(0, 1, 0)) != 0 {
		t.Error("expected empty result for n=0")
	}
	if got := Linspace(3, 4, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("Linspace with n=1 = %v", got)
	}
}
