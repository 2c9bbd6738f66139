package sweep

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/integrators"
	"github.com/san-kum/compsim/internal/models"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Job is one independent integration.
type Job struct {
	Name    string
	F       dynamo.DerivativeFunc
	X0      dynamo.State
	T0      float64
	TMax    float64
	Dt      float64
	Stepper string
}

type Result struct {
	Name       string
	Trajectory *dynamo.Trajectory
}

// Run integrates every job, at most workers at a time (GOMAXPROCS when
// workers <= 0). Results are returned in job order. Each job gets its own
// stepper, so no state is shared between goroutines. The context is checked
// only before a job starts; a running integration is never interrupted.
func Run(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := job.Stepper
			if name == "" {
				name = "rk4"
			}
			stepper, err := integrators.New(name)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}

			traj, err := integrators.IntegrateWith(stepper, job.F, job.X0, job.T0, job.TMax, job.Dt)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			results[i] = Result{Name: job.Name, Trajectory: traj}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Span is the shared time range of a sweep.
type Span struct {
	T0, TMax, Dt float64
}

// GridAlphas builds one competition job per (a12, a21) pair, all starting
// from x0. base supplies growth rates and carrying capacities.
func GridAlphas(base models.CompetitionParams, a12, a21 []float64, x0 dynamo.State, span Span) ([]Job, error) {
	jobs := make([]Job, 0, len(a12)*len(a21))
	for _, a := range a12 {
		for _, b := range a21 {
			p := base
			p.Interaction = nil
			p.Alphas = []float64{a, b}
			comp, err := models.NewCompetition(p)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, Job{
				Name: fmt.Sprintf("a12=%.3g,a21=%.3g", a, b),
				F:    comp.Func(),
				X0:   x0.Clone(),
				T0:   span.T0, TMax: span.TMax, Dt: span.Dt,
			})
		}
	}
	return jobs, nil
}

// GridInitial builds one job per initial state for a single system.
func GridInitial(sys dynamo.System, initial []dynamo.State, span Span) []Job {
	f := dynamo.FuncOf(sys)
	jobs := make([]Job, len(initial))
	for i, x0 := range initial {
		jobs[i] = Job{
			Name: fmt.Sprintf("x0=%v", []float64(x0)),
			F:    f,
			X0:   x0.Clone(),
			T0:   span.T0, TMax: span.TMax, Dt: span.Dt,
		}
	}
	return jobs
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
