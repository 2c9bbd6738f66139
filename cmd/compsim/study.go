package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/compsim/internal/analysis"
	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/models"
	"github.com/san-kum/compsim/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	// sweep
	a12Range  []float64
	a21Range  []float64
	gridSteps int
	initGrid  int
	// convergence
	convDt     float64
	convLevels int
	convTEval  float64
	convX0     float64
	// bifurcation
	bifIndex     int
	bifRange     []float64
	bifSteps     int
	bifTransient float64
	bifState     int
)

// addSpanFlags registers the flags resolveConfig understands for commands
// that integrate a configured model.
func addSpanFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "step size")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&tmax, "tmax", 100, "end time (exclusive)")
	cmd.Flags().Float64SliceVar(&initState, "init", nil, "initial populations")
	cmd.Flags().Float64SliceVar(&growthRates, "r", nil, "growth rates")
	cmd.Flags().Float64SliceVar(&capacities, "k", nil, "carrying capacities")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent integrations (0 = GOMAXPROCS)")
}

func studyCommands() []*cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "integrate a grid of competition coefficients or initial states",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSpanFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&a12Range, "a12", []float64{0.5, 1.5}, "a12 range lo,hi")
	sweepCmd.Flags().Float64SliceVar(&a21Range, "a21", []float64{0.5, 1.5}, "a21 range lo,hi")
	sweepCmd.Flags().IntVar(&gridSteps, "steps", 3, "grid points per coefficient")
	sweepCmd.Flags().IntVar(&initGrid, "init-grid", 0, "sweep an n x n grid of initial states instead of coefficients")

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "compare rk4 and euler on the same run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSpanFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&alphas, "alpha", nil, "competition coefficients a12,a21")

	convergenceCmd := &cobra.Command{
		Use:   "convergence",
		Short: "observed order of accuracy against the logistic closed form",
		Args:  cobra.NoArgs,
		RunE:  runConvergence,
	}
	convergenceCmd.Flags().Float64Var(&convDt, "dt", 0.1, "coarsest step size")
	convergenceCmd.Flags().IntVar(&convLevels, "levels", 4, "number of halvings")
	convergenceCmd.Flags().Float64Var(&convTEval, "t", 5, "evaluation time")
	convergenceCmd.Flags().Float64Var(&convX0, "x0", 0.1, "initial population")
	convergenceCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (rk4, euler)")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "long-run population across a range of one competition coefficient",
		Args:  cobra.NoArgs,
		RunE:  runBifurcation,
	}
	addSpanFlags(bifurcationCmd)
	bifurcationCmd.Flags().Float64SliceVar(&alphas, "alpha", nil, "base competition coefficients a12,a21")
	bifurcationCmd.Flags().IntVar(&bifIndex, "alpha-index", 1, "coefficient to vary (0 = a12, 1 = a21)")
	bifurcationCmd.Flags().Float64SliceVar(&bifRange, "range", []float64{0.5, 1.5}, "coefficient range lo,hi")
	bifurcationCmd.Flags().IntVar(&bifSteps, "steps", 11, "number of coefficient values")
	bifurcationCmd.Flags().Float64Var(&bifTransient, "transient", 80, "ignore samples before this time")
	bifurcationCmd.Flags().IntVar(&bifState, "state", 1, "state component to record")

	return []*cobra.Command{sweepCmd, compareCmd, convergenceCmd, bifurcationCmd}
}

func rangeFlag(name string, v []float64) (lo, hi float64, err error) {
	if len(v) != 2 {
		return 0, 0, fmt.Errorf("--%s needs lo,hi, got %v", name, v)
	}
	return v[0], v[1], nil
}

func formatState(x dynamo.State) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig("competition", cmd.Flags().Changed)
	if err != nil {
		return err
	}
	span := sweep.Span{T0: cfg.T0, TMax: cfg.TMax, Dt: cfg.Dt}
	base := cfg.Params.Competition

	var jobs []sweep.Job
	var predictions []string
	if initGrid > 0 {
		comp, err := models.NewCompetition(base)
		if err != nil {
			return err
		}
		if comp.StateDim() != 2 {
			return fmt.Errorf("--init-grid needs two species, got %d", comp.StateDim())
		}
		axis := sweep.Linspace(0.05, 0.95, initGrid)
		initial := make([]dynamo.State, 0, len(axis)*len(axis))
		for _, a := range axis {
			for _, b := range axis {
				initial = append(initial, dynamo.State{a, b})
			}
		}
		jobs = sweep.GridInitial(comp, initial, span)
		pred, err := analysis.Predict(base)
		if err != nil {
			return err
		}
		for range jobs {
			predictions = append(predictions, string(pred))
		}
	} else {
		lo12, hi12, err := rangeFlag("a12", a12Range)
		if err != nil {
			return err
		}
		lo21, hi21, err := rangeFlag("a21", a21Range)
		if err != nil {
			return err
		}
		a12 := sweep.Linspace(lo12, hi12, gridSteps)
		a21 := sweep.Linspace(lo21, hi21, gridSteps)
		jobs, err = sweep.GridAlphas(base, a12, a21, cfg.InitialState(), span)
		if err != nil {
			return err
		}
		for _, a := range a12 {
			for _, b := range a21 {
				p := base
				p.Interaction = nil
				p.Alphas = []float64{a, b}
				pred, err := analysis.Predict(p)
				if err != nil {
					return err
				}
				predictions = append(predictions, string(pred))
			}
		}
	}

	fmt.Printf("sweeping %d runs over t∈[%g, %g) with dt=%g\n\n", len(jobs), span.T0, span.TMax, span.Dt)
	results, err := sweep.Run(context.Background(), jobs, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTHEORY\tOUTCOME\tFINAL")
	for i, res := range results {
		final := res.Trajectory.Final()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			res.Name, predictions[i], analysis.Classify(final, outcomeTol), formatState(final))
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := resolveConfig(model, cmd.Flags().Changed)
	if err != nil {
		return err
	}
	sys, err := models.NewRegistry().Get(cfg.Model, cfg.Params)
	if err != nil {
		return err
	}

	f := dynamo.FuncOf(sys)
	steppers := []string{"rk4", "euler"}
	jobs := make([]sweep.Job, len(steppers))
	for i, name := range steppers {
		jobs[i] = sweep.Job{
			Name: name, F: f, X0: cfg.InitialState(),
			T0: cfg.T0, TMax: cfg.TMax, Dt: cfg.Dt,
			Stepper: name,
		}
	}

	results, err := sweep.Run(context.Background(), jobs, workers)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators on %s (dt=%g, %d samples)\n\n", cfg.Model, cfg.Dt, results[0].Trajectory.Len())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL\tOUTCOME")
	for _, res := range results {
		final := res.Trajectory.Final()
		fmt.Fprintf(w, "%s\t%s\t%s\n", res.Name, formatState(final), analysis.Classify(final, outcomeTol))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	maxDiff, at := maxDifference(results[0].Trajectory, results[1].Trajectory)
	fmt.Printf("\nmax |rk4 - euler|: %.3e at t=%g\n", maxDiff, at)
	return nil
}

// maxDifference returns the largest componentwise gap between two
// trajectories on the same grid and the time at which it occurs.
func maxDifference(a, b *dynamo.Trajectory) (float64, float64) {
	maxDiff, at := 0.0, a.Time(0)
	for i := 0; i < a.Len(); i++ {
		for d := 0; d < a.Dims(); d++ {
			if diff := math.Abs(a.At(d, i) - b.At(d, i)); diff > maxDiff {
				maxDiff, at = diff, a.Time(i)
			}
		}
	}
	return maxDiff, at
}

func runConvergence(cmd *cobra.Command, args []string) error {
	if convLevels < 2 {
		return fmt.Errorf("--levels must be at least 2")
	}
	dts := make([]float64, convLevels)
	for i := range dts {
		dts[i] = convDt / math.Pow(2, float64(i))
	}

	l := models.NewLogistic(models.DefaultParams().Logistic)
	points, err := analysis.Convergence(integrator, l, convX0, convTEval, dts)
	if err != nil {
		return err
	}

	fmt.Printf("%s on logistic growth, x0=%g, error at t=%g\n\n", integrator, convX0, convTEval)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tERROR\tORDER")
	for _, p := range points {
		order := "-"
		if !math.IsNaN(p.Order) {
			order = fmt.Sprintf("%.3f", p.Order)
		}
		fmt.Fprintf(w, "%g\t%.3e\t%s\n", p.Dt, p.Error, order)
	}
	return w.Flush()
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig("competition", cmd.Flags().Changed)
	if err != nil {
		return err
	}
	lo, hi, err := rangeFlag("range", bifRange)
	if err != nil {
		return err
	}

	values := sweep.Linspace(lo, hi, bifSteps)
	span := sweep.Span{T0: cfg.T0, TMax: cfg.TMax, Dt: cfg.Dt}
	points, err := analysis.BifurcationDiagram(context.Background(), cfg.Params.Competition,
		bifIndex, values, cfg.InitialState(), span, bifTransient, bifState, workers)
	if err != nil {
		return err
	}

	name := []string{"a12", "a21"}[bifIndex]
	fmt.Printf("species %d for t >= %g while varying %s\n\n", bifState+1, bifTransient, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tVALUES\n", strings.ToUpper(name))
	for _, p := range points {
		vals := make([]string, len(p.Values))
		for i, v := range p.Values {
			vals[i] = fmt.Sprintf("%.4g", v)
		}
		if len(vals) > 6 {
			vals = append(vals[:6], fmt.Sprintf("... (%d distinct)", len(p.Values)))
		}
		fmt.Fprintf(w, "%.4g\t%s\n", p.Param, strings.Join(vals, " "))
	}
	return w.Flush()
}
