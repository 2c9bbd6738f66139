package main

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/compsim/internal/analysis"
	"github.com/san-kum/compsim/internal/config"
	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/integrators"
	"github.com/san-kum/compsim/internal/models"
	"github.com/san-kum/compsim/internal/storage"
	"github.com/spf13/cobra"
)

// outcomeTol is the population below which a species counts as extinct.
const outcomeTol = 1e-6

// baseConfig is the starting point for a model before presets, files and
// flags are applied.
func baseConfig(model string) *config.Config {
	cfg := config.DefaultConfig()
	if model == "" || model == cfg.Model {
		return cfg
	}
	cfg.Model = model
	if model == "logistic" {
		cfg.InitState = []float64{0.1}
		cfg.TMax = 20
	}
	return cfg
}

// resolveConfig layers preset < config file < explicit flags.
func resolveConfig(model string, changed func(string) bool) (*config.Config, error) {
	cfg := baseConfig(model)

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if model != "" && loaded.Model != model {
			return nil, fmt.Errorf("config %s is for model %s, not %s", configFile, loaded.Model, model)
		}
		cfg = loaded
	}

	if changed("dt") {
		cfg.Dt = dt
	}
	if changed("t0") {
		cfg.T0 = t0
	}
	if changed("tmax") {
		cfg.TMax = tmax
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("init") {
		cfg.InitState = append([]float64(nil), initState...)
	}

	switch cfg.Model {
	case "logistic":
		if changed("r") && len(growthRates) > 0 {
			cfg.Params.Logistic.Rate = growthRates[0]
		}
		if changed("k") && len(capacities) > 0 {
			cfg.Params.Logistic.Capacity = capacities[0]
		}
	default:
		comp := &cfg.Params.Competition
		if changed("r") {
			comp.GrowthRate = append([]float64(nil), growthRates...)
		}
		if changed("k") {
			comp.CarryingCap = append([]float64(nil), capacities...)
		}
		if changed("alpha") {
			comp.Alphas = append([]float64(nil), alphas...)
			comp.Interaction = nil
		}
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
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
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	traj, err := integrators.IntegrateWith(stepper, dynamo.FuncOf(sys), cfg.InitialState(), cfg.T0, cfg.TMax, cfg.Dt)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !traj.IsFinite() {
		log.Printf("warning: trajectory contains non-finite values (check carrying capacities)")
	}

	labels := models.LabelsFor(sys)
	summary := analysis.Summarize(traj, summaryFrom)

	runID := ""
	if saveRun {
		runID, err = newStore().Save(storage.RunMetadata{
			Model:      cfg.Model,
			T0:         cfg.T0,
			TMax:       cfg.TMax,
			Dt:         cfg.Dt,
			Integrator: stepper.Name(),
			Params:     cfg.ParamMap(),
			InitState:  cfg.InitState,
			Labels:     labels,
			Summary:    summary.Metrics(labels),
		}, traj)
		if err != nil {
			return err
		}
	}

	printSummary(cfg, sys, traj, summary, labels, elapsed, runID)
	return nil
}

func printSummary(cfg *config.Config, sys dynamo.System, traj *dynamo.Trajectory, s analysis.Summary, labels []string, elapsed time.Duration, runID string) {
	fmt.Printf("\n %s %s\n", green.Render("●"), cyan.Render(fmt.Sprintf("%s · %s · dt=%g · t∈[%g, %g)",
		cfg.Model, cfg.Integrator, cfg.Dt, cfg.T0, cfg.TMax)))
	fmt.Printf(" %s\n", dim.Render(fmt.Sprintf("%d samples in %v", traj.Len(), elapsed.Round(time.Microsecond))))
	if runID != "" {
		fmt.Printf(" %s %s\n", dim.Render("run id"), white.Render(runID))
	}

	fmt.Println()
	for i, d := range s.Dims {
		fmt.Printf("   %-10s %s %s  %s %s  %s %s\n",
			labels[i],
			dim.Render("final"), white.Render(fmt.Sprintf("%.6g", d.Final)),
			dim.Render("mean"), fmt.Sprintf("%.4g", d.Mean),
			dim.Render("range"), fmt.Sprintf("[%.4g, %.4g]", d.Min, d.Max))
	}

	outcome := analysis.Classify(traj.Final(), outcomeTol)
	style := green
	if outcome.Kind == analysis.Diverged {
		style = yellow
	}
	fmt.Printf("\n   %s %s\n", dim.Render("outcome"), style.Render(outcome.String()))

	comp, ok := sys.(*models.Competition)
	if !ok || comp.StateDim() != 2 {
		return
	}
	if pred, err := analysis.Predict(comp.Params()); err == nil {
		fmt.Printf("   %s %s\n", dim.Render("theory "), string(pred))
	}
	if eq, err := comp.Equilibrium(); err == nil && eq[0] > 0 && eq[1] > 0 {
		fmt.Printf("   %s (%.4g, %.4g)\n", dim.Render("interior equilibrium"), eq[0], eq[1])
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	modelNames := models.NewRegistry().List()
	if len(args) > 0 {
		modelNames = args
	}

	for _, model := range modelNames {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, name := range presets {
			p := config.GetPreset(model, name)
			params := p.ParamMap()
			keys := make([]string, 0, len(params))
			for k := range params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%g", k, params[k])
			}
			fmt.Printf("  %-12s %s %s\n", name,
				dim.Render(fmt.Sprintf("x0=%v tmax=%g", p.InitState, p.TMax)),
				dim.Render(strings.Join(parts, " ")))
		}
	}
	return nil
}
