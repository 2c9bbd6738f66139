package main

import (
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/compsim/internal/config"
	"github.com/san-kum/compsim/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

var (
	// run flags
	dt          float64
	t0          float64
	tmax        float64
	initState   []float64
	growthRates []float64
	capacities  []float64
	alphas      []float64
	integrator  string
	configFile  string
	preset      string
	saveRun     bool
	summaryFrom float64
	// phase plot axes
	xAxis int
	yAxis int
	// figure output
	outDir string
	// concurrent studies
	workers int
)

func newStore() *storage.Store {
	return storage.New(viper.GetString("data"))
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("compsim: ")

	rootCmd := &cobra.Command{
		Use:           "compsim",
		Short:         "two-species competition simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("data", ".compsim", "run directory (env COMPSIM_DATA)")
	viper.SetEnvPrefix("compsim")
	if err := viper.BindEnv("data"); err != nil {
		log.Fatal(err)
	}
	if err := viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data")); err != nil {
		log.Fatal(err)
	}

	runCmd := newRunCmd()

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase plane plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	figureCmd := &cobra.Command{
		Use:   "figure [run_id]",
		Short: "write time series and phase plane PNGs",
		Args:  cobra.ExactArgs(1),
		RunE:  saveFigure,
	}
	figureCmd.Flags().StringVar(&outDir, "out", "", "output directory (default: the run directory)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	watchCmd := &cobra.Command{
		Use:   "watch [run_id]",
		Short: "replay a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  watchRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, phaseCmd, figureCmd,
		exportCSVCmd, exportJSONCmd, watchCmd, presetsCmd)
	rootCmd.AddCommand(studyCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "step size")
	runCmd.Flags().Float64Var(&t0, "t0", config.DefaultT0, "start time")
	runCmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "end time (exclusive)")
	runCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial populations")
	runCmd.Flags().Float64SliceVar(&growthRates, "r", nil, "growth rates")
	runCmd.Flags().Float64SliceVar(&capacities, "k", nil, "carrying capacities")
	runCmd.Flags().Float64SliceVar(&alphas, "alpha", nil, "competition coefficients a12,a21")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, euler)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&saveRun, "save", true, "save the run")
	runCmd.Flags().Float64Var(&summaryFrom, "from", 0, "summarize samples with t >= from")
	return runCmd
}
