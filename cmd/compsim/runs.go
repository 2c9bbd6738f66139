package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/compsim/internal/analysis"
	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/models"
	"github.com/san-kum/compsim/internal/plotting"
	"github.com/san-kum/compsim/internal/storage"
	"github.com/san-kum/compsim/internal/tui"
	"github.com/spf13/cobra"
)

// loadRun reads the metadata and trajectory of a stored run.
func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := newStore()
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, traj, nil
}

func runLabels(meta *storage.RunMetadata, traj *dynamo.Trajectory) []string {
	if len(meta.Labels) == traj.Dims() {
		return meta.Labels
	}
	return models.DefaultLabels(traj.Dims())
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := newStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSPAN\tDT\tINTEG\tSAMPLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g)\t%g\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0, run.TMax,
			run.Dt,
			run.Integrator,
			run.Samples,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := newStore().Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", traj.Len())

	labels := runLabels(meta, traj)
	for d := 0; d < traj.Dims(); d++ {
		data := traj.Row(d)
		for i, v := range data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				data = data[:i]
				break
			}
		}
		if len(data) == 0 {
			fmt.Printf("%s: no finite samples\n\n", labels[d])
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time", labels[d])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait, err := analysis.PhasePortrait(traj, xAxis, yAxis)
	if err != nil {
		return err
	}
	if len(portrait.Points) == 0 {
		return fmt.Errorf("no finite samples to plot")
	}

	labels := runLabels(meta, traj)
	fmt.Printf("phase plane: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", labels[xAxis], labels[yAxis])

	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	fmt.Printf("\nLegend: o = start, * = end\n")
	return nil
}

func saveFigure(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Join(newStore().Dir(), meta.ID)
	}

	paths, err := plotting.SaveFigure(traj, dir, runLabels(meta, traj))
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, traj, meta.Labels)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, *meta, traj)
}

func watchRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return tui.Watch(fmt.Sprintf("%s · %s", meta.Model, meta.ID), traj, runLabels(meta, traj))
}
