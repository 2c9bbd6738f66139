package plotting

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/integrators"
	"github.com/san-kum/compsim/internal/models"
)

func competitionRun(t *testing.T) *dynamo.Trajectory {
	t.Helper()
	comp, err := models.NewCompetition(models.DefaultParams().Competition)
	if err != nil {
		t.Fatal(err)
	}
	traj, err := integrators.Integrate(comp.Func(), dynamo.State{0.47, 0.35}, 0, 20, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	return traj
}

func TestSaveFigure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fig")
	paths, err := SaveFigure(competitionRun(t), dir, []string{"Species 1", "Species 2"})
	if err != nil {
		t.Fatalf("save figure failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestSaveFigure_SingleComponent(t *testing.T) {
	l := models.NewLogistic(models.LogisticParams{Rate: 1, Capacity: 1})
	traj, err := integrators.Integrate(l.Func(), dynamo.State{0.1}, 0, 10, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	paths, err := SaveFigure(traj, t.TempDir(), l.Labels())
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "timeseries.png" {
		t.Errorf("expected only timeseries.png, got %v", paths)
	}
}

func TestSave_SVG(t *testing.T) {
	p, err := TimeSeries(competitionRun(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ts.svg")
	if err := Save(p, path, DefaultWidth, DefaultHeight); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func TestTimeSeries_SkipsNonFinite(t *testing.T) {
	traj, err := dynamo.FromColumns([]float64{0, 1, 2}, []dynamo.State{{1}, {math.NaN()}, {3}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := TimeSeries(traj, nil); err != nil {
		t.Errorf("expected non-finite samples to be skipped, got %v", err)
	}
}

func TestPhase_Errors(t *testing.T) {
	traj := competitionRun(t)
	if _, err := Phase(traj, 0, 3, nil); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	nan, _ := dynamo.FromColumns([]float64{0}, []dynamo.State{{math.NaN(), 1}})
	if _, err := Phase(nan, 0, 1, nil); err == nil {
		t.Error("expected error without finite samples")
	}
}
