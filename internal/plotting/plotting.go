// Package plotting renders trajectories as image files with gonum/plot.
package plotting

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/compsim/internal/dynamo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
	dpi           = 150
)

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.Add(plotter.NewGrid())
}

func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// TimeSeries plots every component against time. Non-finite samples are
// left out of the lines.
func TimeSeries(traj *dynamo.Trajectory, labels []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Population over time"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "population"
	stylePlot(p)

	for d := 0; d < traj.Dims(); d++ {
		pts := make(plotter.XYs, 0, traj.Len())
		for i := 0; i < traj.Len(); i++ {
			t, v := traj.Time(i), traj.At(d, i)
			if finite(t, v) {
				pts = append(pts, plotter.XY{X: t, Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", d, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(d)
		p.Add(line)
		p.Legend.Add(label(labels, d), line)
	}
	p.Legend.Top = true
	return p, nil
}

// Phase plots component y against component x, marking the initial state.
func Phase(traj *dynamo.Trajectory, x, y int, labels []string) (*plot.Plot, error) {
	if x < 0 || y < 0 || x >= traj.Dims() || y >= traj.Dims() {
		return nil, fmt.Errorf("phase plot: %w: axes (%d, %d) for %d components",
			dynamo.ErrDimensionMismatch, x, y, traj.Dims())
	}

	p := plot.New()
	p.Title.Text = "Phase plane"
	p.X.Label.Text = label(labels, x)
	p.Y.Label.Text = label(labels, y)
	stylePlot(p)

	pts := make(plotter.XYs, 0, traj.Len())
	for i := 0; i < traj.Len(); i++ {
		a, b := traj.At(x, i), traj.At(y, i)
		if finite(a, b) {
			pts = append(pts, plotter.XY{X: a, Y: b})
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("phase plot: no finite samples")
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)

	start, err := plotter.NewScatter(pts[:1])
	if err != nil {
		return nil, err
	}
	start.GlyphStyle.Shape = draw.CircleGlyph{}
	start.GlyphStyle.Radius = vg.Points(4)
	start.GlyphStyle.Color = plotutil.Color(1)
	p.Add(start)
	p.Legend.Add("start", start)

	return p, nil
}

// Save writes p to path. PNG goes through a fixed-DPI image canvas; other
// extensions (svg, pdf, eps, jpg, tiff) use plot's own format selection.
func Save(p *plot.Plot, path string, w, h vg.Length) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) != ".png" {
		return p.Save(w, h, path)
	}

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SaveFigure writes timeseries.png and, for two or more components,
// phase.png into dir. It returns the paths written.
func SaveFigure(traj *dynamo.Trajectory, dir string, labels []string) ([]string, error) {
	ts, err := TimeSeries(traj, labels)
	if err != nil {
		return nil, err
	}
	paths := []string{filepath.Join(dir, "timeseries.png")}
	if err := Save(ts, paths[0], DefaultWidth, DefaultHeight); err != nil {
		return nil, err
	}

	if traj.Dims() < 2 {
		return paths, nil
	}
	ph, err := Phase(traj, 0, 1, labels)
	if err != nil {
		return nil, err
	}
	phasePath := filepath.Join(dir, "phase.png")
	if err := Save(ph, phasePath, DefaultHeight, DefaultHeight); err != nil {
		return nil, err
	}
	return append(paths, phasePath), nil
}
