package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/compsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D is one state component plotted against another.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait extracts the (xIdx, yIdx) projection of a trajectory.
// Non-finite samples are skipped.
func PhasePortrait(traj *dynamo.Trajectory, xIdx, yIdx int) (*PhasePortrait2D, error) {
	if xIdx < 0 || yIdx < 0 || xIdx >= traj.Dims() || yIdx >= traj.Dims() {
		return nil, fmt.Errorf("phase portrait: %w: axes (%d, %d) for %d components",
			dynamo.ErrDimensionMismatch, xIdx, yIdx, traj.Dims())
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, traj.Len()),
	}
	for i := 0; i < traj.Len(); i++ {
		x, y := traj.At(xIdx, i), traj.At(yIdx, i)
		if isFinite(x) && isFinite(y) {
			portrait.Points = append(portrait.Points, Point{X: x, Y: y})
		}
	}
	return portrait, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PhasePortraitToASCII draws the portrait on a width x height character grid.
// The first point is marked 'o' and the last '*'.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(p Point) (int, int) {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	// axes where zero is visible
	if minX <= 0 && minX+rangeX >= 0 {
		_, col := cell(Point{X: 0, Y: minY})
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && minY+rangeY >= 0 {
		row, _ := cell(Point{X: minX, Y: 0})
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		row, col := cell(p)
		canvas[row][col] = '•'
	}
	row, col := cell(portrait.Points[0])
	canvas[row][col] = 'o'
	row, col = cell(portrait.Points[len(portrait.Points)-1])
	canvas[row][col] = '*'

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
