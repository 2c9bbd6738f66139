// Package tui replays a stored trajectory in the terminal.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/compsim/internal/dynamo"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Yellow, asciigraph.Green, asciigraph.Magenta,
}

const (
	frameInterval = 16 * time.Millisecond
	// a full replay at speed 1 takes roughly this many frames
	framesPerReplay = 600
	graphWidth      = 70
	graphHeight     = 12
)

type player struct {
	title  string
	traj   *dynamo.Trajectory
	labels []string

	pos    float64
	rate   float64
	speed  float64
	paused bool
	done   bool

	width  int
	height int
}

func newPlayer(title string, traj *dynamo.Trajectory, labels []string) *player {
	rate := float64(traj.Len()) / framesPerReplay
	if rate < 1 {
		rate = 1
	}
	return &player{
		title:  title,
		traj:   traj,
		labels: labels,
		rate:   rate,
		speed:  1,
		width:  80,
		height: 24,
		done:   traj.Len() <= 1,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m player) Init() tea.Cmd { return tick() }

func (m player) index() int {
	i := int(m.pos)
	if i >= m.traj.Len() {
		i = m.traj.Len() - 1
	}
	return i
}

func (m player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *player) advance() {
	m.pos += m.rate * m.speed
	if int(m.pos) >= m.traj.Len()-1 {
		m.pos = float64(m.traj.Len() - 1)
		m.done = true
	}
}

func (m player) handleKey(msg tea.KeyMsg) (player, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1
	case "r":
		wasDone := m.done
		m.pos = 0
		m.done = m.traj.Len() <= 1
		if wasDone && !m.done {
			return m, tick()
		}
	}
	return m, nil
}

func (m player) label(i int) string {
	if i < len(m.labels) {
		return m.labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

// history returns each component from the first sample up to the current
// one, thinned to at most graphWidth points. The current sample is always
// the last point. Non-finite samples are dropped.
func (m player) history() [][]float64 {
	last := m.index()
	stride := (last + graphWidth - 2) / (graphWidth - 1)
	if stride < 1 {
		stride = 1
	}

	series := make([][]float64, m.traj.Dims())
	for d := range series {
		series[d] = make([]float64, 0, graphWidth)
		for i := 0; i < last; i += stride {
			if v := m.traj.At(d, i); !math.IsNaN(v) && !math.IsInf(v, 0) {
				series[d] = append(series[d], v)
			}
		}
		if v := m.traj.At(d, last); !math.IsNaN(v) && !math.IsInf(v, 0) {
			series[d] = append(series[d], v)
		}
	}
	return series
}

func (m player) View() string {
	var b strings.Builder

	statusIcon, statusText := green.Render("●"), green.Render("playing")
	switch {
	case m.done:
		statusIcon, statusText = dim.Render("■"), dim.Render("finished")
	case m.paused:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.title), statusText))

	idx := m.index()
	times := m.traj.Times()
	t0, tEnd := times[0], times[len(times)-1]
	progress := 1.0
	if tEnd > t0 {
		progress = (m.traj.Time(idx) - t0) / (tEnd - t0)
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar,
		dim.Render(fmt.Sprintf("t=%.2f/%.2f", m.traj.Time(idx), tEnd)),
		dim.Render(fmt.Sprintf("x%.2g", m.speed))))

	b.WriteString("   ")
	for d := 0; d < m.traj.Dims(); d++ {
		b.WriteString(dim.Render(m.label(d) + "="))
		b.WriteString(white.Render(fmt.Sprintf("%.4f", m.traj.At(d, idx))))
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	series := m.history()
	plottable := true
	for _, s := range series {
		if len(s) < 2 {
			plottable = false
		}
	}
	if plottable {
		colors := make([]asciigraph.AnsiColor, len(series))
		for i := range colors {
			colors[i] = seriesColors[i%len(seriesColors)]
		}
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Precision(3),
			asciigraph.SeriesColors(colors...),
		)
		b.WriteString(graph + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r restart  q quit") + "\n")
	return b.String()
}

// Watch replays traj until the user quits.
func Watch(title string, traj *dynamo.Trajectory, labels []string) error {
	p := tea.NewProgram(newPlayer(title, traj, labels), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
