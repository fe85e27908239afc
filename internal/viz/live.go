package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/descentsim/internal/report"
	"github.com/san-kum/descentsim/internal/sim"
)

const (
	frameInterval   = time.Second / 30
	historyCapacity = 600
	maxStepsPerTick = 256
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// history keeps the most recent samples for the charts.
type history struct {
	altitude []float64
	velocity []float64
}

func (h *history) OnStep(s sim.TelemetrySample) {
	h.altitude = appendCapped(h.altitude, s.Altitude/1000)
	h.velocity = appendCapped(h.velocity, s.Velocity)
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[len(xs)-historyCapacity:]
	}
	return xs
}

// Model drives a simulator from Bubble Tea ticks. Pacing comes from the
// frame rate, so the simulator should not be realtime.
type Model struct {
	sim          *sim.Simulator
	hist         *history
	stepsPerTick int
	timeout      float64
	running      bool
	summary      *sim.Summary
}

func NewModel(s *sim.Simulator, stepsPerTick int, timeout float64) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	h := &history{
		altitude: make([]float64, 0, historyCapacity),
		velocity: make([]float64, 0, historyCapacity),
	}
	s.AddObserver(h)

	return Model{
		sim:          s,
		hist:         h,
		stepsPerTick: stepsPerTick,
		timeout:      timeout,
		running:      true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Summary is nil until the descent ends.
func (m Model) Summary() *sim.Summary { return m.summary }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
	case TickMsg:
		if m.summary != nil {
			return m, nil
		}
		if m.running {
			m.advance()
		}
		if m.summary != nil {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		m.sim.Step()
		v := m.sim.Vehicle()
		if m.sim.Done() {
			m.summary = m.sim.Summary()
			return
		}
		if v.TimeElapsed > m.timeout {
			m.summary = m.sim.Summary()
			m.summary.Outcome = sim.OutcomeTimeout
			return
		}
	}
}

func (m Model) View() string {
	var s strings.Builder

	status := "DESCENDING"
	switch {
	case m.summary != nil:
		status = strings.ToUpper(m.summary.Outcome.String())
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("DESCENT  %s  x%d", status, m.stepsPerTick)) + "\n")

	left := report.StatusPanel(m.sim.Vehicle().Telemetry())
	if m.summary != nil {
		left = report.FinalReport(m.summary)
	}

	right := ""
	if len(m.hist.altitude) > 1 {
		alt := asciigraph.Plot(m.hist.altitude, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Altitude (km)"))
		vel := asciigraph.Plot(m.hist.velocity, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Velocity (m/s)"))
		right = graphStyle.Render(alt + "\n\n" + vel)
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	s.WriteString(helpStyle.Render("\nSP:Pause  +/-:Speed  Q:Quit"))
	return s.String()
}
