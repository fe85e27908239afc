package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 2)
	Title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	Label  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(14)
	Value  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	Good = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	Warn = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	Bad  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

// ProgressBar renders fraction in [0, 1] as a bar of width cells.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.8:
		return Good.Render(bar)
	case fraction > 0.4:
		return Warn.Render(bar)
	}
	return Bad.Render(bar)
}

func row(label, value string) string {
	return Label.Render(label) + Value.Render(value)
}
