// Package report renders descent status and results for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/vehicle"
)

const (
	// EntryAltitude anchors the progress bar.
	EntryAltitude = 125_000.0
	barWidth      = 30
)

// StatusPanel renders a single status snapshot.
func StatusPanel(t vehicle.Telemetry) string {
	var b strings.Builder

	b.WriteString(Title.Render(fmt.Sprintf("T+%.1fs  %s", t.Time, t.Stage)))
	b.WriteString("\n")
	b.WriteString(row("Altitude", fmt.Sprintf("%.0f m (%.2f km)", t.Altitude, t.Altitude/1000)) + "\n")
	b.WriteString(row("Velocity", fmt.Sprintf("%.1f m/s (Mach %.2f)", t.Velocity, t.Mach)) + "\n")
	b.WriteString(row("Mass", fmt.Sprintf("%.1f kg", t.Mass)) + "\n")
	if t.Stage == vehicle.PoweredDescent {
		b.WriteString(row("Fuel", fmt.Sprintf("%.1f kg (%.1f%%)", t.Fuel, t.FuelPercent)) + "\n")
	}
	b.WriteString(row("Dyn pressure", fmt.Sprintf("%.1f Pa", t.DynamicPressure)) + "\n")
	b.WriteString(row("Density", fmt.Sprintf("%.6f kg/m³", t.Density)) + "\n")

	progress := 1 - t.Altitude/EntryAltitude
	progress = math.Max(0, math.Min(1, progress))
	b.WriteString(Label.Render("Progress") + ProgressBar(progress, barWidth) + fmt.Sprintf(" %.1f%%", progress*100))

	return Panel.Render(b.String())
}

// Verdict describes the touchdown speed against the safe limit.
func Verdict(sum *sim.Summary) string {
	switch sum.Outcome {
	case sim.OutcomeLanded:
		return Good.Render(fmt.Sprintf("%.2f m/s, within the %.0f m/s limit", sum.FinalVelocity, vehicle.SafeLandingVelocity))
	case sim.OutcomeCrashed:
		return Bad.Render(fmt.Sprintf("%.2f m/s, exceeds the %.0f m/s limit", sum.FinalVelocity, vehicle.SafeLandingVelocity))
	}
	return Warn.Render(fmt.Sprintf("%.2f m/s, did not reach the surface", sum.FinalVelocity))
}

func outcomeLine(o sim.Outcome) string {
	switch o {
	case sim.OutcomeLanded:
		return Good.Render("LANDED")
	case sim.OutcomeCrashed:
		return Bad.Render("CRASHED")
	case sim.OutcomeTimeout:
		return Warn.Render("TIMED OUT")
	case sim.OutcomeInterrupted:
		return Warn.Render("INTERRUPTED")
	}
	return Subtle.Render(strings.ToUpper(o.String()))
}

// FinalReport renders the end-of-run summary.
func FinalReport(sum *sim.Summary) string {
	var b strings.Builder

	b.WriteString(Title.Render("Mission Report") + "  " + outcomeLine(sum.Outcome) + "\n\n")
	b.WriteString(row("Touchdown", "") + Verdict(sum) + "\n")
	b.WriteString(row("Total time", fmt.Sprintf("%.1f s (%d steps)", sum.Time, sum.Steps)) + "\n")
	b.WriteString(row("Peak load", fmt.Sprintf("%.2f g", sum.PeakGLoad)) + "\n")
	b.WriteString(row("Peak heating", fmt.Sprintf("%.3g", sum.PeakHeating)) + "\n")
	b.WriteString(row("Final mass", fmt.Sprintf("%.1f kg", sum.FinalMass)) + "\n")

	fuelPct := 0.0
	if sum.FuelMax > 0 {
		fuelPct = sum.FinalFuel / sum.FuelMax * 100
	}
	b.WriteString(row("Fuel left", fmt.Sprintf("%.1f kg (%.1f%%)", sum.FinalFuel, fuelPct)) + "\n")

	if len(sum.Transitions) > 0 {
		b.WriteString("\n" + Subtle.Render("Stage transitions") + "\n")
		for _, ev := range sum.Transitions {
			b.WriteString(fmt.Sprintf("  %7.1fs  %-16s %9.0f m %9.1f m/s\n", ev.Time, ev.Stage, ev.Altitude, ev.Velocity))
		}
	}

	if len(sum.Metrics) > 0 {
		b.WriteString("\n" + Subtle.Render("Metrics") + "\n")
		for _, name := range sortedKeys(sum.Metrics) {
			b.WriteString(fmt.Sprintf("  %-16s %.4g\n", name, sum.Metrics[name]))
		}
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Printer writes status panels to w as the simulator reports them.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) OnStatus(t vehicle.Telemetry) {
	fmt.Fprintln(p.w, StatusPanel(t))
}

func (p *Printer) Final(sum *sim.Summary) {
	fmt.Fprintln(p.w, FinalReport(sum))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
