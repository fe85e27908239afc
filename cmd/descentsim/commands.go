package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/descentsim/internal/config"
	"github.com/san-kum/descentsim/internal/experiment"
	"github.com/san-kum/descentsim/internal/export"
	"github.com/san-kum/descentsim/internal/report"
	"github.com/san-kum/descentsim/internal/runstats"
	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/storage"
	"github.com/san-kum/descentsim/internal/sweep"
	"github.com/san-kum/descentsim/internal/viz"
)

func runDescent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), logger); err != nil {
		return err
	}
	printer := report.NewPrinter(os.Stdout)
	exp.Simulator().AddReporter(printer)

	fmt.Printf("entry interface: %.0f m at %.0f m/s, dt=%gs\n", cfg.InitState.Altitude, cfg.InitState.Velocity, cfg.Dt)

	sum, err := exp.Run(cmd.Context())
	if err != nil && !interrupted(err) {
		return err
	}
	printer.Final(sum)

	if err := recordStats(cfg.Controller, sum); err != nil {
		return err
	}
	return save(cfg, sum)
}

func recordStats(controller string, sums ...*sim.Summary) error {
	path := settings.GetString("prom-file")
	if path == "" {
		return nil
	}
	c := runstats.New()
	for _, sum := range sums {
		c.Record(controller, sum)
	}
	if err := c.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write run statistics: %w", err)
	}
	return nil
}

func save(cfg config.Config, sum *sim.Summary) error {
	if noSave {
		return nil
	}
	st := storage.New(dataDir())
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, sum)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Realtime = false
	cfg.Verbose = false

	// the TUI owns the terminal
	logger := newLogger()
	if logger.GetLevel() < zerolog.ErrorLevel {
		logger = logger.Level(zerolog.ErrorLevel)
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), logger); err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(exp.Simulator(), stepsPerTick, cfg.Timeout), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if err != nil && !interrupted(err) && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	m, ok := final.(viz.Model)
	if !ok || m.Summary() == nil {
		return nil
	}
	fmt.Println(report.FinalReport(m.Summary()))
	if err := recordStats(cfg.Controller, m.Summary()); err != nil {
		return err
	}
	return save(cfg, m.Summary())
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s := sweep.New(experiment.NewRegistry(), newLogger())
	if workers > 0 {
		s = s.WithWorkers(workers)
	}

	results, err := s.Run(cmd.Context(), sweep.TimeSteps(cfg, dts))
	if err != nil {
		return ignoreInterrupt(err, "sweep")
	}

	sums := make([]*sim.Summary, 0, len(results))
	for _, r := range results {
		sums = append(sums, r.Summary)
	}
	if err := recordStats(cfg.Controller, sums...); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tOUTCOME\tTIME\tSTEPS\tTOUCHDOWN\tFUEL\tPEAK G")
	for _, r := range results {
		sum := r.Summary
		fmt.Fprintf(w, "%g\t%s\t%.1fs\t%d\t%.2f m/s\t%.1f kg\t%.2f\n",
			r.Config.Dt,
			sum.Outcome,
			sum.Time,
			sum.Steps,
			sum.FinalVelocity,
			sum.FinalFuel,
			sum.PeakGLoad,
		)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tOUTCOME\tDURATION\tDT\tCTRL\tTOUCHDOWN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%.4fs\t%s\t%.2f m/s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Time,
			run.Config.Dt,
			run.Config.Controller,
			run.FinalVelocity,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	telemetry, err := st.LoadTelemetry(runID)
	if err != nil {
		return err
	}
	if len(telemetry) == 0 {
		return fmt.Errorf("no data to plot")
	}

	transitions, err := st.LoadTransitions(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("outcome: %s after %.1fs\n", meta.Outcome, meta.Time)
	fmt.Printf("samples: %d\n\n", len(telemetry))

	series := []struct {
		caption string
		value   func(sim.TelemetrySample) float64
	}{
		{"altitude (km)", func(s sim.TelemetrySample) float64 { return s.Altitude / 1000 }},
		{"velocity (m/s)", func(s sim.TelemetrySample) float64 { return s.Velocity }},
		{"fuel (kg)", func(s sim.TelemetrySample) float64 { return s.Fuel }},
		{"thrust (kN)", func(s sim.TelemetrySample) float64 { return s.Thrust / 1000 }},
	}

	for _, sr := range series {
		data := make([]float64, len(telemetry))
		for i, s := range telemetry {
			data[i] = sr.value(s)
		}
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption(sr.caption)))
		fmt.Println()
	}

	fmt.Println("stage transitions:")
	for _, ev := range transitions {
		fmt.Printf("  %7.1fs  %-16s %9.0f m %9.1f m/s\n", ev.Time, ev.Stage, ev.Altitude, ev.Velocity)
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir()).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir()).ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	telemetry, err := st.LoadTelemetry(runID)
	if err != nil {
		return err
	}
	transitions, err := st.LoadTransitions(runID)
	if err != nil {
		return err
	}

	return export.ProfileSVG(os.Stdout, telemetry, transitions, svgWidth, svgHeight)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCTRL\tDT\tVELOCITY\tMASS\tFUEL")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%.0f m/s\t%.0f kg\t%.0f kg\n",
			name, cfg.Controller, cfg.Dt, cfg.InitState.Velocity, cfg.InitState.Mass, cfg.InitState.Fuel)
	}
	return w.Flush()
}
