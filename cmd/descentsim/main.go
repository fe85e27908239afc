package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/descentsim/internal/config"
	"github.com/san-kum/descentsim/internal/logging"
)

var (
	settings = viper.New()

	dt           float64
	realtime     bool
	timeout      float64
	interval     float64
	verbose      bool
	controller   string
	configFile   string
	preset       string
	noSave       bool
	stepsPerTick int
	dts          []float64
	workers      int
	svgWidth     int
	svgHeight    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "descentsim",
		Short:         "entry, descent and landing simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("data", ".descentsim", "data directory")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log JSON lines instead of console output")
	rootCmd.PersistentFlags().String("prom-file", "", "write run statistics in Prometheus text format to this file")

	settings.SetEnvPrefix("DESCENTSIM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	for _, name := range []string{"data", "log-level", "log-json", "prom-file"} {
		if err := settings.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a descent to touchdown",
		Args:  cobra.NoArgs,
		RunE:  runDescent,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace the run at wall-clock speed")
	runCmd.Flags().Float64Var(&interval, "interval", 5.0, "seconds of simulated time between status reports")
	runCmd.Flags().BoolVar(&verbose, "verbose", true, "print periodic status reports")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a descent with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "speed", 4, "simulation steps per frame")
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same descent over several time steps in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&dts, "dts", []float64{0.05, 0.1, 0.2}, "time steps to compare")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the altitude profile as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "time step in seconds")
	cmd.Flags().Float64Var(&timeout, "timeout", 600, "give up after this much simulated time")
	cmd.Flags().StringVar(&controller, "controller", "guidance", "throttle controller (guidance, none)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger() zerolog.Logger {
	return logging.New(os.Stderr, settings.GetString("log-level"), !settings.GetBool("log-json"))
}

func dataDir() string {
	return settings.GetString("data")
}

// loadConfig layers a preset, then a config file, then explicit flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Lookup("realtime") != nil && flags.Changed("realtime") {
		cfg.Realtime = realtime
	}
	if flags.Lookup("interval") != nil && flags.Changed("interval") {
		cfg.DisplayInterval = interval
	}
	if flags.Lookup("verbose") != nil && flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	return *cfg, cfg.Validate()
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ignoreInterrupt turns a cancelled run into a notice on stderr.
func ignoreInterrupt(err error, what string) error {
	if interrupted(err) {
		fmt.Fprintf(os.Stderr, "%s interrupted\n", what)
		return nil
	}
	return err
}
