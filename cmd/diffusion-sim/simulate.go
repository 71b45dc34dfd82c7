package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"diffusion-sim/internal/logging"
	"diffusion-sim/internal/scenario"
	"diffusion-sim/internal/sim"
)

var (
	simOrigin    string
	simStrength  float64
	simYears     int
	simSeed      int64
	simPolicy    string
	simFormat    string
	simPrintOnly bool
	simLogFile   string
	simCSV       string
	simInterval  time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one policy diffusion",
	Long:  "simulate builds the country network, runs the policy from its origin and publishes the yearly time series.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(simFormat); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Seed = simSeed
		}
		if flags.Changed("policy") {
			cfg.Policy = simPolicy
		}
		if flags.Changed("origin") {
			cfg.Run.Origin = simOrigin
		}
		if flags.Changed("strength") {
			cfg.Run.Strength = simStrength
		}
		if flags.Changed("years") {
			cfg.Run.Years = simYears
		}
		if cfg.Run.Strength < scenario.MinStrength || cfg.Run.Strength > scenario.MaxStrength {
			return fmt.Errorf("strength %.2f outside [%.1f, %.1f]", cfg.Run.Strength, scenario.MinStrength, scenario.MaxStrength)
		}
		if cfg.Run.Years < 0 || cfg.Run.Years > scenario.MaxYears {
			return fmt.Errorf("years %d outside [0, %d]", cfg.Run.Years, scenario.MaxYears)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)

		simulator, err := sim.NewSimulator(cfg)
		if err != nil {
			return err
		}
		writer, tui, cleanup, err := newWriters(cfg, sinkOptions{
			format:    simFormat,
			printOnly: simPrintOnly,
			logFile:   simLogFile,
			csvPath:   simCSV,
		})
		if err != nil {
			return err
		}
		res, err := simulator.Run(ctx, cfg.Run.Origin, cfg.Run.Strength, cfg.Run.Years)
		if err != nil {
			_ = cleanup()
			return err
		}
		res.Policy = cfg.Policy

		pubErr := sim.Publish(ctx, res, writer, simInterval)
		if pubErr != nil {
			log.Error("publish failed", "run_id", res.RunID, "err", pubErr)
		}
		if tui != nil && pubErr == nil {
			tui.Wait()
		}
		if err := cleanup(); err != nil {
			log.Error("closing writers", "err", err)
		}

		adopted, total := res.Reach()
		log.Info("simulation finished",
			"run_id", res.RunID,
			"origin", res.Origin,
			"years", fmt.Sprintf("%d-%d", res.BaseYear, res.EndYear()),
			"adopted", adopted,
			"total", total,
			"saturated", res.Saturated)
		return pubErr
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simOrigin, "origin", "", "Country that adopts the policy first (defaults to run.origin)")
	f.Float64Var(&simStrength, "strength", 0, "Policy strength between 0.1 and 1.0 (defaults to run.strength)")
	f.IntVar(&simYears, "years", 0, "Number of years to simulate (defaults to run.years)")
	f.Int64Var(&simSeed, "seed", 0, "Random seed; 0 seeds from the clock")
	f.StringVar(&simPolicy, "policy", "", "Policy name used in output and CSV export")
	f.StringVar(&simFormat, "format", formatAuto, "Output format: json, color or tui (default: color on a terminal, json otherwise)")
	f.BoolVar(&simPrintOnly, "print-only", false, "Print to STDOUT only, even when GREPTIMEDB_ENDPOINT is set")
	f.StringVar(&simLogFile, "log-file", "", "Path to export records and events as one JSONL stream (replayable)")
	f.StringVar(&simCSV, "csv", "", "Path to export the time series as CSV")
	f.DurationVar(&simInterval, "interval", 0, "Pause between years while publishing (e.g. 500ms)")
}
