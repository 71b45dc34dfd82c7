package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"diffusion-sim/internal/sim"
)

var (
	replayInput     string
	replayDelay     time.Duration
	replayFormat    string
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a JSONL record log",
	Long:  "replay feeds records and events from a log file back into GreptimeDB or STDOUT, pausing each time the year advances.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if err := checkFormat(replayFormat); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		writer, tui, cleanup, err := newWriters(cfg, sinkOptions{format: replayFormat, printOnly: replayPrintOnly})
		if err != nil {
			return err
		}
		defer cleanup()
		if err := sim.ReplayLogFile(replayInput, writer, replayDelay); err != nil {
			return err
		}
		if tui != nil {
			tui.Wait()
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to a JSONL record log")
	replayCmd.Flags().DurationVar(&replayDelay, "year-delay", 0, "Pause each time the year advances (e.g. 250ms)")
	replayCmd.Flags().StringVar(&replayFormat, "format", formatJSON, "Output format: json, color or tui")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print to STDOUT only, even when GREPTIMEDB_ENDPOINT is set")
	replayCmd.MarkFlagRequired("input")
}
