package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reliefops-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayFormat    string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a move log file",
	Long:  "replay feeds move rows from a log file (plain or .zst) back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writers, err := newWriters(writerOptions{printOnly: replayPrintOnly, format: replayFormat})
		if err != nil {
			return err
		}
		defer writers.Close()
		return sim.ReplayLogFile(replayInput, writers.Writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to move log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().StringVar(&replayFormat, "format", formatJSON, "STDOUT format: json or color")
	replayCmd.MarkFlagRequired("input")
}
