package main

import (
	"github.com/spf13/cobra"

	"droneops-dispatch/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a drone status log file",
	Long:  "replay feeds drone status rows from a log written by the file writer back into the configured telemetry writer or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := cfg.Telemetry
		// Replaying into the log being read would truncate it.
		t.File, t.EventsFile, t.StateFile = "", "", ""
		if t.Writer == "file" || t.Writer == "none" {
			t.Writer = "stdout"
		}
		writer, cleanup, err := newWriters(t, overview(cfg), replayPrintOnly)
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(cmd.Context(), replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to drone status log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of the configured writer")
	_ = replayCmd.MarkFlagRequired("input")
}
