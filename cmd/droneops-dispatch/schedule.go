package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var scheduleDelivery string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule one flight and print it",
	Long:  "schedule assigns the best feasible drone to the highest priority pending delivery, or to --delivery when given, and prints the new flight as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		t := cfg.Telemetry
		// Keep STDOUT for the flight itself.
		if t.Writer == "" || t.Writer == "stdout" || t.Writer == "color" {
			t.Writer = "none"
		}
		writer, cleanup, err := newWriters(t, overview(cfg), false)
		if err != nil {
			return err
		}
		defer cleanup()

		svc := newService(cfg, st, eventSink(writer))
		f, err := svc.ScheduleFlight(ctx, scheduleDelivery)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleDelivery, "delivery", "", "Delivery id to schedule instead of the queue head")
}
