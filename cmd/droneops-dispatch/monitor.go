package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"droneops-dispatch/internal/logging"
	"droneops-dispatch/internal/sim"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the simulation clock in an interactive terminal UI",
	Long:  "monitor seeds the configured scenario and advances flights while rendering drone status and flight events in a terminal UI. Logs go to log.file or are discarded.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("monitor needs an interactive terminal")
		}
		l := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File, Out: io.Discard})
		slog.SetDefault(l)
		ctx, stop := signal.NotifyContext(logging.NewContext(cmd.Context(), l), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		tui := sim.NewTUIWriter(overview(cfg))
		defer tui.Close()
		var writer sim.TelemetryWriter = tui
		if cfg.Telemetry.File != "" {
			fw, err := sim.NewFileWriter(cfg.Telemetry.File, cfg.Telemetry.EventsFile, cfg.Telemetry.StateFile)
			if err != nil {
				return err
			}
			defer fw.Close()
			writer = sim.NewMultiWriter(tui, fw)
		}

		svc := newService(cfg, st, eventSink(writer))
		if err := seed(ctx, svc, cfg.Scenario); err != nil {
			return err
		}
		newSimulator(cfg, svc, writer).Run(ctx)
		return nil
	},
}
