package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"droneops-dispatch/internal/admin"
	"droneops-dispatch/internal/logging"
)

var (
	serveAddr      string
	servePrintOnly bool
	serveNoClock   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch API and simulation clock",
	Long:  "serve opens the registry store, seeds the configured scenario, starts the simulation clock and serves the dispatch HTTP API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		writer, cleanup, err := newWriters(cfg.Telemetry, overview(cfg), servePrintOnly)
		if err != nil {
			return err
		}
		defer cleanup()

		svc := newService(cfg, st, eventSink(writer))
		if err := seed(ctx, svc, cfg.Scenario); err != nil {
			return err
		}

		simulator := newSimulator(cfg, svc, writer)
		addr := cfg.HTTP.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		var wg sync.WaitGroup
		if !serveNoClock {
			wg.Add(1)
			go func() {
				defer wg.Done()
				simulator.Run(ctx)
			}()
		}

		log.Info("dispatch service starting", "cluster_id", cfg.ClusterID, "addr", addr, "storage", cfg.Storage.Backend)
		err = admin.NewServer(svc, simulator).Start(ctx, addr)
		stop()
		wg.Wait()
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides http.addr")
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print telemetry as JSON to STDOUT regardless of telemetry.writer")
	serveCmd.Flags().BoolVar(&serveNoClock, "no-clock", false, "Serve the API without advancing flights")
}
