package main

import (
	"context"

	"droneops-dispatch/internal/config"
	"droneops-dispatch/internal/dispatch"
	"droneops-dispatch/internal/geo"
	"droneops-dispatch/internal/ops"
	"droneops-dispatch/internal/scenario"
	"droneops-dispatch/internal/sim"
	"droneops-dispatch/internal/store"
)

func openStore(ctx context.Context, c *config.Config) (*store.Store, error) {
	return store.Open(ctx, c.Storage.Backend, c.Storage.Path, c.Storage.DSN)
}

func newService(c *config.Config, st *store.Store, events ops.EventWriter) *ops.Service {
	return ops.New(st, ops.Options{
		ClusterID: c.ClusterID,
		Evaluator: dispatch.Evaluator{SafetyMargin: c.Dispatch.SafetyMargin, RequireIdle: c.Dispatch.RequireIdle},
		Depot:     geo.Point{Lat: c.Depot.Lat, Lon: c.Depot.Lon},
		Events:    events,
	})
}

func clockParams(c *config.Config) sim.ClockParams {
	return sim.ClockParams{
		ProgressStep: c.Clock.ProgressStep,
		RechargeStep: c.Clock.RechargeStep,
		AutoComplete: c.Clock.AutoComplete,
	}
}

func overview(c *config.Config) sim.Overview {
	return sim.Overview{ClusterID: c.ClusterID, TickInterval: c.Clock.Tick, Params: clockParams(c)}
}

// seed loads the configured scenario, if any.
func seed(ctx context.Context, svc *ops.Service, name string) error {
	if name == "" {
		return nil
	}
	sc, err := scenario.Resolve(name)
	if err != nil {
		return err
	}
	_, err = svc.Seed(ctx, sc)
	return err
}

func newSimulator(c *config.Config, svc *ops.Service, writer sim.TelemetryWriter) *sim.Simulator {
	return sim.NewSimulator(c.ClusterID, svc.Store(), svc.Machine(), clockParams(c), writer, c.Clock.Tick)
}
