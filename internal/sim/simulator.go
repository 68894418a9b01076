// Simulation clock driving flights and emitting telemetry
package sim

import (
	"context"
	"sync"
	"time"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/flight"
	"droneops-dispatch/internal/store"
	"droneops-dispatch/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.DroneStatusRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.DroneStatusRow) error
}

// Simulator is the recurring clock. Every tick runs as one store update so
// it never interleaves with API operations.
type Simulator struct {
	clusterID    string
	store        *store.Store
	machine      *flight.Machine
	params       ClockParams
	teleGen      *telemetry.Generator
	writer       TelemetryWriter
	eventWriter  FlightEventWriter
	stateWriter  StateWriter
	tickInterval time.Duration
	now          func() time.Time

	mu    sync.Mutex
	ticks int64
	last  []telemetry.DroneStatusRow
}

// NewSimulator creates a clock over st. writer may be nil.
func NewSimulator(clusterID string, st *store.Store, m *flight.Machine, params ClockParams, writer TelemetryWriter, tickInterval time.Duration) *Simulator {
	if m == nil {
		m = flight.NewMachine()
	}
	if tickInterval <= 0 {
		tickInterval = 5 * time.Second
	}
	s := &Simulator{
		clusterID:    clusterID,
		store:        st,
		machine:      m,
		params:       params.withDefaults(),
		teleGen:      telemetry.NewGenerator(clusterID),
		writer:       writer,
		tickInterval: tickInterval,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if ew, ok := writer.(FlightEventWriter); ok {
		s.eventWriter = ew
	}
	if sw, ok := writer.(StateWriter); ok {
		s.stateWriter = sw
	}
	return s
}

// SetFlightEventWriter overrides where completion events go.
func (s *Simulator) SetFlightEventWriter(w FlightEventWriter) { s.eventWriter = w }

// SetStateWriter overrides where tick summaries go.
func (s *Simulator) SetStateWriter(w StateWriter) { s.stateWriter = w }

// Params returns the clock parameters in use.
func (s *Simulator) Params() ClockParams { return s.params }

// TelemetrySnapshot returns the rows emitted by the last tick.
func (s *Simulator) TelemetrySnapshot() []telemetry.DroneStatusRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.DroneStatusRow, len(s.last))
	copy(out, s.last)
	return out
}

// Ticks returns how many ticks have completed.
func (s *Simulator) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

type tickOutput struct {
	rows   []telemetry.DroneStatusRow
	events []telemetry.FlightEventRow
	state  telemetry.ClockStateRow
}

// advance runs one Step inside the store's critical section.
func (s *Simulator) advance(ctx context.Context) (tickOutput, error) {
	var out tickOutput
	err := s.store.Update(ctx, func(reg *fleet.Registry) error {
		res, err := Step(reg, s.machine, s.params)
		if err != nil {
			return err
		}
		now := s.now()
		out.rows = s.teleGen.StatusRows(reg.Drones(), reg.Flights(), now)
		for _, f := range res.Completed {
			out.events = append(out.events, s.teleGen.FlightEvent(telemetry.FlightEventCompleted, f, "auto-complete", now))
		}
		out.state = telemetry.ClockStateRow{
			ClusterID:         s.clusterID,
			InProgressFlights: res.InProgress,
			CompletedFlights:  len(res.Completed),
			RechargingDrones:  res.Recharging,
			PendingDeliveries: len(reg.ListPending()),
			AutoComplete:      s.params.AutoComplete,
			Timestamp:         now,
		}
		return nil
	})
	return out, err
}
