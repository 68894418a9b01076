// Package ops exposes the dispatch operations to transports. Every mutating
// call runs as one store update and emits flight events once it has been
// saved.
package ops

import (
	"context"
	"time"

	"github.com/google/uuid"

	"droneops-dispatch/internal/dispatch"
	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/flight"
	"droneops-dispatch/internal/geo"
	"droneops-dispatch/internal/logging"
	"droneops-dispatch/internal/store"
	"droneops-dispatch/internal/telemetry"
)

// EventWriter receives flight lifecycle events.
type EventWriter interface {
	WriteFlightEvent(telemetry.FlightEventRow) error
}

// Options configure a Service. Zero values fall back to defaults.
type Options struct {
	ClusterID string
	Evaluator dispatch.Evaluator
	// Depot is where drones registered without a position are parked.
	Depot  geo.Point
	Events EventWriter
	Now    func() time.Time
	// NewID returns a fresh id for an entity kind such as "drone".
	NewID func(kind string) string
}

// Service implements the dispatch operations on top of a Store.
type Service struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	machine    *flight.Machine
	gen        *telemetry.Generator
	events     EventWriter
	depot      geo.Point
	now        func() time.Time
	newID      func(kind string) string
}

// New builds a Service over st.
func New(st *store.Store, opts Options) *Service {
	s := &Service{
		store:  st,
		gen:    telemetry.NewGenerator(opts.ClusterID),
		events: opts.Events,
		depot:  opts.Depot,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = func(kind string) string { return kind + "-" + uuid.NewString() }
	}
	ev := opts.Evaluator
	if ev.SafetyMargin <= 0 {
		ev.SafetyMargin = dispatch.DefaultSafetyMargin
	}
	s.dispatcher = &dispatch.Dispatcher{
		Evaluator: ev,
		Now:       s.now,
		NewID:     func() string { return s.newID("flight") },
	}
	s.machine = &flight.Machine{Now: s.now}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store { return s.store }

// Machine returns the flight state machine used by the service.
func (s *Service) Machine() *flight.Machine { return s.machine }

// update runs fn in one store transaction and emits the events it
// collected when the transaction committed.
func (s *Service) update(ctx context.Context, fn func(reg *fleet.Registry, ev *events) error) error {
	var ev events
	err := s.store.Update(ctx, func(reg *fleet.Registry) error {
		ev = events{gen: s.gen, now: s.now()}
		return fn(reg, &ev)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ev.rows)
	return nil
}

func (s *Service) emit(ctx context.Context, rows []telemetry.FlightEventRow) {
	if s.events == nil {
		return
	}
	log := logging.FromContext(ctx)
	for _, row := range rows {
		if err := s.events.WriteFlightEvent(row); err != nil {
			log.Error("flight event write failed", "flight_id", row.FlightID, "event", row.EventType, "err", err)
		}
	}
}

type events struct {
	gen  *telemetry.Generator
	now  time.Time
	rows []telemetry.FlightEventRow
}

func (e *events) add(eventType string, f fleet.Flight, reason string) {
	e.rows = append(e.rows, e.gen.FlightEvent(eventType, f, reason, e.now))
}

func (e *events) archived(a fleet.ArchivedFlight) {
	e.add(telemetry.FlightEventArchived, a.Flight, a.RemovedReason)
}
