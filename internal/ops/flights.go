package ops

import (
	"context"
	"time"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/telemetry"
)

// FlightPatch overrides a flight's status and/or scheduled time.
type FlightPatch struct {
	Status      string     `json:"status,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// ScheduleFlight assigns a drone to deliveryID, or to the next schedulable
// pending delivery when deliveryID is empty.
func (s *Service) ScheduleFlight(ctx context.Context, deliveryID string) (fleet.Flight, error) {
	var out fleet.Flight
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		f, err := s.dispatcher.Schedule(reg, deliveryID)
		if err != nil {
			return err
		}
		for _, a := range reg.History() {
			if a.DeliveryID == f.DeliveryID && a.RemovedReason == fleet.ReasonSuperseded+f.ID {
				ev.archived(a)
			}
		}
		ev.add(telemetry.FlightEventScheduled, f, "")
		out = f
		return nil
	})
	return out, err
}

// AdvanceFlight moves a flight to its next status.
func (s *Service) AdvanceFlight(ctx context.Context, id string) (fleet.Flight, error) {
	var out fleet.Flight
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		f, err := s.machine.Advance(reg, id)
		if err != nil {
			return err
		}
		ev.add(eventFor(f.Status), f, "")
		out = f
		return nil
	})
	return out, err
}

// UpdateFlight forces a flight's status or scheduled time.
func (s *Service) UpdateFlight(ctx context.Context, id string, p FlightPatch) (fleet.Flight, error) {
	var out fleet.Flight
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		before, err := reg.Flight(id)
		if err != nil {
			return err
		}
		prev := before.Status
		f, err := s.machine.SetStatus(reg, id, p.Status, p.ScheduledAt)
		if err != nil {
			return err
		}
		eventType := telemetry.FlightEventUpdated
		if f.Status != prev {
			eventType = eventFor(f.Status)
		}
		ev.add(eventType, f, "")
		out = f
		return nil
	})
	return out, err
}

// RemoveFlight archives a flight. Its battery is returned to the drone and
// the delivery goes back to pending.
func (s *Service) RemoveFlight(ctx context.Context, id string) (fleet.ArchivedFlight, error) {
	var out fleet.ArchivedFlight
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		a, err := s.machine.Remove(reg, id)
		if err != nil {
			return err
		}
		ev.archived(a)
		out = a
		return nil
	})
	return out, err
}

// ListFlights returns the active flights.
func (s *Service) ListFlights(ctx context.Context) ([]fleet.Flight, error) {
	var out []fleet.Flight
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		out = reg.Flights()
		return nil
	})
	return out, err
}

// FlightHistory returns archived flights, oldest first.
func (s *Service) FlightHistory(ctx context.Context) ([]fleet.ArchivedFlight, error) {
	var out []fleet.ArchivedFlight
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		out = reg.History()
		return nil
	})
	return out, err
}

func eventFor(st fleet.FlightStatus) string {
	switch st {
	case fleet.FlightInProgress:
		return telemetry.FlightEventStarted
	case fleet.FlightCompleted:
		return telemetry.FlightEventCompleted
	case fleet.FlightCancelled:
		return telemetry.FlightEventCancelled
	}
	return telemetry.FlightEventScheduled
}
