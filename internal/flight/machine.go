// Package flight drives flights through their lifecycle and applies the
// matching side effects on drones and deliveries.
package flight

import (
	"fmt"
	"time"

	"droneops-dispatch/internal/fleet"
)

// Machine applies flight transitions to a registry.
type Machine struct {
	Now func() time.Time
}

// NewMachine returns a machine using the wall clock.
func NewMachine() *Machine {
	return &Machine{}
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// resolve returns the flight together with its drone and delivery.
func resolve(reg *fleet.Registry, id string) (*fleet.Flight, *fleet.Drone, *fleet.Delivery, error) {
	f, err := reg.Flight(id)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := reg.Drone(f.DroneID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: flight %s references %v", fleet.ErrIntegrity, id, err)
	}
	del, err := reg.Delivery(f.DeliveryID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: flight %s references %v", fleet.ErrIntegrity, id, err)
	}
	return f, d, del, nil
}

// Advance moves a flight one step forward: scheduled to in_progress, then
// in_progress to completed.
func (m *Machine) Advance(reg *fleet.Registry, id string) (fleet.Flight, error) {
	f, d, del, err := resolve(reg, id)
	if err != nil {
		return fleet.Flight{}, err
	}
	now := m.now()
	switch f.Status {
	case fleet.FlightScheduled:
		start(f, d, now)
	case fleet.FlightInProgress:
		complete(reg, f, d, del, now)
	default:
		return fleet.Flight{}, fmt.Errorf("%w: flight %s is %s", fleet.ErrInvalidTransition, id, f.Status)
	}
	return *f, nil
}

// Complete finishes an in-progress flight. The clock uses it when
// auto-complete is enabled.
func (m *Machine) Complete(reg *fleet.Registry, id string) (fleet.Flight, error) {
	f, d, del, err := resolve(reg, id)
	if err != nil {
		return fleet.Flight{}, err
	}
	if f.Status != fleet.FlightInProgress {
		return fleet.Flight{}, fmt.Errorf("%w: flight %s is %s", fleet.ErrInvalidTransition, id, f.Status)
	}
	complete(reg, f, d, del, m.now())
	return *f, nil
}

// SetStatus forces a flight into status. An optional scheduledAt replaces
// the scheduled time. Terminal flights cannot be moved anywhere else.
func (m *Machine) SetStatus(reg *fleet.Registry, id, status string, scheduledAt *time.Time) (fleet.Flight, error) {
	var target fleet.FlightStatus
	if status != "" {
		st, ok := fleet.ParseFlightStatus(status)
		if !ok {
			return fleet.Flight{}, fmt.Errorf("%w: %q", fleet.ErrInvalidStatus, status)
		}
		target = st
	}
	f, d, del, err := resolve(reg, id)
	if err != nil {
		return fleet.Flight{}, err
	}
	if target != "" && target != f.Status && f.Status.Terminal() {
		return fleet.Flight{}, fmt.Errorf("%w: flight %s is %s", fleet.ErrInvalidTransition, id, f.Status)
	}

	now := m.now()
	if target != "" && target != f.Status {
		switch target {
		case fleet.FlightScheduled:
			f.Status = fleet.FlightScheduled
			f.StartedAt = nil
			f.Progress = 0
			d.State = fleet.DroneLoading
		case fleet.FlightInProgress:
			start(f, d, now)
		case fleet.FlightCompleted:
			complete(reg, f, d, del, now)
		case fleet.FlightCancelled:
			cancel(reg, f, d, del)
		}
	}
	if scheduledAt != nil {
		f.ScheduledAt = scheduledAt.UTC()
	}
	return *f, nil
}

// Remove archives a flight with a manual-delete reason. Unfinished flights
// return their battery and the delivery goes back to pending.
func (m *Machine) Remove(reg *fleet.Registry, id string) (fleet.ArchivedFlight, error) {
	if _, _, _, err := resolve(reg, id); err != nil {
		return fleet.ArchivedFlight{}, err
	}
	return reg.ArchiveFlight(id, fleet.ReasonManualDelete+id, m.now())
}

func start(f *fleet.Flight, d *fleet.Drone, now time.Time) {
	f.Status = fleet.FlightInProgress
	f.StartedAt = &now
	d.State = fleet.DroneInFlight
}

func complete(reg *fleet.Registry, f *fleet.Flight, d *fleet.Drone, del *fleet.Delivery, now time.Time) {
	f.Status = fleet.FlightCompleted
	f.Progress = 1
	f.CompletedAt = &now
	if f.StartedAt == nil {
		f.StartedAt = &now
	}
	del.Status = fleet.DeliveryDelivered
	d.CurrentLat = del.Dropoff.Lat
	d.CurrentLon = del.Dropoff.Lon
	if reg.BusyFlights(d.ID) == 0 {
		d.State = fleet.DroneIdle
	}
}

func cancel(reg *fleet.Registry, f *fleet.Flight, d *fleet.Drone, del *fleet.Delivery) {
	f.Status = fleet.FlightCancelled
	d.BatteryPercent = min(100, d.BatteryPercent+f.RequiredBattery)
	if del.Status.IsInTransit() {
		del.Status = fleet.DeliveryPending
	}
	if reg.BusyFlights(d.ID) == 0 {
		d.State = fleet.DroneIdle
	}
}
