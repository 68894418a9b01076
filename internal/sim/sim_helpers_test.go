package sim

import (
	"testing"
	"time"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
	"droneops-dispatch/internal/telemetry"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// MockWriter collects telemetry rows for validation
type MockWriter struct {
	Rows []telemetry.DroneStatusRow
}

func (w *MockWriter) Write(row telemetry.DroneStatusRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

type MockFlightEventWriter struct {
	Events []telemetry.FlightEventRow
}

func (w *MockFlightEventWriter) WriteFlightEvent(e telemetry.FlightEventRow) error {
	w.Events = append(w.Events, e)
	return nil
}

// flyingState has d1 flying f1 for p1 and d2 idle at half battery.
func flyingState(t *testing.T) *fleet.State {
	t.Helper()
	s := fleet.NewState()
	started := t0
	s.Drones = []fleet.Drone{
		{ID: "d1", MaxWeightKg: 5, MaxRangeKm: 50, BatteryPercent: 90, State: fleet.DroneInFlight, CurrentLat: -22.9, CurrentLon: -43.2},
		{ID: "d2", MaxWeightKg: 5, MaxRangeKm: 50, BatteryPercent: 50, State: fleet.DroneIdle, CurrentLat: -22.9, CurrentLon: -43.2},
	}
	s.Deliveries = []fleet.Delivery{{
		ID: "p1", WeightKg: 1, Priority: fleet.PriorityNormal,
		Pickup:  geo.Point{Lat: -22.9, Lon: -43.2},
		Dropoff: geo.Point{Lat: -23.0, Lon: -43.3},
		Status:  fleet.DeliveryInTransit, CreatedAt: t0,
	}}
	s.Flights = []fleet.Flight{{
		ID: "f1", DeliveryID: "p1", DroneID: "d1", DistanceKm: 15, RequiredBattery: 30,
		Status: fleet.FlightInProgress, ScheduledAt: t0, StartedAt: &started, OrderNumber: 1, DisplayID: "FL-0001",
	}}
	s.NextOrderNumber = 2
	return s
}
