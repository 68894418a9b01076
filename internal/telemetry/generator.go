package telemetry

import (
	"time"

	"droneops-dispatch/internal/fleet"
)

// Generator turns registry state into telemetry rows for one cluster.
type Generator struct {
	ClusterID string
}

// NewGenerator creates a new telemetry generator for a given cluster.
func NewGenerator(clusterID string) *Generator {
	return &Generator{ClusterID: clusterID}
}

// StatusRows returns one row per drone. A drone flying an active flight
// carries that flight's id and progress.
func (g *Generator) StatusRows(drones []fleet.Drone, flights []fleet.Flight, now time.Time) []DroneStatusRow {
	active := make(map[string]fleet.Flight, len(flights))
	for _, f := range flights {
		if !f.Status.Terminal() {
			active[f.DroneID] = f
		}
	}
	rows := make([]DroneStatusRow, 0, len(drones))
	for _, d := range drones {
		row := DroneStatusRow{
			ClusterID: g.ClusterID,
			DroneID:   d.ID,
			Lat:       d.CurrentLat,
			Lon:       d.CurrentLon,
			Battery:   d.BatteryPercent,
			State:     string(d.State),
			Health:    Health(d.BatteryPercent),
			Timestamp: now,
		}
		if f, ok := active[d.ID]; ok {
			row.FlightID = f.ID
			row.Progress = f.Progress
		}
		rows = append(rows, row)
	}
	return rows
}

// FlightEvent builds an event row for f.
func (g *Generator) FlightEvent(eventType string, f fleet.Flight, reason string, now time.Time) FlightEventRow {
	return FlightEventRow{
		ClusterID:  g.ClusterID,
		EventType:  eventType,
		FlightID:   f.ID,
		DisplayID:  f.DisplayID,
		DroneID:    f.DroneID,
		DeliveryID: f.DeliveryID,
		Status:     string(f.Status),
		Battery:    f.RequiredBattery,
		Reason:     reason,
		Timestamp:  now,
	}
}

// Health labels a battery level.
func Health(battery float64) string {
	switch {
	case battery <= 5:
		return HealthDepleted
	case battery <= 20:
		return HealthLowBattery
	}
	return HealthOK
}
