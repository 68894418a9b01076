package telemetry

import "time"

// Flight event types.
const (
	FlightEventScheduled = "scheduled"
	FlightEventStarted   = "started"
	FlightEventCompleted = "completed"
	FlightEventCancelled = "cancelled"
	FlightEventArchived  = "archived"
	FlightEventUpdated   = "updated"
)

// FlightEventRow records one flight lifecycle change.
type FlightEventRow struct {
	ClusterID  string    `json:"cluster_id"`
	EventType  string    `json:"event_type"`
	FlightID   string    `json:"flight_id"`
	DisplayID  string    `json:"display_id"`
	DroneID    string    `json:"drone_id"`
	DeliveryID string    `json:"delivery_id"`
	Status     string    `json:"status"`
	Battery    float64   `json:"required_battery"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"ts"`
}

// FlightEventTableName is the GreptimeDB table for flight events.
const FlightEventTableName = "flight_events"

func (FlightEventRow) TableName() string { return FlightEventTableName }
