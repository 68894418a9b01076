// Telemetry rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// DroneStatusRow is one drone snapshot taken by the clock.
type DroneStatusRow struct {
	ClusterID string    `json:"cluster_id"`          // TAG
	DroneID   string    `json:"drone_id"`            // TAG
	Lat       float64   `json:"lat"`                 // FIELD
	Lon       float64   `json:"lon"`                 // FIELD
	Battery   float64   `json:"battery"`             // FIELD
	State     string    `json:"state"`               // FIELD
	Health    string    `json:"health"`              // FIELD
	FlightID  string    `json:"flight_id,omitempty"` // FIELD
	Progress  float64   `json:"progress"`            // FIELD
	Timestamp time.Time `json:"ts"`                  // TIME INDEX
}

// TelemetryTableName holds the table name used when writing drone status
// rows to GreptimeDB. It defaults to "drone_status" and can be overridden
// via the GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "drone_status"
}()

func (DroneStatusRow) TableName() string {
	return TelemetryTableName
}

// Battery health labels.
const (
	HealthOK         = "ok"
	HealthLowBattery = "low_battery"
	HealthDepleted   = "depleted"
)
