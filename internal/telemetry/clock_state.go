package telemetry

import "time"

// ClockStateRow summarizes one clock tick.
type ClockStateRow struct {
	ClusterID         string    `json:"cluster_id"`
	Tick              int64     `json:"tick"`
	InProgressFlights int       `json:"in_progress_flights"`
	CompletedFlights  int       `json:"completed_flights"`
	RechargingDrones  int       `json:"recharging_drones"`
	PendingDeliveries int       `json:"pending_deliveries"`
	AutoComplete      bool      `json:"auto_complete"`
	Timestamp         time.Time `json:"ts"`
}

// ClockStateTableName is the GreptimeDB table for tick summaries.
const ClockStateTableName = "clock_state"

func (ClockStateRow) TableName() string { return ClockStateTableName }
