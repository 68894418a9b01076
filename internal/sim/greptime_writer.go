package sim

import (
	"context"
	"log/slog"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"droneops-dispatch/internal/telemetry"
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes drone status, flight events and tick summaries
// to GreptimeDB via the ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client      greptimeClient
	statusTable string
	eventTable  string
	stateTable  string
}

// NewGreptimeDBWriter connects to host:port and writes into database.
func NewGreptimeDBWriter(host string, port int, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:      client,
		statusTable: telemetry.TelemetryTableName,
		eventTable:  telemetry.FlightEventTableName,
		stateTable:  telemetry.ClockStateTableName,
	}, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table, n int) error {
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	slog.Debug("greptime write", "table", name, "rows", n)
	return nil
}

// Write inserts a single drone status row.
func (w *GreptimeDBWriter) Write(row telemetry.DroneStatusRow) error {
	return w.WriteBatch([]telemetry.DroneStatusRow{row})
}

// WriteBatch inserts multiple drone status rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.DroneStatusRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.statusTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("cluster_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lon", types.FLOAT64)
	tbl.AddFieldColumn("battery", types.FLOAT64)
	tbl.AddFieldColumn("state", types.STRING)
	tbl.AddFieldColumn("health", types.STRING)
	tbl.AddFieldColumn("flight_id", types.STRING)
	tbl.AddFieldColumn("progress", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, r := range rows {
		if err := tbl.AddRow(r.ClusterID, r.DroneID, r.Lat, r.Lon, r.Battery, r.State, r.Health, r.FlightID, r.Progress, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.statusTable, tbl, len(rows))
}

// WriteFlightEvent inserts a single flight event.
func (w *GreptimeDBWriter) WriteFlightEvent(e telemetry.FlightEventRow) error {
	return w.WriteFlightEvents([]telemetry.FlightEventRow{e})
}

// WriteFlightEvents inserts multiple flight events.
func (w *GreptimeDBWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("cluster_id", types.STRING)
	tbl.AddTagColumn("event_type", types.STRING)
	tbl.AddFieldColumn("flight_id", types.STRING)
	tbl.AddFieldColumn("display_id", types.STRING)
	tbl.AddFieldColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("delivery_id", types.STRING)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddFieldColumn("required_battery", types.FLOAT64)
	tbl.AddFieldColumn("reason", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, e := range rows {
		if err := tbl.AddRow(e.ClusterID, e.EventType, e.FlightID, e.DisplayID, e.DroneID, e.DeliveryID, e.Status, e.Battery, e.Reason, e.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.eventTable, tbl, len(rows))
}

// WriteState inserts a tick summary.
func (w *GreptimeDBWriter) WriteState(row telemetry.ClockStateRow) error {
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("cluster_id", types.STRING)
	tbl.AddFieldColumn("tick", types.INT64)
	tbl.AddFieldColumn("in_progress_flights", types.INT64)
	tbl.AddFieldColumn("completed_flights", types.INT64)
	tbl.AddFieldColumn("recharging_drones", types.INT64)
	tbl.AddFieldColumn("pending_deliveries", types.INT64)
	tbl.AddFieldColumn("auto_complete", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	if err := tbl.AddRow(row.ClusterID, row.Tick, int64(row.InProgressFlights), int64(row.CompletedFlights),
		int64(row.RechargingDrones), int64(row.PendingDeliveries), row.AutoComplete, row.Timestamp); err != nil {
		return err
	}
	return w.write(w.stateTable, tbl, 1)
}
