package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"droneops-dispatch/internal/telemetry"
)

// JSONStdoutWriter prints rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a drone status row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.DroneStatusRow) error {
	return w.emit(row)
}

// WriteBatch outputs multiple drone status rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.DroneStatusRow) error {
	for _, r := range rows {
		if err := w.emit(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteFlightEvent outputs a flight event in JSON format.
func (w *JSONStdoutWriter) WriteFlightEvent(e telemetry.FlightEventRow) error {
	return w.emit(e)
}

// WriteState outputs a tick summary in JSON format.
func (w *JSONStdoutWriter) WriteState(row telemetry.ClockStateRow) error {
	return w.emit(row)
}
