package sim

import "droneops-dispatch/internal/telemetry"

// MultiWriter fans out rows to multiple writers.
type MultiWriter struct {
	telewriters  []TelemetryWriter
	eventwriters []FlightEventWriter
	statewriters []StateWriter
}

// NewMultiWriter creates a new MultiWriter. Telemetry writers that also
// handle flight events or tick summaries receive those too.
func NewMultiWriter(tws ...TelemetryWriter) *MultiWriter {
	mw := &MultiWriter{telewriters: tws}
	for _, w := range tws {
		if ew, ok := w.(FlightEventWriter); ok {
			mw.eventwriters = append(mw.eventwriters, ew)
		}
		if sw, ok := w.(StateWriter); ok {
			mw.statewriters = append(mw.statewriters, sw)
		}
	}
	return mw
}

// Write sends a drone status row to all writers.
func (mw *MultiWriter) Write(row telemetry.DroneStatusRow) error {
	for _, w := range mw.telewriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.DroneStatusRow) error {
	for _, w := range mw.telewriters {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFlightEvent sends a flight event to all event writers.
func (mw *MultiWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	for _, w := range mw.eventwriters {
		if err := w.WriteFlightEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteFlightEvents sends multiple flight events, using batch if supported.
func (mw *MultiWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, w := range mw.eventwriters {
		if err := writeFlightEvents(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteState sends a tick summary to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.ClockStateRow) error {
	for _, w := range mw.statewriters {
		if err := w.WriteState(row); err != nil {
			return err
		}
	}
	return nil
}
