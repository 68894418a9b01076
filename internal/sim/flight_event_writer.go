package sim

import "droneops-dispatch/internal/telemetry"

// FlightEventWriter handles flight lifecycle events.
type FlightEventWriter interface {
	WriteFlightEvent(telemetry.FlightEventRow) error
}

// Optional: writers may support batch mode for flight events.
type batchFlightEventWriter interface {
	WriteFlightEvents([]telemetry.FlightEventRow) error
}

func writeFlightEvents(w FlightEventWriter, rows []telemetry.FlightEventRow) error {
	if bw, ok := w.(batchFlightEventWriter); ok {
		return bw.WriteFlightEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteFlightEvent(r); err != nil {
			return err
		}
	}
	return nil
}
