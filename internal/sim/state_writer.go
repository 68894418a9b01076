package sim

import "droneops-dispatch/internal/telemetry"

// StateWriter handles per-tick clock summaries.
type StateWriter interface {
	WriteState(telemetry.ClockStateRow) error
}
