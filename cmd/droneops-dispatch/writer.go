package main

import (
	"fmt"

	"droneops-dispatch/internal/config"
	"droneops-dispatch/internal/ops"
	"droneops-dispatch/internal/sim"
)

// newWriters sets up the clock output described by t. printOnly forces
// JSON on STDOUT. When t.File is set every row is also logged to disk.
// The returned cleanup closes any files that were opened.
func newWriters(t config.Telemetry, ov sim.Overview, printOnly bool) (sim.TelemetryWriter, func(), error) {
	cleanup := func() {}

	writer, err := baseWriter(t, ov, printOnly)
	if err != nil {
		return nil, nil, err
	}
	if t.File == "" {
		if t.Writer == "file" && !printOnly {
			return nil, nil, fmt.Errorf("telemetry writer %q needs telemetry.file", t.Writer)
		}
		return writer, cleanup, nil
	}

	fw, err := sim.NewFileWriter(t.File, t.EventsFile, t.StateFile)
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { fw.Close() }
	if writer == nil {
		return fw, cleanup, nil
	}
	return sim.NewMultiWriter(writer, fw), cleanup, nil
}

// baseWriter chooses the primary writer. It returns nil for "none" and "file".
func baseWriter(t config.Telemetry, ov sim.Overview, printOnly bool) (sim.TelemetryWriter, error) {
	if printOnly {
		return sim.NewJSONStdoutWriter(), nil
	}
	switch t.Writer {
	case "", "stdout":
		return sim.NewJSONStdoutWriter(), nil
	case "color":
		return sim.NewColorStdoutWriter(&ov), nil
	case "none", "file":
		return nil, nil
	case "greptimedb":
		host, port, err := t.GreptimeHostPort()
		if err != nil {
			return nil, err
		}
		return sim.NewGreptimeDBWriter(host, port, t.GreptimeDatabase)
	default:
		return nil, fmt.Errorf("unknown telemetry writer %q", t.Writer)
	}
}

// eventSink returns w as a flight event sink when it can take events.
func eventSink(w sim.TelemetryWriter) ops.EventWriter {
	if ew, ok := w.(ops.EventWriter); ok {
		return ew
	}
	return nil
}
