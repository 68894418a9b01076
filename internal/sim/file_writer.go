package sim

import (
	"encoding/json"
	"os"

	"droneops-dispatch/internal/telemetry"
)

// FileWriter writes drone status, flight events and tick summaries to JSONL files.
type FileWriter struct {
	teleFile  *os.File
	eventFile *os.File
	stateFile *os.File
	teleEnc   *json.Encoder
	eventEnc  *json.Encoder
	stateEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath or statePath may be empty to skip those logs.
func NewFileWriter(telemetryPath, eventPath, statePath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single drone status row.
func (f *FileWriter) Write(row telemetry.DroneStatusRow) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple drone status rows.
func (f *FileWriter) WriteBatch(rows []telemetry.DroneStatusRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteFlightEvent logs a flight event, if enabled.
func (f *FileWriter) WriteFlightEvent(e telemetry.FlightEventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteFlightEvents logs multiple flight events.
func (f *FileWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, r := range rows {
		if err := f.WriteFlightEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState logs a tick summary, if enabled.
func (f *FileWriter) WriteState(row telemetry.ClockStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.teleFile, f.eventFile, f.stateFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
