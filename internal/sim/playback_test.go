package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"droneops-dispatch/internal/telemetry"
)

func encodeRows(t *testing.T, rows []telemetry.DroneStatusRow) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return &buf
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.DroneStatusRow{
		{ClusterID: "c1", DroneID: "d1", Timestamp: time.Unix(0, 0)},
		{ClusterID: "c1", DroneID: "d2", Timestamp: time.Unix(1, 0)},
	}
	cw := &MockWriter{}
	if err := ReplayLog(context.Background(), encodeRows(t, rows), cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.Rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.Rows))
	}
	for i, r := range rows {
		if cw.Rows[i].DroneID != r.DroneID {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.Rows[i], r)
		}
	}
}

func TestReplayLogSpeed(t *testing.T) {
	rows := []telemetry.DroneStatusRow{
		{DroneID: "d1", Timestamp: time.Unix(0, 0)},
		{DroneID: "d1", Timestamp: time.Unix(0, int64(200*time.Millisecond))},
	}
	start := time.Now()
	if err := ReplayLog(context.Background(), encodeRows(t, rows), &MockWriter{}, 10); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if el := time.Since(start); el > 150*time.Millisecond {
		t.Fatalf("speed not applied, took %v", el)
	}
}

func TestReplayLogCancelled(t *testing.T) {
	rows := []telemetry.DroneStatusRow{
		{DroneID: "d1", Timestamp: time.Unix(0, 0)},
		{DroneID: "d1", Timestamp: time.Unix(60, 0)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw := &MockWriter{}
	if err := ReplayLog(ctx, encodeRows(t, rows), cw, 1); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(cw.Rows) != 1 {
		t.Fatalf("expected first row before wait, got %d", len(cw.Rows))
	}
}

func TestReplayLogBadInput(t *testing.T) {
	if err := ReplayLog(context.Background(), strings.NewReader("{not json"), &MockWriter{}, 0); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestReplayLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	buf := encodeRows(t, []telemetry.DroneStatusRow{{DroneID: "d1"}})
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cw := &MockWriter{}
	if err := ReplayLogFile(context.Background(), path, cw, 0); err != nil {
		t.Fatalf("ReplayLogFile: %v", err)
	}
	if len(cw.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(cw.Rows))
	}
	if err := ReplayLogFile(context.Background(), filepath.Join(t.TempDir(), "nope"), cw, 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
