package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFormats(t *testing.T) {
	var text, js bytes.Buffer
	New(Options{Out: &text}).Info("hello", "drone_id", "d1")
	New(Options{Out: &js, Format: "json"}).Info("hello", "drone_id", "d1")

	if !strings.Contains(text.String(), "msg=hello") || !strings.Contains(text.String(), "drone_id=d1") {
		t.Fatalf("unexpected text output %q", text.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(js.Bytes(), &rec); err != nil {
		t.Fatalf("json output not decodable: %v", err)
	}
	if rec["msg"] != "hello" || rec["drone_id"] != "d1" {
		t.Fatalf("unexpected json record %v", rec)
	}
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Out: &buf, Level: "warn"})
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level not applied: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.log")
	New(Options{File: path}).Info("to file")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("log file missing record: %q", data)
	}
}

func TestContextCarrier(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
	l := New(Options{Out: &bytes.Buffer{}})
	if FromContext(NewContext(context.Background(), l)) != l {
		t.Fatal("logger not carried")
	}
}
