// Grafana dashboard rendering for the dispatch telemetry tables
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"droneops-dispatch/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

var templateFiles = []string{
	"templates/dispatch-telemetry.json.tmpl",
	"templates/dispatch-state.json.tmpl",
}

// Tables names the sources the dashboards query.
type Tables struct {
	Status string
	Events string
	State  string
}

// DefaultTables returns the table names the writers use.
func DefaultTables() Tables {
	return Tables{
		Status: telemetry.TelemetryTableName,
		Events: telemetry.FlightEventTableName,
		State:  telemetry.ClockStateTableName,
	}
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
// Datasource uids come from GREPTIMEDB_DATASOURCE_UID and POSTGRES_DATASOURCE_UID.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	tables := DefaultTables()
	for _, tplName := range templateFiles {
		t, err := template.New(filepath.Base(tplName)).Funcs(funcMap).ParseFS(templates, tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(tplName), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
