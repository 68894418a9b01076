// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Clock tunes the simulation clock.
type Clock struct {
	Tick         time.Duration `yaml:"tick"`
	ProgressStep float64       `yaml:"progress_step"`
	RechargeStep float64       `yaml:"recharge_step"`
	AutoComplete bool          `yaml:"auto_complete"`
}

// Dispatch tunes the feasibility evaluator.
type Dispatch struct {
	SafetyMargin float64 `yaml:"safety_margin"`
	RequireIdle  bool    `yaml:"require_idle"`
}

// Depot is where drones without a position start.
type Depot struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Storage selects the persistence backend.
type Storage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// HTTP configures the admin API.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Telemetry selects where clock output goes.
type Telemetry struct {
	Writer           string `yaml:"writer"`
	File             string `yaml:"file"`
	EventsFile       string `yaml:"events_file"`
	StateFile        string `yaml:"state_file"`
	GreptimeEndpoint string `yaml:"greptime_endpoint"`
	GreptimeDatabase string `yaml:"greptime_database"`
}

// Config is the root configuration of the dispatch service.
type Config struct {
	ClusterID string    `yaml:"cluster_id"`
	Clock     Clock     `yaml:"clock"`
	Dispatch  Dispatch  `yaml:"dispatch"`
	Depot     Depot     `yaml:"depot"`
	Storage   Storage   `yaml:"storage"`
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
	Telemetry Telemetry `yaml:"telemetry"`
	Scenario  string    `yaml:"scenario"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ClusterID: "local",
		Clock: Clock{
			Tick:         5 * time.Second,
			ProgressStep: 0.1,
			RechargeStep: 1,
		},
		Dispatch: Dispatch{SafetyMargin: 1.2},
		Depot:    Depot{Lat: -22.9068, Lon: -43.1729},
		Storage:  Storage{Backend: "file", Path: "data/dispatch-state.json"},
		HTTP:     HTTP{Addr: ":8080"},
		Log:      Log{Level: "info", Format: "text"},
		Telemetry: Telemetry{
			Writer:           "stdout",
			GreptimeEndpoint: "localhost:4001",
			GreptimeDatabase: "public",
		},
	}
}

// Load loads YAML config and validates it against a CUE schema. Values
// missing from the file keep their defaults and environment overrides are
// applied last.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", configPath, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CLUSTER_ID, TICK_INTERVAL, STATE_PATH,
// DATABASE_URL and GREPTIMEDB_ENDPOINT.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CLUSTER_ID"); v != "" {
		c.ClusterID = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid TICK_INTERVAL %q", v)
		}
		c.Clock.Tick = d
	}
	if v := os.Getenv("STATE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DSN = v
		c.Storage.Backend = "postgres"
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Telemetry.GreptimeEndpoint = v
	}
	return nil
}

// GreptimeHostPort splits the configured GreptimeDB endpoint. The port
// defaults to 4001, the gRPC port.
func (t Telemetry) GreptimeHostPort() (string, int, error) {
	host, portStr, err := net.SplitHostPort(t.GreptimeEndpoint)
	if err != nil {
		return t.GreptimeEndpoint, 4001, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q", portStr)
	}
	return host, port, nil
}
