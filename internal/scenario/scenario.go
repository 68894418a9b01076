package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"droneops-dispatch/internal/geo"
)

// Scenario is a seed document: the fleet, the initial delivery queue and
// the no-fly zones of one operating area.
type Scenario struct {
	Name        string     `yaml:"name,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Depot       *geo.Point `yaml:"depot,omitempty"`
	Drones      []Drone    `yaml:"drones"`
	Deliveries  []Delivery `yaml:"deliveries,omitempty"`
	Obstacles   []Obstacle `yaml:"obstacles,omitempty"`
}

// Drone declares a carrier. Drones without a battery start full.
type Drone struct {
	ID             string   `yaml:"id,omitempty"`
	Model          string   `yaml:"model"`
	MaxWeightKg    float64  `yaml:"max_weight_kg"`
	MaxRangeKm     float64  `yaml:"max_range_km"`
	BatteryPercent *float64 `yaml:"battery_percent,omitempty"`
	Count          int      `yaml:"count,omitempty"`
}

// Delivery declares a pending parcel.
type Delivery struct {
	ID       string    `yaml:"id,omitempty"`
	WeightKg float64   `yaml:"weight_kg"`
	Priority string    `yaml:"priority,omitempty"`
	Pickup   geo.Point `yaml:"pickup"`
	Dropoff  geo.Point `yaml:"dropoff"`
}

// Obstacle declares a circular no-fly zone.
type Obstacle struct {
	ID       string  `yaml:"id"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	RadiusKm float64 `yaml:"radius_km"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// Resolve returns the built-in scenario called name, or loads name from disk
// when no built-in matches.
func Resolve(name string) (*Scenario, error) {
	if sc, ok := BuiltIn()[name]; ok {
		return &sc, nil
	}
	return Load(name)
}

// DroneCount returns how many drones the scenario expands to.
func (s *Scenario) DroneCount() int {
	n := 0
	for _, d := range s.Drones {
		n += max(1, d.Count)
	}
	return n
}
