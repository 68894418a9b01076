package ops

import (
	"context"
	"strings"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
)

// DroneInput registers a drone. ID is generated when empty, battery
// defaults to 100 and the position to the depot.
type DroneInput struct {
	ID             string   `json:"id,omitempty"`
	Model          string   `json:"model"`
	MaxWeightKg    float64  `json:"maxWeightKg"`
	MaxRangeKm     float64  `json:"maxRangeKm"`
	BatteryPercent *float64 `json:"batteryPercent,omitempty"`
	Lat            *float64 `json:"currentLat,omitempty"`
	Lon            *float64 `json:"currentLon,omitempty"`
}

// DronePatch holds the drone fields a caller may change.
type DronePatch struct {
	Model          *string  `json:"model,omitempty"`
	MaxWeightKg    *float64 `json:"maxWeightKg,omitempty"`
	MaxRangeKm     *float64 `json:"maxRangeKm,omitempty"`
	BatteryPercent *float64 `json:"batteryPercent,omitempty"`
}

// RemovedDrone is the result of RemoveDrone.
type RemovedDrone struct {
	Removed  fleet.Drone            `json:"removed"`
	Archived []fleet.ArchivedFlight `json:"archivedFlights,omitempty"`
}

func (s *Service) buildDrone(in DroneInput, depot geo.Point) (fleet.Drone, error) {
	d := fleet.Drone{
		ID:             strings.TrimSpace(in.ID),
		Model:          strings.TrimSpace(in.Model),
		MaxWeightKg:    in.MaxWeightKg,
		MaxRangeKm:     in.MaxRangeKm,
		BatteryPercent: 100,
		State:          fleet.DroneIdle,
		CurrentLat:     depot.Lat,
		CurrentLon:     depot.Lon,
	}
	if d.Model == "" {
		return fleet.Drone{}, invalid("model is required")
	}
	if err := checkPositive("maxWeightKg", d.MaxWeightKg); err != nil {
		return fleet.Drone{}, err
	}
	if err := checkPositive("maxRangeKm", d.MaxRangeKm); err != nil {
		return fleet.Drone{}, err
	}
	if in.BatteryPercent != nil {
		if err := checkPercent("batteryPercent", *in.BatteryPercent); err != nil {
			return fleet.Drone{}, err
		}
		d.BatteryPercent = *in.BatteryPercent
	}
	if in.Lat != nil || in.Lon != nil {
		if in.Lat == nil || in.Lon == nil {
			return fleet.Drone{}, invalid("currentLat and currentLon must be given together")
		}
		p := geo.Point{Lat: *in.Lat, Lon: *in.Lon}
		if err := checkPoint("position", p); err != nil {
			return fleet.Drone{}, err
		}
		d.CurrentLat, d.CurrentLon = p.Lat, p.Lon
	}
	if d.ID == "" {
		d.ID = s.newID("drone")
	}
	return d, nil
}

// CreateDrone registers a drone.
func (s *Service) CreateDrone(ctx context.Context, in DroneInput) (fleet.Drone, error) {
	d, err := s.buildDrone(in, s.depot)
	if err != nil {
		return fleet.Drone{}, err
	}
	err = s.update(ctx, func(reg *fleet.Registry, _ *events) error {
		return reg.AddDrone(d)
	})
	if err != nil {
		return fleet.Drone{}, err
	}
	return d, nil
}

// UpdateDrone applies p to the drone.
func (s *Service) UpdateDrone(ctx context.Context, id string, p DronePatch) (fleet.Drone, error) {
	if p.Model != nil && strings.TrimSpace(*p.Model) == "" {
		return fleet.Drone{}, invalid("model must not be empty")
	}
	if p.MaxWeightKg != nil {
		if err := checkPositive("maxWeightKg", *p.MaxWeightKg); err != nil {
			return fleet.Drone{}, err
		}
	}
	if p.MaxRangeKm != nil {
		if err := checkPositive("maxRangeKm", *p.MaxRangeKm); err != nil {
			return fleet.Drone{}, err
		}
	}
	if p.BatteryPercent != nil {
		if err := checkPercent("batteryPercent", *p.BatteryPercent); err != nil {
			return fleet.Drone{}, err
		}
	}

	var out fleet.Drone
	err := s.update(ctx, func(reg *fleet.Registry, _ *events) error {
		d, err := reg.Drone(id)
		if err != nil {
			return err
		}
		if p.Model != nil {
			d.Model = strings.TrimSpace(*p.Model)
		}
		if p.MaxWeightKg != nil {
			d.MaxWeightKg = *p.MaxWeightKg
		}
		if p.MaxRangeKm != nil {
			d.MaxRangeKm = *p.MaxRangeKm
		}
		if p.BatteryPercent != nil {
			d.BatteryPercent = *p.BatteryPercent
		}
		out = *d
		return nil
	})
	return out, err
}

// RemoveDrone deletes a drone, archiving every flight that references it.
func (s *Service) RemoveDrone(ctx context.Context, id string) (RemovedDrone, error) {
	var out RemovedDrone
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		d, archived, err := reg.RemoveDrone(id, ev.now)
		if err != nil {
			return err
		}
		for _, a := range archived {
			ev.archived(a)
		}
		out = RemovedDrone{Removed: d, Archived: archived}
		return nil
	})
	return out, err
}

// ListDrones returns every registered drone.
func (s *Service) ListDrones(ctx context.Context) ([]fleet.Drone, error) {
	var out []fleet.Drone
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		out = reg.Drones()
		return nil
	})
	return out, err
}

// DroneStatusSnapshot returns the position, state and battery of every
// drone.
func (s *Service) DroneStatusSnapshot(ctx context.Context) ([]fleet.DroneStatus, error) {
	var out []fleet.DroneStatus
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		out = reg.DroneStatuses()
		return nil
	})
	return out, err
}
