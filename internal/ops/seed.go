package ops

import (
	"context"
	"fmt"
	"time"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/logging"
	"droneops-dispatch/internal/scenario"
)

// SeedSummary counts what Seed added.
type SeedSummary struct {
	Drones     int `json:"drones"`
	Deliveries int `json:"deliveries"`
	Obstacles  int `json:"obstacles"`
	Skipped    int `json:"skipped"`
}

// Seed loads a scenario into the registry in one transaction. Entities
// whose id is already registered are skipped so a restart can seed again.
// Entries without an id get one derived from the scenario name, the kind
// and the entry position.
func (s *Service) Seed(ctx context.Context, sc *scenario.Scenario) (SeedSummary, error) {
	depot := s.depot
	if sc.Depot != nil {
		depot = *sc.Depot
	}

	prefix := sc.Name
	if prefix == "" {
		prefix = "seed"
	}
	seedID := func(id, kind string, i int) string {
		if id != "" {
			return id
		}
		return fmt.Sprintf("%s-%s-%02d", prefix, kind, i+1)
	}

	var (
		drones     []fleet.Drone
		deliveries []fleet.Delivery
		obstacles  []fleet.Obstacle
	)
	for di, entry := range sc.Drones {
		n := max(1, entry.Count)
		for i := 0; i < n; i++ {
			id := seedID(entry.ID, "drone", di)
			if entry.Count > 1 {
				base := entry.ID
				if base == "" {
					base = entry.Model
				}
				id = fmt.Sprintf("%s-%02d", base, i+1)
			}
			d, err := s.buildDrone(DroneInput{
				ID:             id,
				Model:          entry.Model,
				MaxWeightKg:    entry.MaxWeightKg,
				MaxRangeKm:     entry.MaxRangeKm,
				BatteryPercent: entry.BatteryPercent,
			}, depot)
			if err != nil {
				return SeedSummary{}, fmt.Errorf("scenario drone %q: %w", id, err)
			}
			drones = append(drones, d)
		}
	}
	for i, entry := range sc.Deliveries {
		id := seedID(entry.ID, "delivery", i)
		d, err := s.buildDelivery(DeliveryInput{ID: id, WeightKg: entry.WeightKg, Priority: entry.Priority, Pickup: entry.Pickup, Dropoff: entry.Dropoff})
		if err != nil {
			return SeedSummary{}, fmt.Errorf("scenario delivery %q: %w", id, err)
		}
		deliveries = append(deliveries, d)
	}
	for i, entry := range sc.Obstacles {
		id := seedID(entry.ID, "obstacle", i)
		o, err := s.buildObstacle(ObstacleInput{ID: id, Lat: entry.Lat, Lon: entry.Lon, RadiusKm: entry.RadiusKm})
		if err != nil {
			return SeedSummary{}, fmt.Errorf("scenario obstacle %q: %w", id, err)
		}
		obstacles = append(obstacles, o)
	}

	var sum SeedSummary
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		sum = SeedSummary{}
		for _, d := range drones {
			if _, err := reg.Drone(d.ID); err == nil {
				sum.Skipped++
				continue
			}
			if err := reg.AddDrone(d); err != nil {
				return err
			}
			sum.Drones++
		}
		for i, d := range deliveries {
			if _, err := reg.Delivery(d.ID); err == nil {
				sum.Skipped++
				continue
			}
			// keep the declared order within a priority tier
			d.CreatedAt = ev.now.Add(time.Duration(i) * time.Millisecond)
			if err := reg.AddDelivery(d); err != nil {
				return err
			}
			sum.Deliveries++
		}
		for _, o := range obstacles {
			if err := reg.AddObstacle(o); err != nil {
				if fleet.CodeOf(err) == fleet.ErrDuplicateID.Code {
					sum.Skipped++
					continue
				}
				return err
			}
			sum.Obstacles++
		}
		return nil
	})
	if err != nil {
		return SeedSummary{}, err
	}
	logging.FromContext(ctx).Info("scenario seeded", "scenario", sc.Name,
		"drones", sum.Drones, "deliveries", sum.Deliveries, "obstacles", sum.Obstacles, "skipped", sum.Skipped)
	return sum, nil
}
