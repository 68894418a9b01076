package ops

import (
	"context"
	"fmt"
	"strings"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
)

// ObstacleInput declares a no-fly zone. Only circles are supported.
type ObstacleInput struct {
	ID       string  `json:"id"`
	Type     string  `json:"type,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radiusKm"`
}

func (s *Service) buildObstacle(in ObstacleInput) (fleet.Obstacle, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	if kind == "" {
		kind = fleet.ObstacleCircle
	}
	if kind != fleet.ObstacleCircle {
		return fleet.Obstacle{}, fmt.Errorf("%w: unsupported type %q", fleet.ErrInvalidShape, in.Type)
	}
	if !(in.RadiusKm > 0) {
		return fleet.Obstacle{}, fmt.Errorf("%w: radiusKm must be positive", fleet.ErrInvalidShape)
	}
	if !(geo.Point{Lat: in.Lat, Lon: in.Lon}).Valid() {
		return fleet.Obstacle{}, fmt.Errorf("%w: center out of range", fleet.ErrInvalidShape)
	}
	o := fleet.Obstacle{ID: strings.TrimSpace(in.ID), Type: kind, Lat: in.Lat, Lon: in.Lon, RadiusKm: in.RadiusKm}
	if o.ID == "" {
		o.ID = s.newID("obstacle")
	}
	return o, nil
}

// CreateObstacle registers a circular no-fly zone.
func (s *Service) CreateObstacle(ctx context.Context, in ObstacleInput) (fleet.Obstacle, error) {
	o, err := s.buildObstacle(in)
	if err != nil {
		return fleet.Obstacle{}, err
	}
	err = s.update(ctx, func(reg *fleet.Registry, _ *events) error {
		return reg.AddObstacle(o)
	})
	if err != nil {
		return fleet.Obstacle{}, err
	}
	return o, nil
}

// RemoveObstacle deletes a no-fly zone.
func (s *Service) RemoveObstacle(ctx context.Context, id string) (fleet.Obstacle, error) {
	var out fleet.Obstacle
	err := s.update(ctx, func(reg *fleet.Registry, _ *events) error {
		o, err := reg.RemoveObstacle(id)
		out = o
		return err
	})
	return out, err
}

// ListObstacles returns every no-fly zone.
func (s *Service) ListObstacles(ctx context.Context) ([]fleet.Obstacle, error) {
	var out []fleet.Obstacle
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		out = reg.Obstacles()
		return nil
	})
	return out, err
}
