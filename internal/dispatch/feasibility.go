// Feasibility evaluation for pairing a delivery with a drone
package dispatch

import (
	"fmt"
	"math"
	"slices"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
)

// DefaultSafetyMargin inflates the linear battery estimate by 20%.
const DefaultSafetyMargin = 1.2

// Candidate is a drone able to fly a given mission.
type Candidate struct {
	Drone           fleet.Drone
	RequiredBattery float64
	Feasible        bool
}

// Residual is the battery left on the drone after the mission.
func (c Candidate) Residual() float64 { return c.Drone.BatteryPercent - c.RequiredBattery }

// Evaluator decides which drones can fly a delivery.
type Evaluator struct {
	// SafetyMargin multiplies the linear consumption estimate.
	SafetyMargin float64
	// RequireIdle skips drones that are not idle.
	RequireIdle bool
}

// NewEvaluator returns an evaluator with the default safety margin.
func NewEvaluator() Evaluator {
	return Evaluator{SafetyMargin: DefaultSafetyMargin}
}

func (e Evaluator) margin() float64 {
	if e.SafetyMargin <= 0 {
		return DefaultSafetyMargin
	}
	return e.SafetyMargin
}

// RequiredBattery returns the battery percentage needed to fly distanceKm on
// a drone with the given range, rounded up and capped at 100.
func (e Evaluator) RequiredBattery(distanceKm, maxRangeKm float64) float64 {
	if maxRangeKm <= 0 {
		return 100
	}
	return math.Min(100, math.Ceil(distanceKm/maxRangeKm*100*e.margin()))
}

// Evaluate returns the feasible drones for d ranked by residual battery,
// highest first. Input order breaks ties.
func (e Evaluator) Evaluate(d fleet.Delivery, drones []fleet.Drone, obstacles []fleet.Obstacle) ([]Candidate, error) {
	var capable []fleet.Drone
	for _, dr := range drones {
		if e.RequireIdle && dr.State != fleet.DroneIdle {
			continue
		}
		if dr.MaxWeightKg >= d.WeightKg {
			capable = append(capable, dr)
		}
	}
	if len(capable) == 0 {
		return nil, fmt.Errorf("%w: %.2fkg", fleet.ErrNoCarrierCapacity, d.WeightKg)
	}

	distance := geo.DistanceKm(d.Pickup, d.Dropoff)
	var (
		out          []Candidate
		rangeLimited int
	)
	for _, dr := range capable {
		required := e.RequiredBattery(distance, dr.MaxRangeKm)
		withinRange := distance <= dr.MaxRangeKm
		if !withinRange {
			rangeLimited++
		}
		if withinRange && dr.BatteryPercent >= required {
			out = append(out, Candidate{Drone: dr, RequiredBattery: required, Feasible: true})
		}
	}
	if len(out) == 0 {
		reason := "battery"
		if rangeLimited == len(capable) {
			reason = "range"
		}
		return nil, fmt.Errorf("%w: %.3fkm (limited by %s)", fleet.ErrNoFeasibleDrone, distance, reason)
	}

	for _, o := range obstacles {
		if geo.SegmentIntersectsCircle(d.Pickup, d.Dropoff, o.Circle()) {
			return nil, fmt.Errorf("%w: obstacle %s", fleet.ErrRouteBlocked, o.ID)
		}
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch ra, rb := a.Residual(), b.Residual(); {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		return 0
	})
	return out, nil
}

// Structural reports whether any drone could carry d over its distance,
// ignoring battery and obstacles.
func (e Evaluator) Structural(d fleet.Delivery, drones []fleet.Drone) bool {
	distance := geo.DistanceKm(d.Pickup, d.Dropoff)
	for _, dr := range drones {
		if e.RequireIdle && dr.State != fleet.DroneIdle {
			continue
		}
		if dr.MaxWeightKg >= d.WeightKg && distance <= dr.MaxRangeKm {
			return true
		}
	}
	return false
}
