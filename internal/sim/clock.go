package sim

import (
	"fmt"
	"math"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/flight"
	"droneops-dispatch/internal/geo"
)

// Default clock parameters.
const (
	DefaultProgressStep = 0.1
	DefaultRechargeStep = 1.0
)

// ClockParams tune one clock tick.
type ClockParams struct {
	// ProgressStep is added to every in-progress flight's progress.
	ProgressStep float64
	// RechargeStep is added to the battery of idle drones.
	RechargeStep float64
	// AutoComplete completes flights whose progress reaches 1.
	AutoComplete bool
}

func (p ClockParams) withDefaults() ClockParams {
	if p.ProgressStep <= 0 {
		p.ProgressStep = DefaultProgressStep
	}
	if p.RechargeStep <= 0 {
		p.RechargeStep = DefaultRechargeStep
	}
	return p
}

// StepResult reports what a tick changed.
type StepResult struct {
	InProgress int
	Recharging int
	Started    []fleet.Flight
	Completed  []fleet.Flight
}

// Step advances the registry by one tick. Idle drones recharge first so a
// drone that lands during this tick does not also recharge in it.
func Step(reg *fleet.Registry, m *flight.Machine, p ClockParams) (StepResult, error) {
	p = p.withDefaults()
	var res StepResult

	drones := reg.Drones()
	for i := range drones {
		d := &drones[i]
		if d.State != fleet.DroneIdle || d.BatteryPercent >= 100 {
			continue
		}
		next := min(100, d.BatteryPercent+p.RechargeStep)
		if next > d.BatteryPercent {
			d.BatteryPercent = next
			res.Recharging++
		}
	}

	var arrived []string
	flights := reg.Flights()
	for i := range flights {
		f := &flights[i]
		if f.Status != fleet.FlightInProgress {
			continue
		}
		d, err := reg.Drone(f.DroneID)
		if err != nil {
			return StepResult{}, fmt.Errorf("%w: flight %s references %v", fleet.ErrIntegrity, f.ID, err)
		}
		del, err := reg.Delivery(f.DeliveryID)
		if err != nil {
			return StepResult{}, fmt.Errorf("%w: flight %s references %v", fleet.ErrIntegrity, f.ID, err)
		}
		f.Progress = min(1, math.Round((f.Progress+p.ProgressStep)*1e9)/1e9)
		pos := geo.Lerp(del.Pickup, del.Dropoff, f.Progress)
		d.CurrentLat, d.CurrentLon = pos.Lat, pos.Lon
		res.InProgress++
		if f.Progress >= 1 {
			arrived = append(arrived, f.ID)
		}
	}

	if p.AutoComplete {
		for _, id := range arrived {
			f, err := m.Complete(reg, id)
			if err != nil {
				return StepResult{}, err
			}
			res.Completed = append(res.Completed, f)
		}
	}
	return res, nil
}
