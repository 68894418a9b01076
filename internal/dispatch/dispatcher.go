package dispatch

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
)

// Dispatcher turns pending deliveries into scheduled flights.
type Dispatcher struct {
	Evaluator Evaluator
	Now       func() time.Time
	NewID     func() string
}

// NewDispatcher returns a dispatcher using the wall clock and random ids.
func NewDispatcher(ev Evaluator) *Dispatcher {
	return &Dispatcher{Evaluator: ev}
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d *Dispatcher) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return "flight-" + uuid.NewString()
}

// Schedule assigns a drone to a delivery and commits the new flight to reg.
// With an empty deliveryID the highest priority pending delivery that some
// drone could structurally carry is chosen.
func (d *Dispatcher) Schedule(reg *fleet.Registry, deliveryID string) (fleet.Flight, error) {
	delivery, err := d.pick(reg, deliveryID)
	if err != nil {
		return fleet.Flight{}, err
	}

	candidates, err := d.Evaluator.Evaluate(delivery, reg.Drones(), reg.Obstacles())
	if err != nil {
		return fleet.Flight{}, err
	}
	best := candidates[0]

	now := d.now()
	order := reg.State().NextOrderNumber
	f := fleet.Flight{
		ID:              d.newID(),
		DeliveryID:      delivery.ID,
		DroneID:         best.Drone.ID,
		DistanceKm:      round3(geo.DistanceKm(delivery.Pickup, delivery.Dropoff)),
		RequiredBattery: best.RequiredBattery,
		Status:          fleet.FlightScheduled,
		ScheduledAt:     now,
		OrderNumber:     order,
		DisplayID:       DisplayID(order),
	}
	if err := reg.CommitFlight(f, best.RequiredBattery, fleet.DeliveryInTransit, now); err != nil {
		return fleet.Flight{}, err
	}
	reg.NextOrderNumber()
	return f, nil
}

func (d *Dispatcher) pick(reg *fleet.Registry, deliveryID string) (fleet.Delivery, error) {
	if deliveryID != "" {
		delivery, err := reg.Delivery(deliveryID)
		if err != nil {
			return fleet.Delivery{}, err
		}
		if delivery.Status != fleet.DeliveryPending {
			return fleet.Delivery{}, fmt.Errorf("%w: %s is %s", fleet.ErrDeliveryNotPending, deliveryID, delivery.Status)
		}
		return *delivery, nil
	}
	for _, p := range reg.ListPending() {
		if d.Evaluator.Structural(p, reg.Drones()) {
			return p, nil
		}
	}
	return fleet.Delivery{}, fleet.ErrNoSchedulableDelivery
}

// DisplayID formats an order number as a flight label.
func DisplayID(order int64) string {
	return fmt.Sprintf("FL-%04d", order)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
