package ops

import (
	"context"
	"fmt"
	"strings"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
	"droneops-dispatch/internal/telemetry"
)

// DeliveryInput registers a delivery.
type DeliveryInput struct {
	ID       string    `json:"id,omitempty"`
	WeightKg float64   `json:"weightKg"`
	Priority string    `json:"priority,omitempty"`
	Pickup   geo.Point `json:"pickup"`
	Dropoff  geo.Point `json:"dropoff"`
}

// DeliveryPatch holds the delivery fields a caller may change while the
// delivery is pending.
type DeliveryPatch struct {
	WeightKg *float64   `json:"weightKg,omitempty"`
	Priority *string    `json:"priority,omitempty"`
	Pickup   *geo.Point `json:"pickup,omitempty"`
	Dropoff  *geo.Point `json:"dropoff,omitempty"`
}

// Cancellation is the result of CancelDelivery.
type Cancellation struct {
	Delivery       fleet.Delivery        `json:"delivery"`
	ArchivedFlight *fleet.ArchivedFlight `json:"archivedFlight,omitempty"`
}

func (s *Service) buildDelivery(in DeliveryInput) (fleet.Delivery, error) {
	if err := checkPositive("weightKg", in.WeightKg); err != nil {
		return fleet.Delivery{}, err
	}
	prio, err := fleet.ParsePriority(in.Priority)
	if err != nil {
		return fleet.Delivery{}, err
	}
	if err := checkPoint("pickup", in.Pickup); err != nil {
		return fleet.Delivery{}, err
	}
	if err := checkPoint("dropoff", in.Dropoff); err != nil {
		return fleet.Delivery{}, err
	}
	d := fleet.Delivery{
		ID:       strings.TrimSpace(in.ID),
		WeightKg: in.WeightKg,
		Priority: prio,
		Pickup:   in.Pickup,
		Dropoff:  in.Dropoff,
		Status:   fleet.DeliveryPending,
	}
	if d.ID == "" {
		d.ID = s.newID("delivery")
	}
	return d, nil
}

// CreateDelivery queues a pending delivery.
func (s *Service) CreateDelivery(ctx context.Context, in DeliveryInput) (fleet.Delivery, error) {
	d, err := s.buildDelivery(in)
	if err != nil {
		return fleet.Delivery{}, err
	}
	err = s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		d.CreatedAt = ev.now
		return reg.AddDelivery(d)
	})
	if err != nil {
		return fleet.Delivery{}, err
	}
	return d, nil
}

// UpdateDelivery applies p to a pending delivery.
func (s *Service) UpdateDelivery(ctx context.Context, id string, p DeliveryPatch) (fleet.Delivery, error) {
	var prio fleet.Priority
	if p.WeightKg != nil {
		if err := checkPositive("weightKg", *p.WeightKg); err != nil {
			return fleet.Delivery{}, err
		}
	}
	if p.Priority != nil {
		var err error
		if prio, err = fleet.ParsePriority(*p.Priority); err != nil {
			return fleet.Delivery{}, err
		}
	}
	if p.Pickup != nil {
		if err := checkPoint("pickup", *p.Pickup); err != nil {
			return fleet.Delivery{}, err
		}
	}
	if p.Dropoff != nil {
		if err := checkPoint("dropoff", *p.Dropoff); err != nil {
			return fleet.Delivery{}, err
		}
	}

	var out fleet.Delivery
	err := s.update(ctx, func(reg *fleet.Registry, _ *events) error {
		d, err := reg.Delivery(id)
		if err != nil {
			return err
		}
		if d.Status != fleet.DeliveryPending {
			return fmt.Errorf("%w: %s is %s", fleet.ErrDeliveryNotPending, id, d.Status)
		}
		if p.WeightKg != nil {
			d.WeightKg = *p.WeightKg
		}
		if p.Priority != nil {
			d.Priority = prio
		}
		if p.Pickup != nil {
			d.Pickup = *p.Pickup
		}
		if p.Dropoff != nil {
			d.Dropoff = *p.Dropoff
		}
		out = *d
		return nil
	})
	return out, err
}

// RemoveDelivery deletes a pending delivery with no flight.
func (s *Service) RemoveDelivery(ctx context.Context, id string) (fleet.Delivery, error) {
	var out fleet.Delivery
	err := s.update(ctx, func(reg *fleet.Registry, _ *events) error {
		d, err := reg.RemoveDelivery(id)
		out = d
		return err
	})
	return out, err
}

// CancelDelivery cancels a delivery and archives its flight, if any.
func (s *Service) CancelDelivery(ctx context.Context, id string) (Cancellation, error) {
	var out Cancellation
	err := s.update(ctx, func(reg *fleet.Registry, ev *events) error {
		d, archived, err := reg.CancelDelivery(id, ev.now)
		if err != nil {
			return err
		}
		if archived != nil {
			ev.add(telemetry.FlightEventCancelled, archived.Flight, archived.RemovedReason)
			ev.archived(*archived)
		}
		out = Cancellation{Delivery: d, ArchivedFlight: archived}
		return nil
	})
	return out, err
}

// ListDeliveries returns the deliveries, optionally filtered by status.
// The in-transit aliases all match "in_transit".
func (s *Service) ListDeliveries(ctx context.Context, status string) ([]fleet.Delivery, error) {
	want := fleet.DeliveryStatus(strings.ToLower(strings.TrimSpace(status)))
	var out []fleet.Delivery
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		for _, d := range reg.Deliveries() {
			switch {
			case want == "":
			case want.IsInTransit() && d.Status.IsInTransit():
			case d.Status == want:
			default:
				continue
			}
			out = append(out, d)
		}
		return nil
	})
	return out, err
}

// PendingQueue returns pending deliveries in scheduling order.
func (s *Service) PendingQueue(ctx context.Context) ([]fleet.Delivery, error) {
	var out []fleet.Delivery
	err := s.store.View(ctx, func(reg *fleet.Registry) error {
		out = reg.ListPending()
		return nil
	})
	return out, err
}
