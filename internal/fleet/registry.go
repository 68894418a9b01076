package fleet

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Archive reasons. Reasons built from a prefix carry the acting id after it.
const (
	ReasonDeliveryCancelled  = "delivery-cancelled"
	ReasonDroneDeletedPrefix = "drone-deleted:"
	ReasonManualDelete       = "manual-delete:"
	ReasonSuperseded         = "superseded:"
)

// Registry provides invariant-preserving access to one State document. It is
// not safe for concurrent use; callers hold it for the duration of a single
// operation inside the store's critical section.
type Registry struct {
	state *State
}

// NewRegistry wraps s, normalizing it first.
func NewRegistry(s *State) *Registry {
	if s == nil {
		s = NewState()
	}
	s.Normalize()
	return &Registry{state: s}
}

// State returns the underlying document.
func (r *Registry) State() *State { return r.state }

// Drones returns all drones. The slice must not be modified.
func (r *Registry) Drones() []Drone { return r.state.Drones }

// Deliveries returns all deliveries. The slice must not be modified.
func (r *Registry) Deliveries() []Delivery { return r.state.Deliveries }

// Flights returns all non-archived flights. The slice must not be modified.
func (r *Registry) Flights() []Flight { return r.state.Flights }

// History returns the archived flights in archive order.
func (r *Registry) History() []ArchivedFlight { return r.state.FlightHistory }

// Obstacles returns all obstacles. The slice must not be modified.
func (r *Registry) Obstacles() []Obstacle { return r.state.Obstacles }

// Drone returns a mutable pointer to the drone with the given id.
func (r *Registry) Drone(id string) (*Drone, error) {
	for i := range r.state.Drones {
		if r.state.Drones[i].ID == id {
			return &r.state.Drones[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDroneNotFound, id)
}

// Delivery returns a mutable pointer to the delivery with the given id.
func (r *Registry) Delivery(id string) (*Delivery, error) {
	for i := range r.state.Deliveries {
		if r.state.Deliveries[i].ID == id {
			return &r.state.Deliveries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDeliveryNotFound, id)
}

// Flight returns a mutable pointer to the active flight with the given id.
func (r *Registry) Flight(id string) (*Flight, error) {
	for i := range r.state.Flights {
		if r.state.Flights[i].ID == id {
			return &r.state.Flights[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFlightNotFound, id)
}

// ActiveFlightForDelivery returns the non-archived flight owning the delivery.
func (r *Registry) ActiveFlightForDelivery(deliveryID string) (*Flight, bool) {
	for i := range r.state.Flights {
		if r.state.Flights[i].DeliveryID == deliveryID {
			return &r.state.Flights[i], true
		}
	}
	return nil, false
}

// BusyFlights counts the non-terminal flights assigned to a drone.
func (r *Registry) BusyFlights(droneID string) int {
	n := 0
	for _, f := range r.state.Flights {
		if f.DroneID == droneID && !f.Status.Terminal() {
			n++
		}
	}
	return n
}

// ListPending returns pending deliveries ordered by priority weight
// (highest first) and then by creation time.
func (r *Registry) ListPending() []Delivery {
	var out []Delivery
	for _, d := range r.state.Deliveries {
		if d.Status == DeliveryPending {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b Delivery) int {
		if c := cmp.Compare(b.Priority.Weight(), a.Priority.Weight()); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// NextOrderNumber reserves and returns the next flight order number.
func (r *Registry) NextOrderNumber() int64 {
	n := r.state.NextOrderNumber
	r.state.NextOrderNumber++
	return n
}

// AddDrone registers d. The id must be unique.
func (r *Registry) AddDrone(d Drone) error {
	if _, err := r.Drone(d.ID); err == nil {
		return fmt.Errorf("%w: drone %s", ErrDuplicateID, d.ID)
	}
	r.state.Drones = append(r.state.Drones, d)
	return nil
}

// AddDelivery registers d. The id must be unique.
func (r *Registry) AddDelivery(d Delivery) error {
	if _, err := r.Delivery(d.ID); err == nil {
		return fmt.Errorf("%w: delivery %s", ErrDuplicateID, d.ID)
	}
	r.state.Deliveries = append(r.state.Deliveries, d)
	return nil
}

// AddObstacle registers o. The id must be unique.
func (r *Registry) AddObstacle(o Obstacle) error {
	for _, existing := range r.state.Obstacles {
		if existing.ID == o.ID {
			return fmt.Errorf("%w: obstacle %s", ErrDuplicateID, o.ID)
		}
	}
	r.state.Obstacles = append(r.state.Obstacles, o)
	return nil
}

// RemoveObstacle deletes and returns the obstacle.
func (r *Registry) RemoveObstacle(id string) (Obstacle, error) {
	for i, o := range r.state.Obstacles {
		if o.ID == id {
			r.state.Obstacles = slices.Delete(r.state.Obstacles, i, i+1)
			return o, nil
		}
	}
	return Obstacle{}, fmt.Errorf("%w: %s", ErrObstacleNotFound, id)
}

// CommitFlight records a freshly scheduled flight: it debits the drone by
// debit (floored at 0), parks the drone at the pickup in loading state and
// sets the delivery status. Nothing is written unless every check passes.
func (r *Registry) CommitFlight(f Flight, debit float64, status DeliveryStatus, now time.Time) error {
	drone, err := r.Drone(f.DroneID)
	if err != nil {
		return fmt.Errorf("%w: flight %s references %v", ErrIntegrity, f.ID, err)
	}
	delivery, err := r.Delivery(f.DeliveryID)
	if err != nil {
		return fmt.Errorf("%w: flight %s references %v", ErrIntegrity, f.ID, err)
	}
	if delivery.Status != DeliveryPending {
		return fmt.Errorf("%w: %s is %s", ErrDeliveryNotPending, delivery.ID, delivery.Status)
	}
	if _, err := r.Flight(f.ID); err == nil {
		return fmt.Errorf("%w: flight %s", ErrDuplicateID, f.ID)
	}
	if prev, ok := r.ActiveFlightForDelivery(delivery.ID); ok && !prev.Status.Terminal() {
		return fmt.Errorf("%w: %s owned by flight %s", ErrHasActiveFlight, delivery.ID, prev.ID)
	}

	// one non-archived flight per delivery: cancelled leftovers go to history
	for {
		prev, ok := r.ActiveFlightForDelivery(delivery.ID)
		if !ok {
			break
		}
		if _, err := r.ArchiveFlight(prev.ID, ReasonSuperseded+f.ID, now); err != nil {
			return err
		}
	}

	drone.BatteryPercent = max(0, drone.BatteryPercent-debit)
	drone.State = DroneLoading
	drone.CurrentLat = delivery.Pickup.Lat
	drone.CurrentLon = delivery.Pickup.Lon
	delivery.Status = status
	r.state.Flights = append(r.state.Flights, f)
	return nil
}

// ArchiveFlight moves a flight to history. A flight that had not finished
// returns its battery to the drone (capped at 100) and an in-transit
// delivery goes back to pending.
func (r *Registry) ArchiveFlight(id, reason string, now time.Time) (ArchivedFlight, error) {
	idx := slices.IndexFunc(r.state.Flights, func(f Flight) bool { return f.ID == id })
	if idx < 0 {
		return ArchivedFlight{}, fmt.Errorf("%w: %s", ErrFlightNotFound, id)
	}
	f := r.state.Flights[idx]
	drone, err := r.Drone(f.DroneID)
	if err != nil {
		return ArchivedFlight{}, fmt.Errorf("%w: flight %s references %v", ErrIntegrity, f.ID, err)
	}
	delivery, err := r.Delivery(f.DeliveryID)
	if err != nil {
		return ArchivedFlight{}, fmt.Errorf("%w: flight %s references %v", ErrIntegrity, f.ID, err)
	}

	if !f.Status.Terminal() {
		drone.BatteryPercent = min(100, drone.BatteryPercent+f.RequiredBattery)
	}
	if delivery.Status.IsInTransit() {
		delivery.Status = DeliveryPending
	}

	r.state.Flights = slices.Delete(r.state.Flights, idx, idx+1)
	if r.BusyFlights(drone.ID) == 0 {
		drone.State = DroneIdle
	}
	archived := ArchivedFlight{Flight: f, RemovedAt: now, RemovedReason: reason}
	r.state.FlightHistory = append(r.state.FlightHistory, archived)
	return archived, nil
}

// RemoveDrone deletes a drone. Every flight referencing it is archived first
// and the affected deliveries return to pending.
func (r *Registry) RemoveDrone(id string, now time.Time) (Drone, []ArchivedFlight, error) {
	if _, err := r.Drone(id); err != nil {
		return Drone{}, nil, err
	}
	var ids []string
	for _, f := range r.state.Flights {
		if f.DroneID == id {
			ids = append(ids, f.ID)
		}
	}
	var archived []ArchivedFlight
	for _, fid := range ids {
		a, err := r.ArchiveFlight(fid, ReasonDroneDeletedPrefix+id, now)
		if err != nil {
			return Drone{}, nil, err
		}
		archived = append(archived, a)
	}
	idx := slices.IndexFunc(r.state.Drones, func(d Drone) bool { return d.ID == id })
	removed := r.state.Drones[idx]
	r.state.Drones = slices.Delete(r.state.Drones, idx, idx+1)
	return removed, archived, nil
}

// RemoveDelivery deletes a pending delivery that no flight references.
func (r *Registry) RemoveDelivery(id string) (Delivery, error) {
	d, err := r.Delivery(id)
	if err != nil {
		return Delivery{}, err
	}
	if d.Status != DeliveryPending {
		return Delivery{}, fmt.Errorf("%w: %s is %s", ErrDeliveryNotPending, id, d.Status)
	}
	if f, ok := r.ActiveFlightForDelivery(id); ok {
		return Delivery{}, fmt.Errorf("%w: %s referenced by flight %s", ErrHasActiveFlight, id, f.ID)
	}
	idx := slices.IndexFunc(r.state.Deliveries, func(d Delivery) bool { return d.ID == id })
	removed := r.state.Deliveries[idx]
	r.state.Deliveries = slices.Delete(r.state.Deliveries, idx, idx+1)
	return removed, nil
}

// CancelDelivery archives the delivery's flight, if any, with reason
// delivery-cancelled and marks the delivery cancelled.
func (r *Registry) CancelDelivery(id string, now time.Time) (Delivery, *ArchivedFlight, error) {
	d, err := r.Delivery(id)
	if err != nil {
		return Delivery{}, nil, err
	}
	switch d.Status {
	case DeliveryCancelled:
		return Delivery{}, nil, fmt.Errorf("%w: %s", ErrAlreadyCancelled, id)
	case DeliveryDelivered:
		return Delivery{}, nil, fmt.Errorf("%w: %s was already delivered", ErrInvalidTransition, id)
	}

	var archived *ArchivedFlight
	if f, ok := r.ActiveFlightForDelivery(id); ok {
		a, err := r.ArchiveFlight(f.ID, ReasonDeliveryCancelled, now)
		if err != nil {
			return Delivery{}, nil, err
		}
		archived = &a
	}
	d, _ = r.Delivery(id)
	d.Status = DeliveryCancelled
	return *d, archived, nil
}

// DroneStatuses returns the status view of every drone.
func (r *Registry) DroneStatuses() []DroneStatus {
	out := make([]DroneStatus, 0, len(r.state.Drones))
	for _, d := range r.state.Drones {
		out = append(out, DroneStatus{
			ID:             d.ID,
			BatteryPercent: d.BatteryPercent,
			State:          d.State,
			CurrentLat:     d.CurrentLat,
			CurrentLon:     d.CurrentLon,
		})
	}
	return out
}
