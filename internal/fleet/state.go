package fleet

// State is the persisted registry document.
type State struct {
	Drones          []Drone          `json:"drones" msgpack:"drones"`
	Deliveries      []Delivery       `json:"deliveries" msgpack:"deliveries"`
	Flights         []Flight         `json:"flights" msgpack:"flights"`
	FlightHistory   []ArchivedFlight `json:"flightHistory" msgpack:"flightHistory"`
	Obstacles       []Obstacle       `json:"obstacles" msgpack:"obstacles"`
	NextOrderNumber int64            `json:"nextOrderNumber" msgpack:"nextOrderNumber"`
}

// NewState returns an empty, normalized document.
func NewState() *State {
	s := &State{}
	s.Normalize()
	return s
}

// Normalize fills in collections and counters that older documents lack and
// canonicalizes legacy values.
func (s *State) Normalize() {
	if s.Drones == nil {
		s.Drones = []Drone{}
	}
	if s.Deliveries == nil {
		s.Deliveries = []Delivery{}
	}
	if s.Flights == nil {
		s.Flights = []Flight{}
	}
	if s.FlightHistory == nil {
		s.FlightHistory = []ArchivedFlight{}
	}
	if s.Obstacles == nil {
		s.Obstacles = []Obstacle{}
	}

	for i := range s.Drones {
		d := &s.Drones[i]
		d.BatteryPercent = clampPercent(d.BatteryPercent)
		// battery is debited at scheduling time, nothing stays reserved
		d.ReservedBatteryPercent = 0
		if d.State == "" {
			d.State = DroneIdle
		}
	}
	for i := range s.Deliveries {
		d := &s.Deliveries[i]
		switch d.Status {
		case "":
			d.Status = DeliveryPending
		case DeliveryScheduled:
			d.Status = DeliveryInTransit
		}
		if d.Priority == "" {
			d.Priority = PriorityNormal
		}
	}
	for i := range s.Obstacles {
		if s.Obstacles[i].Type == "" {
			s.Obstacles[i].Type = ObstacleCircle
		}
	}

	var maxOrder int64
	for _, f := range s.Flights {
		maxOrder = max(maxOrder, f.OrderNumber)
	}
	for _, f := range s.FlightHistory {
		maxOrder = max(maxOrder, f.OrderNumber)
	}
	if s.NextOrderNumber <= maxOrder {
		s.NextOrderNumber = maxOrder + 1
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
