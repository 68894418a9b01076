package scenario

import "droneops-dispatch/internal/geo"

func pct(v float64) *float64 { return &v }

// BuiltIn returns predefined operating areas.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"rio-demo": {
			Name:        "Rio demo",
			Description: "Centro depot serving Zona Sul with a mixed fleet and one restricted airspace around Santos Dumont.",
			Depot:       &geo.Point{Lat: -22.9035, Lon: -43.2096},
			Drones: []Drone{
				{ID: "carrier-01", Model: "quad-light", MaxWeightKg: 3, MaxRangeKm: 20},
				{ID: "carrier-02", Model: "quad-light", MaxWeightKg: 3, MaxRangeKm: 20, BatteryPercent: pct(60)},
				{ID: "carrier-03", Model: "hexa-cargo", MaxWeightKg: 10, MaxRangeKm: 35},
			},
			Deliveries: []Delivery{
				{ID: "copacabana-meds", WeightKg: 1.2, Priority: "alta", Pickup: geo.Point{Lat: -22.9035, Lon: -43.2096}, Dropoff: geo.Point{Lat: -22.9711, Lon: -43.1822}},
				{ID: "botafogo-docs", WeightKg: 0.4, Priority: "normal", Pickup: geo.Point{Lat: -22.9035, Lon: -43.2096}, Dropoff: geo.Point{Lat: -22.9519, Lon: -43.1840}},
				{ID: "tijuca-parts", WeightKg: 6.5, Priority: "baixa", Pickup: geo.Point{Lat: -22.9035, Lon: -43.2096}, Dropoff: geo.Point{Lat: -22.9249, Lon: -43.2311}},
			},
			Obstacles: []Obstacle{
				{ID: "sdu-ctr", Lat: -22.9105, Lon: -43.1631, RadiusKm: 1.5},
			},
		},
		"blocked-corridor": {
			Name:        "Blocked corridor",
			Description: "A single delivery whose straight route crosses a no-fly zone.",
			Depot:       &geo.Point{Lat: -22.9, Lon: -43.2},
			Drones: []Drone{
				{ID: "carrier-01", Model: "quad-light", MaxWeightKg: 5, MaxRangeKm: 50},
			},
			Deliveries: []Delivery{
				{ID: "crossing", WeightKg: 1, Pickup: geo.Point{Lat: -22.9, Lon: -43.2}, Dropoff: geo.Point{Lat: -22.96, Lon: -43.2}},
			},
			Obstacles: []Obstacle{
				{ID: "stadium", Lat: -22.93, Lon: -43.2, RadiusKm: 0.5},
			},
		},
	}
}
