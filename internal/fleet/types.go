// Drone, delivery, obstacle and flight records held by the registry
package fleet

import (
	"time"

	"droneops-dispatch/internal/geo"
)

// DroneState is the operational state of a drone.
type DroneState string

// Drone states.
const (
	DroneIdle     DroneState = "idle"
	DroneLoading  DroneState = "loading"
	DroneInFlight DroneState = "in_flight"
)

// DeliveryStatus tracks a delivery through dispatch.
type DeliveryStatus string

// Delivery statuses. DeliveryScheduled is accepted on load as an alias of
// DeliveryInTransit and is never written.
const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryInTransit  DeliveryStatus = "in_transit"
	DeliveryScheduled  DeliveryStatus = "scheduled"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryDelivered  DeliveryStatus = "delivered"
	DeliveryCancelled  DeliveryStatus = "cancelled"
)

// IsInTransit reports whether an active flight owns the delivery.
func (s DeliveryStatus) IsInTransit() bool {
	switch s {
	case DeliveryInTransit, DeliveryScheduled, DeliveryInProgress:
		return true
	}
	return false
}

// FlightStatus is the lifecycle state of a flight.
type FlightStatus string

// Flight statuses.
const (
	FlightScheduled  FlightStatus = "scheduled"
	FlightInProgress FlightStatus = "in_progress"
	FlightCompleted  FlightStatus = "completed"
	FlightCancelled  FlightStatus = "cancelled"
)

// ParseFlightStatus returns the status named by s.
func ParseFlightStatus(s string) (FlightStatus, bool) {
	switch st := FlightStatus(s); st {
	case FlightScheduled, FlightInProgress, FlightCompleted, FlightCancelled:
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transition is allowed.
func (s FlightStatus) Terminal() bool {
	return s == FlightCompleted || s == FlightCancelled
}

// ObstacleCircle is the only supported obstacle shape.
const ObstacleCircle = "circle"

// Drone is a registered carrier.
type Drone struct {
	ID                     string     `json:"id" msgpack:"id"`
	Model                  string     `json:"model" msgpack:"model"`
	MaxWeightKg            float64    `json:"maxWeightKg" msgpack:"maxWeightKg"`
	MaxRangeKm             float64    `json:"maxRangeKm" msgpack:"maxRangeKm"`
	BatteryPercent         float64    `json:"batteryPercent" msgpack:"batteryPercent"`
	ReservedBatteryPercent float64    `json:"reservedBatteryPercent" msgpack:"reservedBatteryPercent"`
	State                  DroneState `json:"state" msgpack:"state"`
	CurrentLat             float64    `json:"currentLat" msgpack:"currentLat"`
	CurrentLon             float64    `json:"currentLon" msgpack:"currentLon"`
}

// Position returns the drone's current coordinates.
func (d Drone) Position() geo.Point { return geo.Point{Lat: d.CurrentLat, Lon: d.CurrentLon} }

// Delivery is a parcel to move from pickup to dropoff.
type Delivery struct {
	ID        string         `json:"id" msgpack:"id"`
	WeightKg  float64        `json:"weightKg" msgpack:"weightKg"`
	Priority  Priority       `json:"priority" msgpack:"priority"`
	Pickup    geo.Point      `json:"pickup" msgpack:"pickup"`
	Dropoff   geo.Point      `json:"dropoff" msgpack:"dropoff"`
	Status    DeliveryStatus `json:"status" msgpack:"status"`
	CreatedAt time.Time      `json:"createdAt" msgpack:"createdAt"`
}

// Obstacle is a circular no-fly zone.
type Obstacle struct {
	ID       string  `json:"id" msgpack:"id"`
	Type     string  `json:"type" msgpack:"type"`
	Lat      float64 `json:"lat" msgpack:"lat"`
	Lon      float64 `json:"lon" msgpack:"lon"`
	RadiusKm float64 `json:"radiusKm" msgpack:"radiusKm"`
}

// Circle returns the obstacle as a geometry circle.
func (o Obstacle) Circle() geo.Circle {
	return geo.Circle{Center: geo.Point{Lat: o.Lat, Lon: o.Lon}, RadiusKm: o.RadiusKm}
}

// Flight assigns one delivery to one drone.
type Flight struct {
	ID              string       `json:"id" msgpack:"id"`
	DeliveryID      string       `json:"deliveryId" msgpack:"deliveryId"`
	DroneID         string       `json:"droneId" msgpack:"droneId"`
	DistanceKm      float64      `json:"distanceKm" msgpack:"distanceKm"`
	RequiredBattery float64      `json:"requiredBattery" msgpack:"requiredBattery"`
	Status          FlightStatus `json:"status" msgpack:"status"`
	ScheduledAt     time.Time    `json:"scheduledAt" msgpack:"scheduledAt"`
	StartedAt       *time.Time   `json:"startedAt,omitempty" msgpack:"startedAt,omitempty"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty" msgpack:"completedAt,omitempty"`
	Progress        float64      `json:"progress" msgpack:"progress"`
	OrderNumber     int64        `json:"orderNumber" msgpack:"orderNumber"`
	DisplayID       string       `json:"displayId" msgpack:"displayId"`
}

// ArchivedFlight is a flight moved to history.
type ArchivedFlight struct {
	Flight
	RemovedAt     time.Time `json:"removedAt" msgpack:"removedAt"`
	RemovedReason string    `json:"removedReason" msgpack:"removedReason"`
}

// DroneStatus is the lightweight view served to status pollers.
type DroneStatus struct {
	ID             string     `json:"id"`
	BatteryPercent float64    `json:"batteryPercent"`
	State          DroneState `json:"state"`
	CurrentLat     float64    `json:"currentLat"`
	CurrentLon     float64    `json:"currentLon"`
}
