package ops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
	"droneops-dispatch/internal/scenario"
	"droneops-dispatch/internal/store"
	"droneops-dispatch/internal/telemetry"
)

var (
	t0      = time.Date(2026, 6, 3, 8, 15, 0, 0, time.UTC)
	pickup  = geo.Point{Lat: -22.9, Lon: -43.2}
	dropoff = geo.Point{Lat: -22.91, Lon: -43.21}
)

type eventRecorder struct {
	mu   sync.Mutex
	rows []telemetry.FlightEventRow
}

func (r *eventRecorder) WriteFlightEvent(row telemetry.FlightEventRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, row := range r.rows {
		out = append(out, row.EventType)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	n := 0
	svc := New(store.New(store.NewMemory(nil)), Options{
		ClusterID: "test",
		Depot:     geo.Point{Lat: -22.9035, Lon: -43.2096},
		Events:    rec,
		Now:       func() time.Time { return t0 },
		NewID: func(kind string) string {
			n++
			return fmt.Sprintf("%s-%d", kind, n)
		},
	})
	return svc, rec
}

func ptr[T any](v T) *T { return &v }

func mustDrone(t *testing.T, svc *Service, battery float64) fleet.Drone {
	t.Helper()
	d, err := svc.CreateDrone(context.Background(), DroneInput{Model: "quad", MaxWeightKg: 10, MaxRangeKm: 100, BatteryPercent: ptr(battery)})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	return d
}

func mustDelivery(t *testing.T, svc *Service, priority string) fleet.Delivery {
	t.Helper()
	d, err := svc.CreateDelivery(context.Background(), DeliveryInput{WeightKg: 3, Priority: priority, Pickup: pickup, Dropoff: dropoff})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return d
}

func droneBattery(t *testing.T, svc *Service, id string) float64 {
	t.Helper()
	drones, err := svc.ListDrones(context.Background())
	if err != nil {
		t.Fatalf("list drones: %v", err)
	}
	for _, d := range drones {
		if d.ID == id {
			return d.BatteryPercent
		}
	}
	t.Fatalf("drone %s not found", id)
	return 0
}

func deliveryStatus(t *testing.T, svc *Service, id string) fleet.DeliveryStatus {
	t.Helper()
	all, err := svc.ListDeliveries(context.Background(), "")
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	for _, d := range all {
		if d.ID == id {
			return d.Status
		}
	}
	t.Fatalf("delivery %s not found", id)
	return ""
}

func TestCreateDroneDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	d, err := svc.CreateDrone(context.Background(), DroneInput{Model: "quad", MaxWeightKg: 2, MaxRangeKm: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ID != "drone-1" || d.BatteryPercent != 100 || d.State != fleet.DroneIdle {
		t.Errorf("unexpected drone %+v", d)
	}
	if d.CurrentLat != -22.9035 || d.CurrentLon != -43.2096 {
		t.Errorf("drone not parked at depot: %+v", d)
	}
	_, err = svc.CreateDrone(context.Background(), DroneInput{ID: "drone-1", Model: "quad", MaxWeightKg: 2, MaxRangeKm: 10})
	if !errors.Is(err, fleet.ErrDuplicateID) {
		t.Errorf("expected duplicate id, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	cases := []struct {
		name string
		call func() error
		want error
	}{
		{"drone without model", func() error {
			_, err := svc.CreateDrone(ctx, DroneInput{MaxWeightKg: 1, MaxRangeKm: 1})
			return err
		}, fleet.ErrValidation},
		{"drone zero capacity", func() error {
			_, err := svc.CreateDrone(ctx, DroneInput{Model: "q", MaxRangeKm: 1})
			return err
		}, fleet.ErrValidation},
		{"drone battery above 100", func() error {
			_, err := svc.CreateDrone(ctx, DroneInput{Model: "q", MaxWeightKg: 1, MaxRangeKm: 1, BatteryPercent: ptr(120.0)})
			return err
		}, fleet.ErrValidation},
		{"delivery zero weight", func() error {
			_, err := svc.CreateDelivery(ctx, DeliveryInput{Pickup: pickup, Dropoff: dropoff})
			return err
		}, fleet.ErrValidation},
		{"delivery unknown priority", func() error {
			_, err := svc.CreateDelivery(ctx, DeliveryInput{WeightKg: 1, Priority: "whenever", Pickup: pickup, Dropoff: dropoff})
			return err
		}, fleet.ErrValidation},
		{"delivery bad dropoff", func() error {
			_, err := svc.CreateDelivery(ctx, DeliveryInput{WeightKg: 1, Pickup: pickup, Dropoff: geo.Point{Lat: 95}})
			return err
		}, fleet.ErrValidation},
		{"obstacle polygon", func() error {
			_, err := svc.CreateObstacle(ctx, ObstacleInput{ID: "o", Type: "polygon", RadiusKm: 1})
			return err
		}, fleet.ErrInvalidShape},
		{"obstacle zero radius", func() error {
			_, err := svc.CreateObstacle(ctx, ObstacleInput{ID: "o"})
			return err
		}, fleet.ErrInvalidShape},
		{"flight unknown id", func() error {
			_, err := svc.UpdateFlight(ctx, "nope", FlightPatch{Status: "landed"})
			return err
		}, fleet.ErrFlightNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	drones, _ := svc.ListDrones(ctx)
	if len(drones) != 0 {
		t.Errorf("rejected input was stored: %+v", drones)
	}
}

func TestCreateDeliveryNormalizesPriority(t *testing.T) {
	svc, _ := newTestService(t)
	d := mustDelivery(t, svc, "  ALTA ")
	if d.Priority != fleet.PriorityHigh || d.Status != fleet.DeliveryPending || !d.CreatedAt.Equal(t0) {
		t.Errorf("unexpected delivery %+v", d)
	}
	d = mustDelivery(t, svc, "")
	if d.Priority != fleet.PriorityNormal {
		t.Errorf("expected default priority, got %s", d.Priority)
	}
}

func TestScheduleAdvanceLifecycle(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	drone := mustDrone(t, svc, 100)
	del := mustDelivery(t, svc, "normal")

	f, err := svc.ScheduleFlight(ctx, "")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if f.ID != "flight-3" || f.DroneID != drone.ID || f.DeliveryID != del.ID || f.DisplayID != "FL-0001" {
		t.Fatalf("unexpected flight %+v", f)
	}
	if got := droneBattery(t, svc, drone.ID); got != 100-f.RequiredBattery {
		t.Errorf("battery = %v", got)
	}
	if got := deliveryStatus(t, svc, del.ID); got != fleet.DeliveryInTransit {
		t.Errorf("status = %s", got)
	}

	for _, want := range []fleet.FlightStatus{fleet.FlightInProgress, fleet.FlightCompleted} {
		f, err = svc.AdvanceFlight(ctx, f.ID)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if f.Status != want {
			t.Fatalf("status = %s, want %s", f.Status, want)
		}
	}
	if _, err := svc.AdvanceFlight(ctx, f.ID); !errors.Is(err, fleet.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got := deliveryStatus(t, svc, del.ID); got != fleet.DeliveryDelivered {
		t.Errorf("status = %s, want delivered", got)
	}
	snap, err := svc.DroneStatusSnapshot(ctx)
	if err != nil || len(snap) != 1 {
		t.Fatalf("snapshot: %v %+v", err, snap)
	}
	if snap[0].State != fleet.DroneIdle || snap[0].CurrentLat != dropoff.Lat || snap[0].CurrentLon != dropoff.Lon {
		t.Errorf("snapshot = %+v", snap[0])
	}
	if got := strings.Join(rec.types(), ","); got != "scheduled,started,completed" {
		t.Errorf("events = %s", got)
	}
}

func TestDebitCreditReversible(t *testing.T) {
	ctx := context.Background()
	paths := map[string]func(svc *Service, f fleet.Flight) error{
		"remove flight": func(svc *Service, f fleet.Flight) error {
			_, err := svc.RemoveFlight(ctx, f.ID)
			return err
		},
		"cancel delivery": func(svc *Service, f fleet.Flight) error {
			_, err := svc.CancelDelivery(ctx, f.DeliveryID)
			return err
		},
		"cancelled status": func(svc *Service, f fleet.Flight) error {
			_, err := svc.UpdateFlight(ctx, f.ID, FlightPatch{Status: "cancelled"})
			return err
		},
	}
	for name, undo := range paths {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t)
			drone := mustDrone(t, svc, 73)
			mustDelivery(t, svc, "high")
			f, err := svc.ScheduleFlight(ctx, "")
			if err != nil {
				t.Fatalf("schedule: %v", err)
			}
			if got := droneBattery(t, svc, drone.ID); got != 73-f.RequiredBattery {
				t.Fatalf("battery after schedule = %v", got)
			}
			if err := undo(svc, f); err != nil {
				t.Fatalf("undo: %v", err)
			}
			if got := droneBattery(t, svc, drone.ID); got != 73 {
				t.Fatalf("battery after undo = %v, want 73", got)
			}
		})
	}
}

func TestRemoveDroneScenarioD(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	drone := mustDrone(t, svc, 100)
	del := mustDelivery(t, svc, "normal")
	f, err := svc.ScheduleFlight(ctx, del.ID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	res, err := svc.RemoveDrone(ctx, drone.ID)
	if err != nil {
		t.Fatalf("remove drone: %v", err)
	}
	if res.Removed.ID != drone.ID || len(res.Archived) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	hist, err := svc.FlightHistory(ctx)
	if err != nil || len(hist) != 1 {
		t.Fatalf("history: %v %+v", err, hist)
	}
	if hist[0].ID != f.ID || !strings.HasPrefix(hist[0].RemovedReason, "drone-deleted:") {
		t.Errorf("archived = %+v", hist[0])
	}
	if got := deliveryStatus(t, svc, del.ID); got != fleet.DeliveryPending {
		t.Errorf("delivery = %s, want pending", got)
	}
	flights, _ := svc.ListFlights(ctx)
	if len(flights) != 0 {
		t.Errorf("active flights left: %+v", flights)
	}
	if _, err := svc.RemoveDrone(ctx, drone.ID); !errors.Is(err, fleet.ErrDroneNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	types := rec.types()
	if types[len(types)-1] != telemetry.FlightEventArchived {
		t.Errorf("last event = %s", types[len(types)-1])
	}
}

func TestDeliveryUpdateAndRemoveRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDrone(t, svc, 100)
	del := mustDelivery(t, svc, "low")

	upd, err := svc.UpdateDelivery(ctx, del.ID, DeliveryPatch{WeightKg: ptr(4.5), Priority: ptr("urgente")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.WeightKg != 4.5 || upd.Priority != fleet.PriorityHigh {
		t.Errorf("unexpected update %+v", upd)
	}
	if _, err := svc.UpdateDelivery(ctx, "missing", DeliveryPatch{}); !errors.Is(err, fleet.ErrDeliveryNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if _, err := svc.ScheduleFlight(ctx, del.ID); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.UpdateDelivery(ctx, del.ID, DeliveryPatch{WeightKg: ptr(1.0)}); !errors.Is(err, fleet.ErrDeliveryNotPending) {
		t.Errorf("expected not pending, got %v", err)
	}
	if _, err := svc.RemoveDelivery(ctx, del.ID); !errors.Is(err, fleet.ErrDeliveryNotPending) {
		t.Errorf("expected not pending, got %v", err)
	}

	c, err := svc.CancelDelivery(ctx, del.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.Delivery.Status != fleet.DeliveryCancelled || c.ArchivedFlight == nil || c.ArchivedFlight.RemovedReason != "delivery-cancelled" {
		t.Errorf("unexpected cancellation %+v", c)
	}
	if _, err := svc.CancelDelivery(ctx, del.ID); !errors.Is(err, fleet.ErrAlreadyCancelled) {
		t.Errorf("expected already cancelled, got %v", err)
	}

	other := mustDelivery(t, svc, "normal")
	removed, err := svc.RemoveDelivery(ctx, other.ID)
	if err != nil || removed.ID != other.ID {
		t.Fatalf("remove: %v %+v", err, removed)
	}
	pending, _ := svc.ListDeliveries(ctx, "pending")
	if len(pending) != 0 {
		t.Errorf("pending = %+v", pending)
	}
}

func TestObstacleBlocksScheduling(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDrone(t, svc, 100)
	del := mustDelivery(t, svc, "normal")
	mid := geo.Lerp(pickup, dropoff, 0.5)

	if _, err := svc.CreateObstacle(ctx, ObstacleInput{ID: "zone", Lat: mid.Lat, Lon: mid.Lon, RadiusKm: 0.3}); err != nil {
		t.Fatalf("create obstacle: %v", err)
	}
	if _, err := svc.CreateObstacle(ctx, ObstacleInput{ID: "zone", Lat: 0, Lon: 0, RadiusKm: 1}); !errors.Is(err, fleet.ErrDuplicateID) {
		t.Errorf("expected duplicate id, got %v", err)
	}
	if _, err := svc.ScheduleFlight(ctx, del.ID); !errors.Is(err, fleet.ErrRouteBlocked) {
		t.Fatalf("expected route blocked, got %v", err)
	}
	if _, err := svc.RemoveObstacle(ctx, "zone"); err != nil {
		t.Fatalf("remove obstacle: %v", err)
	}
	if _, err := svc.RemoveObstacle(ctx, "zone"); !errors.Is(err, fleet.ErrObstacleNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.ScheduleFlight(ctx, del.ID); err != nil {
		t.Fatalf("schedule after removal: %v", err)
	}
}

func TestUpdateFlightScheduledAt(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	mustDrone(t, svc, 100)
	mustDelivery(t, svc, "normal")
	f, err := svc.ScheduleFlight(ctx, "")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	later := t0.Add(45 * time.Minute)
	got, err := svc.UpdateFlight(ctx, f.ID, FlightPatch{ScheduledAt: &later})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.ScheduledAt.Equal(later) || got.Status != fleet.FlightScheduled {
		t.Errorf("unexpected flight %+v", got)
	}
	if _, err := svc.UpdateFlight(ctx, f.ID, FlightPatch{Status: "landed"}); !errors.Is(err, fleet.ErrInvalidStatus) {
		t.Errorf("expected invalid status, got %v", err)
	}
	types := rec.types()
	if types[len(types)-1] != telemetry.FlightEventUpdated {
		t.Errorf("last event = %s", types[len(types)-1])
	}
}

func TestSeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sc, err := scenario.Load("../scenario/testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sum, err := svc.Seed(ctx, sc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if sum.Drones != 4 || sum.Deliveries != 1 || sum.Obstacles != 1 || sum.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	drones, _ := svc.ListDrones(ctx)
	if drones[0].ID != "quad-light-01" || drones[0].CurrentLat != -23.55 {
		t.Errorf("unexpected first drone %+v", drones[0])
	}
	if drones[3].BatteryPercent != 80 {
		t.Errorf("battery = %v", drones[3].BatteryPercent)
	}

	again, err := svc.Seed(ctx, sc)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if again.Drones != 0 || again.Skipped != 6 {
		t.Errorf("reseed summary %+v", again)
	}
}

func TestSeedWithoutIDsIsRepeatable(t *testing.T) {
	svc := New(store.New(store.NewMemory(nil)), Options{ClusterID: "test", Now: func() time.Time { return t0 }})
	ctx := context.Background()
	sc := &scenario.Scenario{
		Name:       "rio",
		Drones:     []scenario.Drone{{Model: "quad", MaxWeightKg: 2, MaxRangeKm: 10}},
		Deliveries: []scenario.Delivery{{WeightKg: 1, Priority: "normal", Pickup: pickup, Dropoff: dropoff}},
		Obstacles:  []scenario.Obstacle{{Lat: -22.95, Lon: -43.25, RadiusKm: 0.5}},
	}
	first, err := svc.Seed(ctx, sc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.Drones != 1 || first.Deliveries != 1 || first.Obstacles != 1 {
		t.Fatalf("unexpected summary %+v", first)
	}
	second, err := svc.Seed(ctx, sc)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if second.Drones != 0 || second.Deliveries != 0 || second.Obstacles != 0 || second.Skipped != 3 {
		t.Fatalf("reseed summary %+v", second)
	}
	drones, _ := svc.ListDrones(ctx)
	deliveries, _ := svc.ListDeliveries(ctx, "")
	obstacles, _ := svc.ListObstacles(ctx)
	if len(drones) != 1 || len(deliveries) != 1 || len(obstacles) != 1 {
		t.Fatalf("got %d drones, %d deliveries, %d obstacles", len(drones), len(deliveries), len(obstacles))
	}
	if drones[0].ID != "rio-drone-01" || deliveries[0].ID != "rio-delivery-01" || obstacles[0].ID != "rio-obstacle-01" {
		t.Errorf("ids = %s %s %s", drones[0].ID, deliveries[0].ID, obstacles[0].ID)
	}
}

func TestSeedBuiltInBlockedCorridor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sc := scenario.BuiltIn()["blocked-corridor"]
	if _, err := svc.Seed(ctx, &sc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.ScheduleFlight(ctx, ""); !errors.Is(err, fleet.ErrRouteBlocked) {
		t.Fatalf("expected route blocked, got %v", err)
	}
}

func TestPendingQueueOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDrone(t, svc, 100)
	mustDelivery(t, svc, "low")
	high := mustDelivery(t, svc, "high")
	mustDelivery(t, svc, "normal")

	q, err := svc.PendingQueue(ctx)
	if err != nil || len(q) != 3 {
		t.Fatalf("queue: %v %+v", err, q)
	}
	if q[0].ID != high.ID {
		t.Errorf("head = %s, want %s", q[0].ID, high.ID)
	}
	f, err := svc.ScheduleFlight(ctx, "")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if f.DeliveryID != high.ID {
		t.Errorf("scheduled %s, want %s", f.DeliveryID, high.ID)
	}
}
