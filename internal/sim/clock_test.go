package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/flight"
)

func testMachine() *flight.Machine {
	return &flight.Machine{Now: func() time.Time { return t0.Add(time.Hour) }}
}

func TestStepAdvancesProgressAndRecharges(t *testing.T) {
	reg := fleet.NewRegistry(flyingState(t))
	res, err := Step(reg, testMachine(), ClockParams{})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.InProgress != 1 || res.Recharging != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	f, _ := reg.Flight("f1")
	if f.Progress != DefaultProgressStep {
		t.Fatalf("progress = %v, want %v", f.Progress, DefaultProgressStep)
	}
	d1, _ := reg.Drone("d1")
	if math.Abs(d1.CurrentLat-(-22.91)) > 1e-9 || math.Abs(d1.CurrentLon-(-43.21)) > 1e-9 {
		t.Fatalf("drone not interpolated: %v,%v", d1.CurrentLat, d1.CurrentLon)
	}
	if d1.BatteryPercent != 90 {
		t.Fatalf("flying drone recharged to %v", d1.BatteryPercent)
	}
	d2, _ := reg.Drone("d2")
	if d2.BatteryPercent != 51 {
		t.Fatalf("idle drone battery = %v, want 51", d2.BatteryPercent)
	}
}

func TestClockParamsZeroValueRecharges(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want float64
	}{
		{"zero", 0, DefaultRechargeStep},
		{"negative", -3, DefaultRechargeStep},
		{"explicit", 2.5, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (ClockParams{RechargeStep: tt.step}).withDefaults().RechargeStep; got != tt.want {
				t.Fatalf("RechargeStep = %v, want %v", got, tt.want)
			}
			reg := fleet.NewRegistry(flyingState(t))
			res, err := Step(reg, testMachine(), ClockParams{RechargeStep: tt.step})
			if err != nil {
				t.Fatalf("step: %v", err)
			}
			d2, _ := reg.Drone("d2")
			if d2.BatteryPercent != 50+tt.want || res.Recharging != 1 {
				t.Fatalf("battery = %v recharging = %d, want %v and 1", d2.BatteryPercent, res.Recharging, 50+tt.want)
			}
		})
	}
}

func TestStepRechargeCapsAt100(t *testing.T) {
	s := flyingState(t)
	s.Drones[1].BatteryPercent = 99.5
	reg := fleet.NewRegistry(s)
	if _, err := Step(reg, testMachine(), ClockParams{RechargeStep: 5}); err != nil {
		t.Fatalf("step: %v", err)
	}
	d2, _ := reg.Drone("d2")
	if d2.BatteryPercent != 100 {
		t.Fatalf("battery = %v, want 100", d2.BatteryPercent)
	}
	res, _ := Step(reg, testMachine(), ClockParams{RechargeStep: 5})
	if res.Recharging != 0 {
		t.Fatalf("full drone counted as recharging")
	}
}

func TestStepWithoutAutoCompleteHoldsAtArrival(t *testing.T) {
	reg := fleet.NewRegistry(flyingState(t))
	for i := 0; i < 15; i++ {
		if _, err := Step(reg, testMachine(), ClockParams{}); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	f, _ := reg.Flight("f1")
	if f.Progress != 1 || f.Status != fleet.FlightInProgress {
		t.Fatalf("flight = %+v, want in_progress at 1", f)
	}
	del, _ := reg.Delivery("p1")
	if del.Status != fleet.DeliveryInTransit {
		t.Fatalf("delivery status = %s", del.Status)
	}
}

func TestStepAutoCompleteOnArrival(t *testing.T) {
	reg := fleet.NewRegistry(flyingState(t))
	params := ClockParams{AutoComplete: true}
	var res StepResult
	var err error
	for i := 0; i < 10; i++ {
		if res, err = Step(reg, testMachine(), params); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if len(res.Completed) != 1 || res.Completed[0].ID != "f1" {
		t.Fatalf("expected f1 completed on tenth tick, got %+v", res.Completed)
	}
	f, _ := reg.Flight("f1")
	if f.Status != fleet.FlightCompleted || f.CompletedAt == nil {
		t.Fatalf("flight = %+v", f)
	}
	del, _ := reg.Delivery("p1")
	if del.Status != fleet.DeliveryDelivered {
		t.Fatalf("delivery status = %s", del.Status)
	}
	d1, _ := reg.Drone("d1")
	if d1.State != fleet.DroneIdle || d1.CurrentLat != -23.0 || d1.CurrentLon != -43.3 {
		t.Fatalf("drone = %+v", d1)
	}
	if d1.BatteryPercent != 90 {
		t.Fatalf("drone recharged in its landing tick: %v", d1.BatteryPercent)
	}
	if _, err := Step(reg, testMachine(), params); err != nil {
		t.Fatalf("step: %v", err)
	}
	if d1, _ = reg.Drone("d1"); d1.BatteryPercent != 91 {
		t.Fatalf("battery after landing tick = %v, want 91", d1.BatteryPercent)
	}
}

func TestStepScheduledFlightsDoNotMove(t *testing.T) {
	s := flyingState(t)
	s.Flights[0].Status = fleet.FlightScheduled
	s.Flights[0].StartedAt = nil
	s.Drones[0].State = fleet.DroneLoading
	reg := fleet.NewRegistry(s)
	res, err := Step(reg, testMachine(), ClockParams{AutoComplete: true})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.InProgress != 0 {
		t.Fatalf("scheduled flight advanced")
	}
	if f, _ := reg.Flight("f1"); f.Progress != 0 {
		t.Fatalf("progress = %v", f.Progress)
	}
}

func TestStepIntegrityError(t *testing.T) {
	s := flyingState(t)
	s.Deliveries = nil
	reg := fleet.NewRegistry(s)
	_, err := Step(reg, testMachine(), ClockParams{})
	if !errors.Is(err, fleet.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}
