package sim

import (
	"context"
	"time"

	"droneops-dispatch/internal/logging"
)

// Run starts the simulation loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulation clock", "tick_interval", s.tickInterval, "auto_complete", s.params.AutoComplete)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulation clock")
			return
		}
	}
}

// tick advances the registry and writes the resulting telemetry. Writers
// run after the store has been released.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	out, err := s.advance(ctx)
	if err != nil {
		log.Error("clock tick failed", "err", err)
		return
	}

	s.mu.Lock()
	s.ticks++
	out.state.Tick = s.ticks
	s.last = out.rows
	s.mu.Unlock()

	if s.writer != nil {
		// Batch support if writer implements WriteBatch
		if bw, ok := s.writer.(batchWriter); ok {
			if err := bw.WriteBatch(out.rows); err != nil {
				log.Error("batch write failed", "err", err)
			}
		} else {
			for _, row := range out.rows {
				if err := s.writer.Write(row); err != nil {
					log.Error("write failed", "drone_id", row.DroneID, "err", err)
				}
			}
		}
	}

	if len(out.events) > 0 && s.eventWriter != nil {
		if err := writeFlightEvents(s.eventWriter, out.events); err != nil {
			log.Error("flight event write failed", "err", err)
		}
	}
	for _, ev := range out.events {
		log.Info("flight completed", "flight_id", ev.FlightID, "drone_id", ev.DroneID, "delivery_id", ev.DeliveryID)
	}

	if s.stateWriter != nil {
		if err := s.stateWriter.WriteState(out.state); err != nil {
			log.Error("state write failed", "err", err)
		}
	}
}
