package sim

import (
	"context"
	"time"

	"vehiclestream/internal/logging"
)

// Run steps the simulation once immediately and then on every tick until
// ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.tickInterval, "vehicles", s.state.Len())
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.Step()
	for {
		select {
		case <-ticker.C:
			s.Step()
		case <-ctx.Done():
			f := s.state.Latest()
			log.Info("stopping simulator", "ticks", f.Tick, "phase", f.Phase)
			return
		}
	}
}
