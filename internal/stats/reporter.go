package stats

import (
	"context"
	"time"

	"vehiclestream/internal/broadcast"
	"vehiclestream/internal/logging"
	"vehiclestream/internal/sim"
)

// ConnStats reports connection counters; *broadcast.Server implements it.
type ConnStats interface {
	Stats() broadcast.Stats
}

// Reporter periodically samples the simulation and the connections and
// writes one Row per interval.
type Reporter struct {
	serverID string
	state    *sim.State
	conns    ConnStats
	writer   Writer
	interval time.Duration
	now      func() time.Time
}

// NewReporter creates a Reporter. now may be nil.
func NewReporter(serverID string, state *sim.State, conns ConnStats, writer Writer, interval time.Duration, now func() time.Time) *Reporter {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Reporter{
		serverID: serverID,
		state:    state,
		conns:    conns,
		writer:   writer,
		interval: interval,
		now:      now,
	}
}

// Sample builds a row from the current counters.
func (r *Reporter) Sample() Row {
	f := r.state.Latest()
	row := Row{
		ServerID:  r.serverID,
		Ticks:     f.Tick,
		Phase:     f.Phase,
		Vehicles:  len(f.Vehicles),
		LastTick:  f.At,
		Timestamp: r.now(),
	}
	if r.conns != nil {
		cs := r.conns.Stats()
		row.Connections = cs.Open
		row.Accepted = cs.Accepted
		row.MessagesSent = cs.MessagesSent
		row.WriteFailures = cs.WriteFailures
	}
	return row
}

// Run writes a row every interval and a final one when ctx is done. It
// returns at once if the interval is not positive.
func (r *Reporter) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	if r.interval <= 0 || r.writer == nil {
		log.Debug("stats reporting disabled")
		return
	}
	log.Info("starting stats reporter", "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.write(ctx)
		case <-ctx.Done():
			r.write(ctx)
			return
		}
	}
}

func (r *Reporter) write(ctx context.Context) {
	row := r.Sample()
	if err := r.writer.WriteStats(row); err != nil {
		logging.FromContext(ctx).Error("stats write failed", "err", err)
	}
}
