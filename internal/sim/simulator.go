// Simulator moving every vehicle around its centre
package sim

import (
	"math"
	"time"
)

// Motion defaults.
const (
	DefaultPhaseStep    = 0.01
	DefaultOrbitRadius  = 0.01
	DefaultTickInterval = 100 * time.Millisecond
)

const twoPi = 2 * math.Pi

// Motion parameterizes the circular path.
type Motion struct {
	PhaseStep   float64 // radians added per tick
	OrbitRadius float64 // degrees of lat/lng from the centre
}

// DefaultMotion returns the standard step and radius.
func DefaultMotion() Motion {
	return Motion{PhaseStep: DefaultPhaseStep, OrbitRadius: DefaultOrbitRadius}
}

// Simulator advances a State on a fixed tick. It is the only writer of the
// state it wraps.
type Simulator struct {
	state        *State
	motion       Motion
	tickInterval time.Duration
	now          func() time.Time
}

// NewSimulator wraps state. A non-positive tickInterval falls back to
// DefaultTickInterval.
func NewSimulator(state *State, motion Motion, tickInterval time.Duration, now func() time.Time) *Simulator {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Simulator{state: state, motion: motion, tickInterval: tickInterval, now: now}
}

// State returns the state driven by the simulator.
func (s *Simulator) State() *State {
	return s.state
}

// TickInterval returns the period between steps.
func (s *Simulator) TickInterval() time.Duration {
	return s.tickInterval
}

// Step applies one tick. Every vehicle uses the same phase, which is
// advanced only after all of them are updated.
func (s *Simulator) Step() {
	st := s.state
	phase := st.phase
	hdg := Heading(phase)
	dLat := s.motion.OrbitRadius * math.Cos(phase)
	dLng := s.motion.OrbitRadius * math.Sin(phase)

	for i := range st.vehicles {
		c := st.centres[i]
		v := &st.vehicles[i]
		v.Hdg = hdg
		v.Lat = c.Lat + dLat
		v.Lng = c.Lng + dLng
	}
	st.ticks++
	st.publish(s.now())
	st.phase = WrapPhase(phase + s.motion.PhaseStep)
}

// Heading converts a phase to degrees. The result is not wrapped to 360.
func Heading(phase float64) float64 {
	return 90 + phase/math.Pi*180
}

// WrapPhase maps p into [0, 2π).
func WrapPhase(p float64) float64 {
	p = math.Mod(p, twoPi)
	if p < 0 {
		p += twoPi
	}
	if p >= twoPi {
		p = 0
	}
	return p
}
