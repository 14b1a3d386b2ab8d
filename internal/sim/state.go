package sim

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"vehiclestream/internal/vehicle"
)

var (
	ErrEmptyFleet     = errors.New("fleet has no vehicles")
	ErrCentreMismatch = errors.New("centre table does not match vehicle list")
)

// Frame is one published, immutable view of the fleet.
type Frame struct {
	Tick     uint64
	Phase    float64 // phase the positions were computed from
	Vehicles vehicle.Snapshot
	At       time.Time
}

// State owns the vehicle list, the centre table and the phase. Only the
// simulator mutates it; readers see published frames.
type State struct {
	centres  []vehicle.Centre
	vehicles []vehicle.Vehicle
	phase    float64
	ticks    uint64

	current atomic.Pointer[Frame]
}

// NewState copies the vehicles and centres into a new state at phase 0.
func NewState(vehicles []vehicle.Vehicle, centres []vehicle.Centre) (*State, error) {
	if len(vehicles) == 0 {
		return nil, ErrEmptyFleet
	}
	if len(vehicles) != len(centres) {
		return nil, fmt.Errorf("%w: %d vehicles, %d centres", ErrCentreMismatch, len(vehicles), len(centres))
	}
	st := &State{
		centres:  append([]vehicle.Centre(nil), centres...),
		vehicles: append([]vehicle.Vehicle(nil), vehicles...),
	}
	st.publish(time.Now().UTC())
	return st, nil
}

func (st *State) publish(at time.Time) {
	snap := make(vehicle.Snapshot, len(st.vehicles))
	copy(snap, st.vehicles)
	st.current.Store(&Frame{Tick: st.ticks, Phase: st.phase, Vehicles: snap, At: at})
}

// Latest returns the most recently published frame. The frame is shared
// between readers and must not be modified.
func (st *State) Latest() *Frame {
	return st.current.Load()
}

// Snapshot returns a copy of the latest published vehicle set.
func (st *State) Snapshot() vehicle.Snapshot {
	f := st.current.Load()
	out := make(vehicle.Snapshot, len(f.Vehicles))
	copy(out, f.Vehicles)
	return out
}

// Len returns the fixed number of vehicles.
func (st *State) Len() int {
	return len(st.vehicles)
}
