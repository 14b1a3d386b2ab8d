// Vehicle records streamed to clients
package vehicle

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the health state reported for a vehicle.
type Status string

// Vehicle status constants.
const (
	StatusOK    Status = "OK"
	StatusWarn  Status = "WARN"
	StatusError Status = "ERROR"
)

// Kind is the airframe type of a vehicle.
type Kind string

// Vehicle kind constants.
const (
	KindMultirotor Kind = "multirotor"
	KindFixedWing  Kind = "fixedwing"
)

var (
	ErrInvalidStatus = errors.New("invalid vehicle status")
	ErrInvalidKind   = errors.New("invalid vehicle type")
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarn, StatusError:
		return true
	}
	return false
}

func (s *Status) UnmarshalText(b []byte) error {
	v := Status(b)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(b))
	}
	*s = v
	return nil
}

// Valid reports whether k is one of the known vehicle types.
func (k Kind) Valid() bool {
	switch k {
	case KindMultirotor, KindFixedWing:
		return true
	}
	return false
}

func (k *Kind) UnmarshalText(b []byte) error {
	v := Kind(b)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(b))
	}
	*k = v
	return nil
}

// Vehicle is one simulated vehicle as it appears on the wire.
type Vehicle struct {
	ID     string  `json:"id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Alt    float64 `json:"alt"`
	Hdg    float64 `json:"hdg"`
	Status Status  `json:"status"`
	Type   Kind    `json:"type"`
}

// Centre is the fixed point a vehicle orbits.
type Centre struct {
	Lat float64
	Lng float64
}

// Snapshot is the full ordered vehicle set at one instant.
type Snapshot []Vehicle

// Encode serializes the snapshot as a JSON array of vehicle records.
func (s Snapshot) Encode() ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return json.Marshal([]Vehicle(s))
}

// DecodeSnapshot parses a message produced by Snapshot.Encode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
