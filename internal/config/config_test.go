package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehiclestream/internal/vehicle"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultMatchesDemo(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8000", cfg.Addr())
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.SendInterval)

	vehicles, centres := cfg.Fleet()
	wantVehicles, wantCentres := vehicle.DefaultFleet()
	assert.Equal(t, wantVehicles, vehicles)
	assert.Equal(t, wantCentres, centres)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeFile(t, "stream.yaml", `
host: 0.0.0.0
port: 9000
tick_interval: 50ms
send_interval: 1s
phase_step: 0.02
vehicles:
  - id: alpha
    centre_lat: 48.2
    centre_lng: 16.4
    alt: 120
    status: WARN
    type: fixedwing
  - id: bravo
    centre_lat: 48.3
    centre_lng: 16.5
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, time.Second, cfg.SendInterval)
	assert.Equal(t, 0.02, cfg.PhaseStep)
	// untouched keys keep their defaults
	assert.Equal(t, 0.01, cfg.OrbitRadius)
	assert.Equal(t, 10*time.Second, cfg.StatsInterval)

	vehicles, centres := cfg.Fleet()
	require.Len(t, vehicles, 2)
	assert.Equal(t, vehicle.Vehicle{ID: "alpha", Lat: 48.2, Lng: 16.4, Alt: 120, Hdg: 90, Status: vehicle.StatusWarn, Type: vehicle.KindFixedWing}, vehicles[0])
	assert.Equal(t, vehicle.Vehicle{ID: "bravo", Lat: 48.3, Lng: 16.5, Alt: 400, Hdg: 90, Status: vehicle.StatusOK, Type: vehicle.KindMultirotor}, vehicles[1])
	assert.Equal(t, vehicle.Centre{Lat: 48.3, Lng: 16.5}, centres[1])
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"bad status":    "vehicles:\n  - {id: a, centre_lat: 1, centre_lng: 2, status: BROKEN}\n",
		"bad type":      "vehicles:\n  - {id: a, centre_lat: 1, centre_lng: 2, type: blimp}\n",
		"bad latitude":  "vehicles:\n  - {id: a, centre_lat: 91, centre_lng: 2}\n",
		"unknown key":   "colour: red\n",
		"bad duration":  "tick_interval: fast\n",
		"port too high": "port: 70000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "bad.yaml", body)
			_, err := Load(path, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestLoadRejectsSemanticErrors(t *testing.T) {
	path := writeFile(t, "dup.yaml", `
vehicles:
  - {id: a, centre_lat: 1, centre_lng: 2}
  - {id: a, centre_lat: 3, centre_lng: 4}
`)
	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate vehicle id "a"`)
}

func TestLoadWithExternalSchema(t *testing.T) {
	schema := writeFile(t, "strict.cue", `
#Config: {
	port?: 8000
	...
}
`)
	ok := writeFile(t, "ok.yaml", "port: 8000\n")
	_, err := Load(ok, schema)
	require.NoError(t, err)

	bad := writeFile(t, "bad.yaml", "port: 8001\n")
	_, err = Load(bad, schema)
	require.Error(t, err)
}

func TestValidateMissingSchemaDefinition(t *testing.T) {
	err := ValidateBytes([]byte("port: 1\n"), []byte("foo: 1\n"), "x.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no #Config definition")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TickInterval = 0
	cfg.Vehicles = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_interval")
	assert.Contains(t, err.Error(), "at least one vehicle")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
}
