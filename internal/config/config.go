// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"vehiclestream/internal/vehicle"
)

// VehicleSpec configures one vehicle and the centre it orbits.
type VehicleSpec struct {
	ID        string         `yaml:"id"`
	CentreLat float64        `yaml:"centre_lat"`
	CentreLng float64        `yaml:"centre_lng"`
	Alt       *float64       `yaml:"alt"`
	Status    vehicle.Status `yaml:"status"`
	Type      vehicle.Kind   `yaml:"type"`
}

// Config is the root configuration for the stream server.
type Config struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	SendInterval  time.Duration `yaml:"send_interval"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	PhaseStep     float64       `yaml:"phase_step"`
	OrbitRadius   float64       `yaml:"orbit_radius"`
	AdminAddr     string        `yaml:"admin_addr"`
	ServerID      string        `yaml:"server_id"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	Vehicles      []VehicleSpec `yaml:"vehicles"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	vehicles, centres := vehicle.DefaultFleet()
	specs := make([]VehicleSpec, len(vehicles))
	for i, v := range vehicles {
		alt := v.Alt
		specs[i] = VehicleSpec{
			ID:        v.ID,
			CentreLat: centres[i].Lat,
			CentreLng: centres[i].Lng,
			Alt:       &alt,
			Status:    v.Status,
			Type:      v.Type,
		}
	}
	return &Config{
		Host:          "localhost",
		Port:          8000,
		TickInterval:  100 * time.Millisecond,
		SendInterval:  500 * time.Millisecond,
		StatsInterval: 10 * time.Second,
		PhaseStep:     0.01,
		OrbitRadius:   0.01,
		LogLevel:      "info",
		LogFormat:     "text",
		Vehicles:      specs,
	}
}

// Load reads a YAML file over the defaults after validating it against a
// CUE schema. An empty path returns Default().
func Load(configPath, cueSchemaPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.SendInterval <= 0 {
		errs = append(errs, fmt.Errorf("send_interval must be positive, got %s", c.SendInterval))
	}
	if c.StatsInterval < 0 {
		errs = append(errs, fmt.Errorf("stats_interval must not be negative, got %s", c.StatsInterval))
	}
	if c.PhaseStep <= 0 {
		errs = append(errs, fmt.Errorf("phase_step must be positive, got %v", c.PhaseStep))
	}
	if len(c.Vehicles) == 0 {
		errs = append(errs, errors.New("at least one vehicle is required"))
	}
	seen := make(map[string]bool, len(c.Vehicles))
	for i, v := range c.Vehicles {
		if v.ID == "" {
			errs = append(errs, fmt.Errorf("vehicle %d has no id", i))
		} else if seen[v.ID] {
			errs = append(errs, fmt.Errorf("duplicate vehicle id %q", v.ID))
		}
		seen[v.ID] = true
		if v.Status != "" && !v.Status.Valid() {
			errs = append(errs, fmt.Errorf("vehicle %q: %w: %q", v.ID, vehicle.ErrInvalidStatus, v.Status))
		}
		if v.Type != "" && !v.Type.Valid() {
			errs = append(errs, fmt.Errorf("vehicle %q: %w: %q", v.ID, vehicle.ErrInvalidKind, v.Type))
		}
	}
	return errors.Join(errs...)
}

// Addr returns the stream listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Fleet builds the starting vehicles and their centres. Vehicles start on
// their centre; missing status, type and altitude take the defaults.
func (c *Config) Fleet() ([]vehicle.Vehicle, []vehicle.Centre) {
	vehicles := make([]vehicle.Vehicle, len(c.Vehicles))
	centres := make([]vehicle.Centre, len(c.Vehicles))
	for i, s := range c.Vehicles {
		v := vehicle.Vehicle{
			ID:     s.ID,
			Lat:    s.CentreLat,
			Lng:    s.CentreLng,
			Alt:    vehicle.DefaultAlt,
			Hdg:    vehicle.DefaultHeading,
			Status: s.Status,
			Type:   s.Type,
		}
		if s.Alt != nil {
			v.Alt = *s.Alt
		}
		if v.Status == "" {
			v.Status = vehicle.StatusOK
		}
		if v.Type == "" {
			v.Type = vehicle.KindMultirotor
		}
		vehicles[i] = v
		centres[i] = vehicle.Centre{Lat: s.CentreLat, Lng: s.CentreLng}
	}
	return vehicles, centres
}
