package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/vehicle"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Controller      string          `yaml:"controller" json:"controller"`
	Dt              float64         `yaml:"dt" json:"dt"`
	Realtime        bool            `yaml:"realtime" json:"realtime"`
	Timeout         float64         `yaml:"timeout" json:"timeout"`
	DisplayInterval float64         `yaml:"display_interval" json:"display_interval"`
	Verbose         bool            `yaml:"verbose" json:"verbose"`
	InitState       InitStateConfig `yaml:"init_state" json:"init_state"`
}

// InitStateConfig is the entry interface state. Zero fields are filled
// from the vehicle defaults when the file is loaded.
type InitStateConfig struct {
	Altitude float64 `yaml:"altitude" json:"altitude"`
	Velocity float64 `yaml:"velocity" json:"velocity"`
	Mass     float64 `yaml:"mass" json:"mass"`
	Fuel     float64 `yaml:"fuel" json:"fuel"`
}

func DefaultConfig() *Config {
	ic := vehicle.DefaultInitialConditions()
	return &Config{
		Controller:      "guidance",
		Dt:              sim.DefaultDt,
		Timeout:         sim.DefaultTimeout,
		DisplayInterval: sim.DefaultDisplayInterval,
		Verbose:         true,
		InitState: InitStateConfig{
			Altitude: ic.Altitude,
			Velocity: ic.Velocity,
			Mass:     ic.Mass,
			Fuel:     ic.Fuel,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over a copy of base, so fields the file leaves out
// keep the base values. base is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !positive(c.Dt):
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	case !positive(c.Timeout):
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.Timeout)
	case !finite(c.DisplayInterval) || c.DisplayInterval < 0:
		return fmt.Errorf("%w: display interval must not be negative, got %v", ErrInvalidConfig, c.DisplayInterval)
	case !finite(c.InitState.Altitude) || c.InitState.Altitude < 0:
		return fmt.Errorf("%w: initial altitude must not be negative, got %v", ErrInvalidConfig, c.InitState.Altitude)
	case !finite(c.InitState.Velocity):
		return fmt.Errorf("%w: initial velocity must be finite, got %v", ErrInvalidConfig, c.InitState.Velocity)
	case !positive(c.InitState.Mass):
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidConfig, c.InitState.Mass)
	case !finite(c.InitState.Fuel) || c.InitState.Fuel < 0 || c.InitState.Fuel >= c.InitState.Mass:
		return fmt.Errorf("%w: fuel must be in [0, mass)", ErrInvalidConfig)
	}
	return nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (c *Config) InitialConditions() vehicle.InitialConditions {
	return vehicle.InitialConditions{
		Altitude: c.InitState.Altitude,
		Velocity: c.InitState.Velocity,
		Mass:     c.InitState.Mass,
		Fuel:     c.InitState.Fuel,
	}
}

func (c *Config) RunOptions() sim.RunOptions {
	return sim.RunOptions{
		DisplayInterval: c.DisplayInterval,
		Verbose:         c.Verbose,
		Timeout:         c.Timeout,
	}
}
