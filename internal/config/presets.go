package config

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

var Presets = map[string]*Config{
	"nominal": DefaultConfig(),
	"fine": {
		Controller: "guidance", Dt: 0.01, Timeout: 600, DisplayInterval: 5, Verbose: true,
		InitState: InitStateConfig{Altitude: 125_000, Velocity: 5_800, Mass: 3_200, Fuel: 400},
	},
	"coarse": {
		Controller: "guidance", Dt: 0.5, Timeout: 600, DisplayInterval: 10, Verbose: true,
		InitState: InitStateConfig{Altitude: 125_000, Velocity: 5_800, Mass: 3_200, Fuel: 400},
	},
	"ballistic": {
		Controller: "none", Dt: 0.1, Timeout: 600, DisplayInterval: 5, Verbose: true,
		InitState: InitStateConfig{Altitude: 125_000, Velocity: 5_800, Mass: 3_200, Fuel: 400},
	},
	"steep": {
		Controller: "guidance", Dt: 0.1, Timeout: 600, DisplayInterval: 5, Verbose: true,
		InitState: InitStateConfig{Altitude: 125_000, Velocity: 6_500, Mass: 3_200, Fuel: 400},
	},
	"heavy": {
		Controller: "guidance", Dt: 0.1, Timeout: 600, DisplayInterval: 5, Verbose: true,
		InitState: InitStateConfig{Altitude: 125_000, Velocity: 5_800, Mass: 3_600, Fuel: 400},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := *p
	return &cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
