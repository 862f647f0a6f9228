package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultTheta     = 0.5
	DefaultSemiMajor = 1.0
	DefaultMasses    = 3
)

type Config struct {
	Model      string           `yaml:"model"`
	Integrator string           `yaml:"integrator"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Adaptive   bool             `yaml:"adaptive"`
	Tolerance  float64          `yaml:"tolerance"`
	InitState  InitStateConfig  `yaml:"init_state"`
	Detectors  []DetectorConfig `yaml:"detectors"`
}

type InitStateConfig struct {
	Theta        float64 `yaml:"theta"`
	Omega        float64 `yaml:"omega"`
	Pos          float64 `yaml:"pos"`
	Vel          float64 `yaml:"vel"`
	SemiMajor    float64 `yaml:"semi_major"`
	Eccentricity float64 `yaml:"eccentricity"`
	Masses       int     `yaml:"masses"`
}

// DetectorConfig describes one event detector of a scenario. Type selects
// the switching function, Action what happens when it fires, and the
// remaining fields configure the optional decorators.
type DetectorConfig struct {
	Type  string  `yaml:"type"` // time, component, norm, energy, altitude, apside
	At    float64 `yaml:"at"`
	Index int     `yaml:"index"`
	Value float64 `yaml:"value"`

	Action string `yaml:"action"` // continue (default) or stop
	Filter string `yaml:"filter"` // "", increasing or decreasing

	ShiftIncreasing float64 `yaml:"shift_increasing"`
	ShiftDecreasing float64 `yaml:"shift_decreasing"`

	MaxCheck  float64 `yaml:"max_check"`
	Threshold float64 `yaml:"threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "pendulum",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		InitState: InitStateConfig{
			Theta:     DefaultTheta,
			SemiMajor: DefaultSemiMajor,
			Masses:    DefaultMasses,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
