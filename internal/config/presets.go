package config

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: InitStateConfig{Theta: 0.2, Omega: 0.0},
			Detectors: []DetectorConfig{
				{Type: "component", Index: 0, Value: 0},
			},
		},
		"large": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: InitStateConfig{Theta: 2.5, Omega: 0.0},
			Detectors: []DetectorConfig{
				{Type: "component", Index: 0, Value: 0},
			},
		},
		"upswing-stop": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 30.0,
			InitState: InitStateConfig{Theta: 0.1, Omega: 8.0},
			Detectors: []DetectorConfig{
				{Type: "component", Index: 0, Value: 3.0, Action: "stop"},
			},
		},
	},
	"kepler": {
		"circular": {
			Model: "kepler", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: InitStateConfig{SemiMajor: 1.0, Eccentricity: 0.0},
		},
		"eccentric": {
			Model: "kepler", Integrator: "rk4", Dt: 0.005, Duration: 20.0,
			InitState: InitStateConfig{SemiMajor: 1.0, Eccentricity: 0.5},
			Detectors: []DetectorConfig{
				{Type: "apside", MaxCheck: 0.5},
				{Type: "altitude", Value: 1.2},
			},
		},
		"periapsis-only": {
			Model: "kepler", Integrator: "rk45", Adaptive: true, Tolerance: 1e-8,
			Dt: 0.01, Duration: 40.0,
			InitState: InitStateConfig{SemiMajor: 1.0, Eccentricity: 0.3},
			Detectors: []DetectorConfig{
				{Type: "apside", MaxCheck: 0.5, Filter: "increasing"},
			},
		},
	},
	"springmass": {
		"bounce": {
			Model: "springmass", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: InitStateConfig{Pos: 2.0, Vel: 0.0},
			Detectors: []DetectorConfig{
				{Type: "component", Index: 0, Value: 0},
			},
		},
		"fast": {
			Model: "springmass", Integrator: "rk4", Dt: 0.001, Duration: 10.0,
			InitState: InitStateConfig{Pos: 1.0, Vel: 5.0},
		},
	},
	"springchain": {
		"ripple": {
			Model: "springchain", Integrator: "rk4", Dt: 0.005, Duration: 30.0,
			InitState: InitStateConfig{Pos: 1.0, Masses: 5},
			Detectors: []DetectorConfig{
				{Type: "norm", Value: 0.5, Filter: "decreasing"},
			},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
