package config

import (
	"sort"

	"github.com/san-kum/compsim/internal/models"
)

func competition(r, k, alphas, x0 []float64, tmax float64) *Config {
	return &Config{
		Model: "competition", Integrator: "rk4", T0: 0, TMax: tmax, Dt: 0.01,
		InitState: x0,
		Params: models.Params{
			Competition: models.CompetitionParams{GrowthRate: r, CarryingCap: k, Alphas: alphas},
		},
	}
}

func logistic(rate, capacity, x0, tmax float64) *Config {
	return &Config{
		Model: "logistic", Integrator: "rk4", T0: 0, TMax: tmax, Dt: 0.01,
		InitState: []float64{x0},
		Params: models.Params{
			Logistic: models.LogisticParams{Rate: rate, Capacity: capacity},
		},
	}
}

var Presets = map[string]map[string]*Config{
	"competition": {
		"exclusion":   competition([]float64{1.53, 1.27}, []float64{1, 1}, []float64{1.3, 1.3}, []float64{0.47, 0.35}, 100),
		"founder":     competition([]float64{1.53, 1.27}, []float64{1, 1}, []float64{1.3, 1.3}, []float64{0.3, 0.6}, 100),
		"coexistence": competition([]float64{1.53, 1.27}, []float64{1, 1}, []float64{0.5, 0.5}, []float64{0.47, 0.35}, 100),
		"dominance":   competition([]float64{1.0, 1.0}, []float64{1, 1}, []float64{0.7, 1.4}, []float64{0.1, 0.9}, 60),
	},
	"logistic": {
		"slow": logistic(0.5, 1.0, 0.05, 40),
		"fast": logistic(3.0, 1.0, 0.05, 10),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
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
	sort.Strings(names)
	return names
}
