package config

import (
	"fmt"
	"os"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel      = "competition"
	DefaultIntegrator = "rk4"
	DefaultT0         = 0.0
	DefaultTMax       = 100.0
	DefaultDt         = 0.01
)

type Config struct {
	Model      string        `yaml:"model"`
	Integrator string        `yaml:"integrator"`
	T0         float64       `yaml:"t0"`
	TMax       float64       `yaml:"tmax"`
	Dt         float64       `yaml:"dt"`
	InitState  []float64     `yaml:"init_state"`
	Params     models.Params `yaml:",inline"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		T0:         DefaultT0,
		TMax:       DefaultTMax,
		Dt:         DefaultDt,
		InitState:  []float64{0.47, 0.35},
		Params:     models.DefaultParams(),
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base; keys absent from the file
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate checks the stepping parameters and the initial state. Model
// coefficients are deliberately not range-checked here.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: %w: dt=%g", dynamo.ErrInvalidStep, c.Dt)
	}
	if c.TMax <= c.T0 {
		return fmt.Errorf("config: %w: t0=%g tmax=%g", dynamo.ErrInvalidSpan, c.T0, c.TMax)
	}
	if len(c.InitState) == 0 {
		return fmt.Errorf("config: %w", dynamo.ErrEmptyState)
	}
	return nil
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.State(c.InitState).Clone()
}

// Clone returns a deep copy so presets are never modified through a caller.
func (c *Config) Clone() *Config {
	out := *c
	out.InitState = append([]float64(nil), c.InitState...)
	comp := c.Params.Competition
	out.Params.Competition = models.CompetitionParams{
		GrowthRate:  append([]float64(nil), comp.GrowthRate...),
		CarryingCap: append([]float64(nil), comp.CarryingCap...),
		Alphas:      append([]float64(nil), comp.Alphas...),
	}
	if comp.Interaction != nil {
		out.Params.Competition.Interaction = make([][]float64, len(comp.Interaction))
		for i, row := range comp.Interaction {
			out.Params.Competition.Interaction[i] = append([]float64(nil), row...)
		}
	}
	return &out
}

// ParamMap flattens the coefficients of the configured model for run
// metadata.
func (c *Config) ParamMap() map[string]float64 {
	m := make(map[string]float64)
	switch c.Model {
	case "logistic":
		m["rate"] = c.Params.Logistic.Rate
		m["capacity"] = c.Params.Logistic.Capacity
	default:
		comp := c.Params.Competition
		for i, v := range comp.GrowthRate {
			m[fmt.Sprintf("growth_rate_%d", i+1)] = v
		}
		for i, v := range comp.CarryingCap {
			m[fmt.Sprintf("carrying_cap_%d", i+1)] = v
		}
		if comp.Interaction != nil {
			for i, row := range comp.Interaction {
				for j, v := range row {
					if i != j {
						m[fmt.Sprintf("alpha_%d%d", i+1, j+1)] = v
					}
				}
			}
		} else if len(comp.Alphas) == 2 {
			m["alpha_12"] = comp.Alphas[0]
			m["alpha_21"] = comp.Alphas[1]
		}
	}
	return m
}
