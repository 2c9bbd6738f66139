package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/compsim/internal/dynamo"
)

// Params holds the parameter sets of every registered model; a builder reads
// only the section it needs.
type Params struct {
	Competition CompetitionParams `yaml:"competition" json:"competition"`
	Logistic    LogisticParams    `yaml:"logistic" json:"logistic"`
}

// DefaultParams are the coefficients of the reference two-species run.
func DefaultParams() Params {
	return Params{
		Competition: CompetitionParams{
			GrowthRate:  []float64{1.53, 1.27},
			CarryingCap: []float64{1, 1},
			Alphas:      []float64{1.3, 1.3},
		},
		Logistic: LogisticParams{
			Rate:     1.0,
			Capacity: 1.0,
		},
	}
}

// Labeled is implemented by models that name their state components.
type Labeled interface {
	Labels() []string
}

type Builder func(Params) (dynamo.System, error)

type Registry struct {
	models map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Builder)}

	r.Register("competition", func(p Params) (dynamo.System, error) {
		return NewCompetition(p.Competition)
	})
	r.Register("logistic", func(p Params) (dynamo.System, error) {
		return NewLogistic(p.Logistic), nil
	})

	return r
}

func (r *Registry) Register(name string, b Builder) {
	r.models[name] = b
}

func (r *Registry) Get(name string, p Params) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, r.List())
	}
	return fn(p)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LabelsFor returns component names for sys, falling back to x0, x1, ...
func LabelsFor(sys dynamo.System) []string {
	if l, ok := sys.(Labeled); ok {
		return l.Labels()
	}
	return DefaultLabels(sys.StateDim())
}

func DefaultLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("x%d", i)
	}
	return labels
}
