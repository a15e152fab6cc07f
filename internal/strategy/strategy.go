// Package strategy holds the pluggable decision units driven by the
// simulation loop. A strategy consumes market events and emits signal and
// order events; its numeric parameters can be replaced mid-run through the
// engine's command channel.
package strategy

import (
	"sort"

	"github.com/yanun0323/errors"

	"main/internal/schema"
)

// Strategy is a single-goroutine decision unit. OnMarket is always invoked
// from the simulation loop; implementations need no locking of their own
// beyond what Params already provides.
type Strategy interface {
	Name() string
	Params() *Params
	OnMarket(ev schema.MarketEvent) []schema.Event
}

// Constructor builds a strategy for one symbol with parameter overrides
// merged over the strategy's defaults.
type Constructor func(symbol string, overrides map[string]float64) (Strategy, error)

var (
	ErrEmptyName     = errors.New("strategy name is empty")
	ErrNilConstructor = errors.New("strategy constructor is nil")
	ErrDuplicate     = errors.New("strategy already registered")
	ErrUnknown       = errors.New("strategy not registered")
)

// Registry maps strategy names to constructors. Registration is validated
// up front; lookup happens once per session, never per tick.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a named constructor.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" {
		return ErrEmptyName
	}
	if ctor == nil {
		return ErrNilConstructor
	}
	if _, ok := r.ctors[name]; ok {
		return errors.Wrap(ErrDuplicate, name)
	}
	r.ctors[name] = ctor
	return nil
}

// New constructs a registered strategy.
func (r *Registry) New(name, symbol string, overrides map[string]float64) (Strategy, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknown, name)
	}
	return ctor(symbol, overrides)
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that built-in strategies
// register into.
func Default() *Registry { return defaultRegistry }

func mergeDefaults(defaults, overrides map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		if _, ok := merged[k]; ok {
			merged[k] = v
		}
	}
	return merged
}
