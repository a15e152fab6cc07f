package strategy

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"
)

// Params is the named numeric parameter set consulted on every decision
// step. It is mutated only through Update; strategies read it and never
// write it from their own decision logic.
type Params struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewParams copies the defaults into a fresh parameter set.
func NewParams(defaults map[string]float64) *Params {
	values := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	return &Params{values: values}
}

// Get returns the current value of a parameter.
func (p *Params) Get(key string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// GetOr returns the parameter value or a fallback when the key is unknown.
func (p *Params) GetOr(key string, fallback float64) float64 {
	if v, ok := p.Get(key); ok {
		return v
	}
	return fallback
}

// Update applies the supplied values per key. Only keys already present in
// the set are considered; values that fail numeric coercion are skipped and
// reported, leaving the prior value untouched. The update is partial: valid
// keys take effect regardless of invalid siblings.
func (p *Params) Update(raw map[string]any) (rejected []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, val := range raw {
		if _, ok := p.values[key]; !ok {
			rejected = append(rejected, key)
			continue
		}
		f, ok := coerceNumeric(val)
		if !ok {
			rejected = append(rejected, key)
			continue
		}
		p.values[key] = f
	}
	sort.Strings(rejected)
	return rejected
}

// Snapshot returns a copy of the current values.
func (p *Params) Snapshot() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]float64, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

func coerceNumeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
