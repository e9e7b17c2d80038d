package effort

import (
	"math"

	"github.com/okian/carelog/internal/domain/model"
)

// DefaultWeight is the minutes per interaction for roles missing from the table.
const DefaultWeight = 5

// Weights maps roles to minutes per interaction. The zero value weighs
// every role 0; build one with NewWeights.
type Weights struct {
	byRole map[model.Role]float64
	def    float64
}

// NewWeights normalizes role names in table onto canonical roles. Negative
// weights are ignored, as is a negative default.
func NewWeights(table map[string]float64, defaultWeight float64) Weights {
	w := Weights{byRole: make(map[model.Role]float64, len(table)), def: DefaultWeight}
	if defaultWeight >= 0 {
		w.def = defaultWeight
	}
	for name, v := range table {
		if v < 0 {
			continue
		}
		w.byRole[model.ParseRole(name)] = v
	}
	return w
}

// For returns the weight of r, falling back to the default.
func (w Weights) For(r model.Role) float64 {
	if v, ok := w.byRole[r]; ok {
		return v
	}
	return w.def
}

// Default returns the fallback weight.
func (w Weights) Default() float64 { return w.def }

// Merge returns a copy of w with overrides applied on top.
func (w Weights) Merge(overrides map[string]float64) Weights {
	out := Weights{byRole: make(map[model.Role]float64, len(w.byRole)+len(overrides)), def: w.def}
	for r, v := range w.byRole {
		out.byRole[r] = v
	}
	for name, v := range overrides {
		if v < 0 {
			continue
		}
		out.byRole[model.ParseRole(name)] = v
	}
	return out
}

// Table returns the explicit weights keyed by role name.
func (w Weights) Table() map[string]float64 {
	out := make(map[string]float64, len(w.byRole))
	for r, v := range w.byRole {
		out[string(r)] = v
	}
	return out
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
