package node

import "github.com/rcushen/cassandra/paramset"

// Equation is the capability a continuous child node's structural dependency
// on its parents must satisfy: a deterministic real-valued function of the
// parents' values and the system parameters. Expressed as a one-method
// interface rather than a raw function pointer so callers can supply either
// a closure (via EquationFunc) or a dedicated type with its own state.
type Equation interface {
	Evaluate(parents map[string]float64, theta paramset.Set) float64
}

// EquationFunc adapts a plain function to the Equation interface.
type EquationFunc func(parents map[string]float64, theta paramset.Set) float64

// Evaluate calls f.
func (f EquationFunc) Evaluate(parents map[string]float64, theta paramset.Set) float64 {
	return f(parents, theta)
}

// MarginalDensity is the capability a root node's unconditional density must
// satisfy: a non-negative function of the variable's value and the system
// parameters.
type MarginalDensity interface {
	Evaluate(x float64, theta paramset.Set) float64
}

// MarginalDensityFunc adapts a plain function to the MarginalDensity interface.
type MarginalDensityFunc func(x float64, theta paramset.Set) float64

// Evaluate calls f.
func (f MarginalDensityFunc) Evaluate(x float64, theta paramset.Set) float64 {
	return f(x, theta)
}
