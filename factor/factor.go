// Package factor implements the algebraic layer variable elimination
// operates on: a Factor over an ordered scope of variable names, supporting
// evaluation, pointwise multiplication, and elimination of a single
// variable by quadrature (continuous, functional representation) or
// summation (discrete, tabular representation). The two representations
// are disjoint (a single query is homogeneous in representation) and
// Multiply refuses to mix them.
package factor

import (
	"sort"

	"github.com/rcushen/cassandra/paramset"
)

// Factor is a non-negative function over its Scope, produced from a node
// and composed transiently during elimination.
type Factor interface {
	// Scope returns the ordered, duplicate-free sequence of variable names
	// this factor depends on.
	Scope() []string

	// Evaluate returns the factor's value at the given assignment, with θ
	// threaded through for any underlying equation/density. Fails with
	// MissingAssignmentError if assignment does not cover the full scope.
	Evaluate(assignment map[string]float64, theta paramset.Set) (float64, error)

	// Multiply returns the product of this factor and other, with scope
	// equal to the union of both scopes: sorted for Functional factors, and
	// for Tabular factors this factor's scope followed by other's remaining
	// variables in their own order. Fails with
	// MixedRepresentationError if the two factors use different physical
	// representations, or TypeError if other is nil.
	Multiply(other Factor) (Factor, error)

	// Eliminate returns a new factor with variable removed from the scope,
	// collapsing it by quadrature (functional) or axis-sum (tabular).
	// Fails with NotInScopeError if variable is not in scope, or
	// CollapseToScalarError if scope consists only of variable.
	Eliminate(variable string) (Factor, error)
}

func contains(scope []string, name string) bool {
	for _, s := range scope {
		if s == name {
			return true
		}
	}
	return false
}

// sortedUnion returns the sorted set union of two variable-name sequences.
func sortedUnion(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func removeVariable(scope []string, variable string) []string {
	out := make([]string, 0, len(scope))
	for _, s := range scope {
		if s != variable {
			out = append(out, s)
		}
	}
	return out
}

func missingKeys(scope []string, assignment map[string]float64) []string {
	var missing []string
	for _, v := range scope {
		if _, ok := assignment[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

func assignWith(base map[string]float64, variable string, value float64) map[string]float64 {
	out := make(map[string]float64, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[variable] = value
	return out
}
