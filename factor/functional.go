package factor

import (
	"github.com/rcushen/cassandra/node"
	"github.com/rcushen/cassandra/paramset"
	"github.com/rcushen/cassandra/quadrature"
)

type evalFunc func(assignment map[string]float64, theta paramset.Set) (float64, error)

// Functional is a factor backed by a pdf closure over continuous
// assignments, used whenever any variable in the scope is continuous.
type Functional struct {
	scope   []string
	domains map[string]node.Domain
	eval    evalFunc
}

// NewFunctional builds a functional factor directly from a pdf closure and
// the domain of every variable in scope. FromNode builds every node's
// functional factor through it; tests also call it directly.
func NewFunctional(scope []string, domains map[string]node.Domain, eval evalFunc) *Functional {
	scopeCopy := make([]string, len(scope))
	copy(scopeCopy, scope)
	domainsCopy := make(map[string]node.Domain, len(domains))
	for k, v := range domains {
		domainsCopy[k] = v
	}
	return &Functional{scope: scopeCopy, domains: domainsCopy, eval: eval}
}

// Scope returns the factor's ordered, duplicate-free scope.
func (f *Functional) Scope() []string {
	out := make([]string, len(f.scope))
	copy(out, f.scope)
	return out
}

// Evaluate returns f's pdf value at assignment, threading θ through the
// captured closure.
func (f *Functional) Evaluate(assignment map[string]float64, theta paramset.Set) (float64, error) {
	if missing := missingKeys(f.scope, assignment); len(missing) > 0 {
		return 0, &MissingAssignmentError{Missing: missing, Scope: f.Scope()}
	}
	return f.eval(assignment, theta)
}

// Multiply returns the product of f and other. Both must be Functional;
// mixing with a Tabular factor fails with MixedRepresentationError.
func (f *Functional) Multiply(other Factor) (Factor, error) {
	if other == nil {
		return nil, &TypeError{Reason: "multiply operand is nil"}
	}
	g, ok := other.(*Functional)
	if !ok {
		return nil, &MixedRepresentationError{LeftScope: f.Scope(), RightScope: other.Scope()}
	}

	newScope := sortedUnion(f.scope, g.scope)
	newDomains := make(map[string]node.Domain, len(newScope))
	for k, v := range f.domains {
		newDomains[k] = v
	}
	for k, v := range g.domains {
		newDomains[k] = v
	}

	left, right := f, g
	newEval := func(a map[string]float64, theta paramset.Set) (float64, error) {
		lv, err := left.eval(restrict(a, left.scope), theta)
		if err != nil {
			return 0, err
		}
		rv, err := right.eval(restrict(a, right.scope), theta)
		if err != nil {
			return 0, err
		}
		return lv * rv, nil
	}

	return &Functional{scope: newScope, domains: newDomains, eval: newEval}, nil
}

// Eliminate integrates variable out of f's scope by adaptive quadrature over
// its domain, returning a new Functional over the residual scope. A
// non-converging integral still returns its best-effort value alongside a
// *quadrature.NumericalError, so callers can decide whether to warn or fail.
func (f *Functional) Eliminate(variable string) (Factor, error) {
	domain, ok := f.domains[variable]
	if !ok {
		return nil, &NotInScopeError{Variable: variable, Scope: f.Scope()}
	}
	newScope := removeVariable(f.scope, variable)
	if len(newScope) == 0 {
		return nil, &CollapseToScalarError{Variable: variable}
	}
	lo, hi := domain.Bounds()

	captured := f
	newEval := func(a map[string]float64, theta paramset.Set) (float64, error) {
		var evalErr error
		value, _, qErr := quadrature.Integrate(func(t float64) float64 {
			merged := assignWith(a, variable, t)
			v, err := captured.eval(merged, theta)
			if err != nil {
				evalErr = err
				return 0
			}
			return v
		}, lo, hi, quadrature.DefaultTolerance)
		if evalErr != nil {
			return 0, evalErr
		}
		if qErr != nil {
			return value, qErr
		}
		return value, nil
	}

	newDomains := make(map[string]node.Domain, len(newScope))
	for _, v := range newScope {
		newDomains[v] = f.domains[v]
	}
	return &Functional{scope: newScope, domains: newDomains, eval: newEval}, nil
}

// Domain returns the domain of a scope variable, and whether it is present.
func (f *Functional) Domain(variable string) (node.Domain, bool) {
	d, ok := f.domains[variable]
	return d, ok
}

func restrict(assignment map[string]float64, scope []string) map[string]float64 {
	out := make(map[string]float64, len(scope))
	for _, v := range scope {
		out[v] = assignment[v]
	}
	return out
}
