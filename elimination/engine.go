// Package elimination implements the sum-product variable-elimination
// engine: given a Network, it factorises, eliminates non-query variables by
// the chosen OrderingFunc, and normalises the residual factor to answer
// conditional queries P(Q ∈ R | E = e; θ). A single query is homogeneous in
// representation: either fully continuous (functional factors, quadrature)
// or fully discrete (tabular factors, axis sums). MAP and the discrete
// Query fast path operate over all-discrete networks only.
package elimination

import (
	"fmt"

	"github.com/rcushen/cassandra/factor"
	"github.com/rcushen/cassandra/network"
	"github.com/rcushen/cassandra/paramset"
	"github.com/rcushen/cassandra/quadrature"
)

// VariableElimination orchestrates sum-product inference over a Network.
// It holds no mutable state beyond its configuration: Network, Node, and
// Factor are all immutable post-construction, so concurrent queries against
// the same engine are safe without locking.
type VariableElimination struct {
	net      *network.Network
	tableCap int
	ordering OrderingFunc
}

// New builds a VariableElimination engine over net. tableCap bounds tabular
// factor size (factor.DefaultTableCap if <= 0); ordering chooses the
// elimination order (InsertionOrder if nil).
func New(net *network.Network, tableCap int, ordering OrderingFunc) *VariableElimination {
	if ordering == nil {
		ordering = InsertionOrder
	}
	if tableCap <= 0 {
		tableCap = factor.DefaultTableCap
	}
	return &VariableElimination{net: net, tableCap: tableCap, ordering: ordering}
}

// residualOf returns every network variable except query and the evidence
// keys, in the network's own (sorted) node order: the set elimination must
// sum/integrate away.
func (ve *VariableElimination) residualOf(query string, evidence map[string]float64) []string {
	residual := make([]string, 0, len(ve.net.Nodes()))
	for _, n := range ve.net.Nodes() {
		name := n.Name()
		if name == query {
			continue
		}
		if _, isEvidence := evidence[name]; isEvidence {
			continue
		}
		residual = append(residual, name)
	}
	return residual
}

// validateQuery checks that query and evidence names exist, the query's
// range shape matches its domain type, a discrete range is a subset of the
// query's states, evidence values lie in their domains, and θ covers every
// system parameter some node consumes.
func (ve *VariableElimination) validateQuery(query string, rng Range, evidence map[string]float64, theta paramset.Set) error {
	qNode, ok := ve.net.Node(query)
	if !ok {
		return &network.UnknownVariableError{Name: query}
	}
	if rng.IsContinuous() != qNode.IsContinuous() {
		return &RangeMismatchError{Query: query}
	}
	if !rng.IsContinuous() {
		for _, i := range rng.Indices() {
			if !qNode.Domain().ContainsIndex(i) {
				return &network.DomainViolationError{Name: query, Value: float64(i)}
			}
		}
	}
	for name, v := range evidence {
		n, ok := ve.net.Node(name)
		if !ok {
			return &network.UnknownVariableError{Name: name}
		}
		if !n.Domain().Contains(v) {
			return &network.DomainViolationError{Name: name, Value: v}
		}
	}
	if missing := paramset.Missing(theta, ve.net.SystemParameterNames()); len(missing) > 0 {
		return &network.UnknownParameterError{Name: missing[0]}
	}
	return nil
}

// eliminateAll factorises the network, eliminates every residual variable
// under ordering, and multiplies what remains into a single residual factor
// over {query} ∪ keys(evidence).
func (ve *VariableElimination) eliminateAll(query string, evidence map[string]float64, theta paramset.Set) (factor.Factor, error) {
	factors, err := ve.net.Factorise(theta, ve.tableCap)
	if err != nil {
		return nil, err
	}

	order := ve.ordering(ve.net, ve.residualOf(query, evidence))
	for _, v := range order {
		var relevant, irrelevant []factor.Factor
		for _, f := range factors {
			if contains(f.Scope(), v) {
				relevant = append(relevant, f)
			} else {
				irrelevant = append(irrelevant, f)
			}
		}
		if len(relevant) == 0 {
			// v does not appear in any remaining factor; nothing to do.
			continue
		}

		psi := relevant[0]
		for i := 1; i < len(relevant); i++ {
			product, err := psi.Multiply(relevant[i])
			if err != nil {
				return nil, err
			}
			psi = product
		}

		if len(psi.Scope()) == 1 {
			// psi depends only on v itself, so eliminating it would
			// collapse to a scalar. The scalar is constant across every
			// evaluation of the residual factor and cancels in Infer's
			// numerator/denominator ratio; drop it instead of eliminating.
			factors = irrelevant
			continue
		}

		tau, err := psi.Eliminate(v)
		if err != nil {
			return nil, err
		}
		factors = append(irrelevant, tau)
	}

	if len(factors) == 0 {
		return nil, fmt.Errorf("elimination: no factors remain for query %q", query)
	}
	phi := factors[0]
	for i := 1; i < len(factors); i++ {
		product, err := phi.Multiply(factors[i])
		if err != nil {
			return nil, err
		}
		phi = product
	}
	return phi, nil
}

// Infer computes P(query ∈ rng | evidence; θ) by sum-product variable
// elimination: factorise, eliminate every residual variable, normalise the
// residual factor over the query's full domain, and integrate/sum it over
// rng. Evidence is bound into the assignment map at evaluation time, never
// eliminated. Returns a best-effort value alongside a
// *quadrature.NumericalError when the normaliser or range integral fails to
// converge; a non-convergence inside the integral of an eliminated variable
// is returned as that error with a zero value. Returns
// *UnsupportedEvidenceError when the evidence yields a zero normaliser.
func (ve *VariableElimination) Infer(query string, rng Range, evidence map[string]float64, theta paramset.Set) (float64, error) {
	if err := ve.validateQuery(query, rng, evidence, theta); err != nil {
		return 0, err
	}

	qNode, _ := ve.net.Node(query)
	phi, err := ve.eliminateAll(query, evidence, theta)
	if err != nil {
		return 0, err
	}

	evalAt := func(t float64) (float64, error) {
		assignment := make(map[string]float64, len(evidence)+1)
		for k, v := range evidence {
			assignment[k] = v
		}
		assignment[query] = t
		return phi.Evaluate(assignment, theta)
	}

	if rng.IsContinuous() {
		return inferContinuous(qNode.Domain().Bounds, evalAt, rng, query, evidence)
	}
	return inferDiscrete(qNode.Domain().Cardinality(), evalAt, rng, query, evidence)
}

func inferContinuous(domainBounds func() (float64, float64), evalAt func(float64) (float64, error), rng Range, query string, evidence map[string]float64) (float64, error) {
	lo, hi := domainBounds()

	var evalErr error
	integrand := func(t float64) float64 {
		v, err := evalAt(t)
		if err != nil {
			evalErr = err
			return 0
		}
		return v
	}

	alpha, _, alphaErr := quadrature.Integrate(integrand, lo, hi, quadrature.DefaultTolerance)
	if evalErr != nil {
		return 0, evalErr
	}
	if alpha == 0 {
		return 0, &UnsupportedEvidenceError{Query: query, Evidence: evidence}
	}

	rlo, rhi := rng.Bounds()
	numerator, _, numeratorErr := quadrature.Integrate(integrand, rlo, rhi, quadrature.DefaultTolerance)
	if evalErr != nil {
		return 0, evalErr
	}

	result := numerator / alpha
	if numeratorErr != nil {
		return result, numeratorErr
	}
	if alphaErr != nil {
		return result, alphaErr
	}
	return result, nil
}

func inferDiscrete(card int, evalAt func(float64) (float64, error), rng Range, query string, evidence map[string]float64) (float64, error) {
	alpha := 0.0
	for i := 0; i < card; i++ {
		v, err := evalAt(float64(i))
		if err != nil {
			return 0, err
		}
		alpha += v
	}
	if alpha == 0 {
		return 0, &UnsupportedEvidenceError{Query: query, Evidence: evidence}
	}

	numerator := 0.0
	for _, i := range rng.Indices() {
		v, err := evalAt(float64(i))
		if err != nil {
			return 0, err
		}
		numerator += v
	}
	return numerator / alpha, nil
}
