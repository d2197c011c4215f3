package elimination

import (
	"github.com/rcushen/cassandra/factor"
	"github.com/rcushen/cassandra/network"
	"github.com/rcushen/cassandra/paramset"
)

// Query answers a discrete conditional query P(query | evidence) by
// reducing every factor by evidence up front rather than carrying evidence
// in the final assignment map; the two treatments produce identical
// results, but reduction shrinks every table before elimination begins.
// Returns the normalised probability distribution over query's states,
// indexed by state. Fails with *DiscreteOnlyError if query, any evidence
// variable, or any other network variable is continuous.
func (ve *VariableElimination) Query(query string, evidence map[string]int) ([]float64, error) {
	qNode, ok := ve.net.Node(query)
	if !ok {
		return nil, &network.UnknownVariableError{Name: query}
	}
	if qNode.IsContinuous() {
		return nil, &DiscreteOnlyError{Node: query}
	}
	for name, v := range evidence {
		n, ok := ve.net.Node(name)
		if !ok {
			return nil, &network.UnknownVariableError{Name: name}
		}
		if n.IsContinuous() {
			return nil, &DiscreteOnlyError{Node: name}
		}
		if !n.Domain().ContainsIndex(v) {
			return nil, &network.DomainViolationError{Name: name, Value: float64(v)}
		}
	}

	factors, err := ve.net.Factorise(paramset.Empty(), ve.tableCap)
	if err != nil {
		return nil, err
	}
	active := make([]*factor.Tabular, 0, len(factors))
	for _, f := range factors {
		t, ok := f.(*factor.Tabular)
		if !ok {
			return nil, &DiscreteOnlyError{Node: firstScopeName(f.Scope())}
		}
		for name, v := range evidence {
			if contains(t.Scope(), name) {
				reduced, err := t.Reduce(name, v)
				if err != nil {
					return nil, err
				}
				t = reduced
			}
		}
		active = append(active, t)
	}

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
	order := ve.ordering(ve.net, residual)

	for _, v := range order {
		var relevant, irrelevant []*factor.Tabular
		for _, t := range active {
			if contains(t.Scope(), v) {
				relevant = append(relevant, t)
			} else {
				irrelevant = append(irrelevant, t)
			}
		}
		if len(relevant) == 0 {
			continue
		}

		psi := relevant[0]
		for i := 1; i < len(relevant); i++ {
			product, err := psi.Multiply(relevant[i])
			if err != nil {
				return nil, err
			}
			psi = product.(*factor.Tabular)
		}

		if len(psi.Scope()) == 1 {
			active = irrelevant
			continue
		}

		tau, err := psi.Eliminate(v)
		if err != nil {
			return nil, err
		}
		eliminated, ok := tau.(*factor.Tabular)
		if !ok {
			return nil, &DiscreteOnlyError{Node: v}
		}
		active = append(irrelevant, eliminated)
	}

	phi := active[0]
	for i := 1; i < len(active); i++ {
		product, err := phi.Multiply(active[i])
		if err != nil {
			return nil, err
		}
		phi = product.(*factor.Tabular)
	}

	card := qNode.Domain().Cardinality()
	dist := make([]float64, card)
	total := 0.0
	evidenceF := make(map[string]float64, len(evidence))
	for name, v := range evidence {
		evidenceF[name] = float64(v)
	}
	for i := 0; i < card; i++ {
		assignment := make(map[string]float64, len(evidenceF)+1)
		for k, v := range evidenceF {
			assignment[k] = v
		}
		assignment[query] = float64(i)
		v, err := phi.Evaluate(assignment, paramset.Empty())
		if err != nil {
			return nil, err
		}
		dist[i] = v
		total += v
	}
	if total == 0 {
		return nil, &UnsupportedEvidenceError{Query: query, Evidence: evidenceF}
	}
	for i := range dist {
		dist[i] /= total
	}
	return dist, nil
}
