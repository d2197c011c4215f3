package elimination

import (
	"github.com/rcushen/cassandra/factor"
	"github.com/rcushen/cassandra/network"
	"github.com/rcushen/cassandra/paramset"
)

// MAP computes the most probable explanation for every non-evidence
// variable of an all-discrete network: the assignment maximising the
// (unnormalised) joint probability given evidence, by max-product variable
// elimination with back-pointer traceback. Fails with *UnsupportedMAPError
// if the network contains a continuous variable.
func (ve *VariableElimination) MAP(evidence map[string]int) (map[string]int, error) {
	for _, n := range ve.net.Nodes() {
		if n.IsContinuous() {
			return nil, &UnsupportedMAPError{Node: n.Name()}
		}
	}
	for name, v := range evidence {
		n, ok := ve.net.Node(name)
		if !ok {
			return nil, &network.UnknownVariableError{Name: name}
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
			return nil, &UnsupportedMAPError{Node: firstScopeName(f.Scope())}
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
		if _, isEvidence := evidence[n.Name()]; !isEvidence {
			residual = append(residual, n.Name())
		}
	}
	order := ve.ordering(ve.net, residual)

	type backtrackFrame struct {
		variable string
		scope    []string
		cards    map[string]int
		argmax   []int
	}
	frames := make([]backtrackFrame, 0, len(order))

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

		tau, argmax, err := psi.MaxEliminate(v)
		if err != nil {
			return nil, err
		}
		cards := make(map[string]int, len(tau.Scope()))
		for _, s := range tau.Scope() {
			c, _ := tau.Cardinality(s)
			cards[s] = c
		}
		frames = append(frames, backtrackFrame{variable: v, scope: tau.Scope(), cards: cards, argmax: argmax})
		active = append(irrelevant, tau)
	}

	assignment := make(map[string]int, len(residual)+len(evidence))
	for i := len(frames) - 1; i >= 0; i-- {
		fr := frames[i]
		idx := 0
		for _, s := range fr.scope {
			idx = idx*fr.cards[s] + assignment[s]
		}
		assignment[fr.variable] = fr.argmax[idx]
	}
	for name, v := range evidence {
		assignment[name] = v
	}
	return assignment, nil
}

// firstScopeName names the offending factor in an error message when a
// non-Tabular factor turns up in what must be an all-discrete network.
func firstScopeName(scope []string) string {
	if len(scope) == 0 {
		return "<empty scope>"
	}
	return scope[0]
}
