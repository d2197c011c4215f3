package factor

import (
	"sort"

	"github.com/rcushen/cassandra/node"
	"github.com/rcushen/cassandra/paramset"
)

// DomainLookup resolves the domain of any variable name a node references,
// including its parents. A Network supplies this from its own node
// registry so a Factor can be built without each node needing to know its
// parents' domains.
type DomainLookup func(variable string) (node.Domain, bool)

// FromNode builds the factor a node contributes to its network's
// factorisation: a functional factor with scope [name] for a continuous
// root, a functional factor with scope sorted({name} ∪ parents) for a
// continuous child, or a tabular factor for a discrete node: scope
// parents++[name] over the CPT for a child, scope [name] over the marginal
// evaluated at each state for a root. A factor is functional exactly when
// some variable in its scope is continuous, so a discrete root's marginal
// is materialised into a table (with θ bound now) rather than kept as a
// closure that could never multiply with its children's tables.
func FromNode(n *node.Node, domainOf DomainLookup, theta paramset.Set, tableCap int) (Factor, error) {
	switch {
	case n.IsRoot() && n.IsDiscrete():
		card := n.Domain().Cardinality()
		values := make([]float64, card)
		for i := 0; i < card; i++ {
			v, err := n.MarginalPDF(float64(i), theta)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return NewTabular([]string{n.Name()}, map[string]int{n.Name(): card}, values, tableCap)

	case n.IsRoot():
		scope := []string{n.Name()}
		domains := map[string]node.Domain{n.Name(): n.Domain()}
		captured := n
		eval := func(a map[string]float64, theta paramset.Set) (float64, error) {
			return captured.MarginalPDF(a[captured.Name()], theta)
		}
		return NewFunctional(scope, domains, eval), nil

	case n.IsContinuous():
		scope := append([]string{n.Name()}, n.Parents()...)
		sort.Strings(scope)
		domains := map[string]node.Domain{n.Name(): n.Domain()}
		for _, p := range n.Parents() {
			if d, ok := domainOf(p); ok {
				domains[p] = d
			}
		}
		captured := n
		eval := func(a map[string]float64, theta paramset.Set) (float64, error) {
			return captured.ConditionalPDF(a[captured.Name()], a, theta)
		}
		return NewFunctional(scope, domains, eval), nil

	default: // discrete child
		parents := n.Parents()
		scope := append(append([]string{}, parents...), n.Name())
		cardinalities := make(map[string]int, len(scope))
		cardinalities[n.Name()] = n.Domain().Cardinality()
		for _, p := range parents {
			if d, ok := domainOf(p); ok {
				cardinalities[p] = d.Cardinality()
			}
		}
		values := n.CPT().Values()
		return NewTabular(scope, cardinalities, values, tableCap)
	}
}
