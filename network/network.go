// Package network implements the directed-acyclic-graph of nodes a query
// runs against: construction-time closure and acyclicity validation, joint
// density evaluation, and factorisation into the algebraic Factor layer.
package network

import (
	"fmt"
	"sort"

	"github.com/rcushen/cassandra/factor"
	"github.com/rcushen/cassandra/node"
	"github.com/rcushen/cassandra/paramset"
)

// Network is an immutable-after-construction collection of nodes forming a
// directed acyclic graph. The graph itself is implicit: every node carries
// its own parent list, and structural validation happens once, here, at
// construction.
type Network struct {
	nodes        map[string]*node.Node
	systemParams map[string]bool
}

// New validates and constructs a Network from a node list. Fails with
// DuplicateNodeError if two nodes share a name, UnknownParentError if a
// child names a parent absent from the list, or NotDAGError if the induced
// parent→child graph contains a cycle.
func New(nodes []*node.Node) (*Network, error) {
	registry := make(map[string]*node.Node, len(nodes))
	for _, n := range nodes {
		if _, exists := registry[n.Name()]; exists {
			return nil, &DuplicateNodeError{Name: n.Name()}
		}
		registry[n.Name()] = n
	}

	for _, n := range nodes {
		for _, parent := range n.Parents() {
			if _, ok := registry[parent]; !ok {
				return nil, &UnknownParentError{Node: n.Name(), Parent: parent}
			}
		}
	}

	if err := checkAcyclic(registry); err != nil {
		return nil, err
	}

	systemParams := make(map[string]bool)
	for _, n := range nodes {
		for _, p := range n.SystemParameterNames() {
			systemParams[p] = true
		}
	}

	return &Network{nodes: registry, systemParams: systemParams}, nil
}

// checkAcyclic runs a topological pass (Kahn's algorithm) over the
// parent→child edges declared by the node set. If the pass cannot consume
// every node, the leftovers (the nodes on a cycle and every node downstream
// of one) are reported in the NotDAGError.
func checkAcyclic(registry map[string]*node.Node) error {
	inDegree := make(map[string]int, len(registry))
	children := make(map[string][]string, len(registry))
	for name := range registry {
		inDegree[name] = 0
	}
	for name, n := range registry {
		for _, parent := range n.Parents() {
			inDegree[name]++
			children[parent] = append(children[parent], name)
		}
	}

	frontier := make([]string, 0, len(registry))
	for name, degree := range inDegree {
		if degree == 0 {
			frontier = append(frontier, name)
		}
	}

	consumed := 0
	for len(frontier) > 0 {
		name := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		consumed++
		for _, child := range children[name] {
			inDegree[child]--
			if inDegree[child] == 0 {
				frontier = append(frontier, child)
			}
		}
	}

	if consumed != len(registry) {
		cyclic := make([]string, 0, len(registry)-consumed)
		for name, degree := range inDegree {
			if degree > 0 {
				cyclic = append(cyclic, name)
			}
		}
		sort.Strings(cyclic)
		return &NotDAGError{Reason: fmt.Sprintf("cycle through %v", cyclic)}
	}
	return nil
}

// Node returns the node owning name, and whether it exists.
func (net *Network) Node(name string) (*node.Node, bool) {
	n, ok := net.nodes[name]
	return n, ok
}

// Nodes returns every node in the network, sorted by variable name.
func (net *Network) Nodes() []*node.Node {
	names := make([]string, 0, len(net.nodes))
	for name := range net.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*node.Node, len(names))
	for i, name := range names {
		out[i] = net.nodes[name]
	}
	return out
}

// MoralGraph returns the undirected moral graph of the network (every
// parent→child edge undirected, every node's parents pairwise "married") as
// a symmetric adjacency map. Elimination-ordering heuristics such as
// min-fill mutate their own copy freely; the map is built fresh per call.
func (net *Network) MoralGraph() map[string]map[string]bool {
	adjacency := make(map[string]map[string]bool, len(net.nodes))
	for name := range net.nodes {
		adjacency[name] = make(map[string]bool)
	}
	connect := func(a, b string) {
		if a == b {
			return
		}
		adjacency[a][b] = true
		adjacency[b][a] = true
	}
	for name, n := range net.nodes {
		parents := n.Parents()
		for i, p := range parents {
			connect(p, name)
			for _, q := range parents[i+1:] {
				connect(p, q)
			}
		}
	}
	return adjacency
}

// DomainOf resolves the domain of any variable in the network; it
// satisfies factor.DomainLookup.
func (net *Network) DomainOf(name string) (node.Domain, bool) {
	n, ok := net.nodes[name]
	if !ok {
		return node.Domain{}, false
	}
	return n.Domain(), true
}

// SystemParameterNames returns the union of every node's system-parameter
// names, sorted for determinism.
func (net *Network) SystemParameterNames() []string {
	names := make([]string, 0, len(net.systemParams))
	for name := range net.systemParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateAssignment checks that variables covers every node, θ covers
// every system parameter any node consumes, and every value lies within its
// variable's domain.
func (net *Network) validateAssignment(variables map[string]float64, theta paramset.Set) error {
	for name := range net.nodes {
		v, ok := variables[name]
		if !ok {
			return &UnknownVariableError{Name: name}
		}
		if !net.nodes[name].Domain().Contains(v) {
			return &DomainViolationError{Name: name, Value: v}
		}
	}
	for name := range net.systemParams {
		if !theta.Has(name) {
			return &UnknownParameterError{Name: name}
		}
	}
	return nil
}

// JointPDF returns the product of every node-local density at the given
// full assignment: marginal_pdf for roots, conditional_pdf for continuous
// children, conditional_prob for discrete children. Fails if variables does
// not cover every node, θ does not cover every consumed system parameter,
// or any value lies outside its domain.
func (net *Network) JointPDF(variables map[string]float64, theta paramset.Set) (float64, error) {
	if err := net.validateAssignment(variables, theta); err != nil {
		return 0, err
	}

	product := 1.0
	for _, n := range net.nodes {
		v, err := nodeLocalDensity(n, variables, theta)
		if err != nil {
			return 0, err
		}
		product *= v
	}
	return product, nil
}

func nodeLocalDensity(n *node.Node, variables map[string]float64, theta paramset.Set) (float64, error) {
	switch {
	case n.IsRoot():
		return n.MarginalPDF(variables[n.Name()], theta)
	case n.IsContinuous():
		return n.ConditionalPDF(variables[n.Name()], variables, theta)
	default:
		parentAssignment := make([]int, len(n.Parents()))
		for i, p := range n.Parents() {
			parentAssignment[i] = int(variables[p])
		}
		return n.ConditionalProb(int(variables[n.Name()]), parentAssignment)
	}
}

// Factorise emits one Factor per node, via factor.FromNode, capping tabular
// factors at tableCap cells (factor.DefaultTableCap if tableCap <= 0). θ is
// bound into any discrete root's materialised table; functional factors
// defer to the θ supplied at evaluation time.
func (net *Network) Factorise(theta paramset.Set, tableCap int) ([]factor.Factor, error) {
	nodes := net.Nodes()
	factors := make([]factor.Factor, 0, len(nodes))
	for _, n := range nodes {
		f, err := factor.FromNode(n, net.DomainOf, theta, tableCap)
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
	return factors, nil
}
