// Package node implements the declarative variable unit a Network is built
// from: a ROOT, described by a user-supplied marginal density, or a CHILD,
// described either by a structural equation plus Gaussian conditional noise
// (continuous) or a tabular conditional probability distribution (discrete).
package node

import (
	"sort"

	"github.com/rcushen/cassandra/paramset"
	"github.com/rcushen/cassandra/quadrature"
)

// Variant tags whether a node is a root (no parents) or a child (has parents).
type Variant int

const (
	Root Variant = iota
	Child
)

// DistributionParameters is the {intercept, slope, scale} triple a
// continuous child's Gaussian conditional noise is built from:
// N(x; intercept + slope·equation(parents, θ), scale). Defaults to {0, 1, 1}.
type DistributionParameters struct {
	Intercept float64
	Slope     float64
	Scale     float64
}

// DefaultDistributionParameters is the identity noise model: mean equal to
// the equation's value, unit scale.
func DefaultDistributionParameters() DistributionParameters {
	return DistributionParameters{Intercept: 0, Slope: 1, Scale: 1}
}

// Node is an immutable-after-construction unit owning one network variable.
type Node struct {
	name         string
	domain       Domain
	parents      []string
	systemParams map[string]bool
	variant      Variant

	marginal       MarginalDensity
	marginalParams map[string]float64

	equation   Equation
	distParams DistributionParameters

	cpt *CPT
}

// Name returns the variable name this node owns.
func (n *Node) Name() string { return n.name }

// Domain returns the node's variable domain.
func (n *Node) Domain() Domain { return n.domain }

// Parents returns the ordered parent variable names (empty for a root).
func (n *Node) Parents() []string {
	out := make([]string, len(n.parents))
	copy(out, n.parents)
	return out
}

// SystemParameterNames returns the names of the system parameters this
// node's equation/density consumes, sorted for determinism.
func (n *Node) SystemParameterNames() []string {
	names := make([]string, 0, len(n.systemParams))
	for name := range n.systemParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRoot reports whether this node is a root (no parents).
func (n *Node) IsRoot() bool { return n.variant == Root }

// IsChild reports whether this node is a child (has parents).
func (n *Node) IsChild() bool { return n.variant == Child }

// IsDiscrete reports whether the node's own variable is discrete.
func (n *Node) IsDiscrete() bool { return n.domain.IsDiscrete() }

// IsContinuous reports whether the node's own variable is continuous.
func (n *Node) IsContinuous() bool { return n.domain.IsContinuous() }

// CPT returns the discrete child's conditional probability table, or nil if
// this node is not a discrete child.
func (n *Node) CPT() *CPT { return n.cpt }

// NewRoot constructs a root node with a user-supplied marginal density.
// Fails with InvalidNodeError if marginal is nil.
func NewRoot(name string, domain Domain, systemParameterNames []string, marginal MarginalDensity, marginalParameters map[string]float64) (*Node, error) {
	if marginal == nil {
		return nil, &InvalidNodeError{Name: name, Reason: "root node requires a marginal density"}
	}
	return &Node{
		name:           name,
		domain:         domain,
		parents:        nil,
		systemParams:   toSet(systemParameterNames),
		variant:        Root,
		marginal:       marginal,
		marginalParams: copyParams(marginalParameters),
	}, nil
}

// NewContinuousChild constructs a continuous child node: a deterministic
// structural equation over its parents, augmented with Gaussian conditional
// noise described by distParams. Fails with InvalidNodeError if parents is
// empty, equation is nil, or domain is not continuous.
func NewContinuousChild(name string, domain Domain, parents []string, systemParameterNames []string, equation Equation, distParams DistributionParameters) (*Node, error) {
	if len(parents) == 0 {
		return nil, &InvalidNodeError{Name: name, Reason: "continuous child requires at least one parent"}
	}
	if equation == nil {
		return nil, &InvalidNodeError{Name: name, Reason: "continuous child requires a structural equation"}
	}
	if !domain.IsContinuous() {
		return nil, &InvalidNodeError{Name: name, Reason: "continuous child requires a continuous domain"}
	}
	if distParams.Scale <= 0 {
		return nil, &InvalidNodeError{Name: name, Reason: "conditional noise scale must be positive"}
	}
	parentsCopy := make([]string, len(parents))
	copy(parentsCopy, parents)
	return &Node{
		name:         name,
		domain:       domain,
		parents:      parentsCopy,
		systemParams: toSet(systemParameterNames),
		variant:      Child,
		equation:     equation,
		distParams:   distParams,
	}, nil
}

// NewDiscreteChild constructs a discrete child node from a conditional
// probability table. Fails with InvalidNodeError if domain is not discrete,
// parents is empty, the CPT's own cardinality disagrees with the domain, or
// the CPT's parent-cardinality shape disagrees with parentCardinalities.
func NewDiscreteChild(name string, domain Domain, parents []string, parentCardinalities []int, cpt *CPT) (*Node, error) {
	if len(parents) == 0 {
		return nil, &InvalidNodeError{Name: name, Reason: "discrete child requires at least one parent"}
	}
	if len(parents) != len(parentCardinalities) {
		return nil, &InvalidNodeError{Name: name, Reason: "parent list and parent-cardinality list must have matching length"}
	}
	if !domain.IsDiscrete() {
		return nil, &InvalidNodeError{Name: name, Reason: "discrete child requires a discrete domain"}
	}
	if cpt == nil {
		return nil, &InvalidNodeError{Name: name, Reason: "discrete child requires a conditional probability table"}
	}
	if cpt.Cardinality() != domain.Cardinality() {
		return nil, &InvalidNodeError{Name: name, Reason: "CPT's own cardinality disagrees with the node's domain"}
	}
	gotCards := cpt.ParentCardinalities()
	if len(gotCards) != len(parentCardinalities) {
		return nil, &InvalidNodeError{Name: name, Reason: "CPT shape disagrees with declared parent cardinalities"}
	}
	for i, c := range parentCardinalities {
		if gotCards[i] != c {
			return nil, &InvalidNodeError{Name: name, Reason: "CPT shape disagrees with declared parent cardinalities"}
		}
	}
	parentsCopy := make([]string, len(parents))
	copy(parentsCopy, parents)
	return &Node{
		name:    name,
		domain:  domain,
		parents: parentsCopy,
		variant: Child,
		cpt:     cpt,
	}, nil
}

// MarginalPDF evaluates the root node's marginal density at x. Returns 0 if
// x is outside the node's domain. Fails with NotRootError if n is a child.
func (n *Node) MarginalPDF(x float64, theta paramset.Set) (float64, error) {
	if n.variant != Root {
		return 0, &NotRootError{Name: n.name}
	}
	if !n.domain.Contains(x) {
		return 0, nil
	}
	return n.marginal.Evaluate(x, mergedParams(n.marginalParams, theta)), nil
}

// Equation evaluates the continuous child's structural equation over its
// parents' values. Fails with NotChildError if n is a root.
func (n *Node) Equation(parents map[string]float64, theta paramset.Set) (float64, error) {
	if n.variant != Child || n.equation == nil {
		return 0, &NotChildError{Name: n.name}
	}
	return n.equation.Evaluate(parents, theta), nil
}

// ConditionalPDF evaluates the continuous child's conditional density
// N(x; intercept + slope·equation(parents, θ), scale). Returns 0 if x is
// outside the node's domain. Fails with NotChildError if n is a root or a
// discrete child.
func (n *Node) ConditionalPDF(x float64, parents map[string]float64, theta paramset.Set) (float64, error) {
	if n.variant != Child || n.equation == nil {
		return 0, &NotChildError{Name: n.name}
	}
	if !n.domain.Contains(x) {
		return 0, nil
	}
	fval := n.equation.Evaluate(parents, theta)
	mean := n.distParams.Intercept + n.distParams.Slope*fval
	return quadrature.NormalDensity(x, mean, n.distParams.Scale), nil
}

// ConditionalProb returns the discrete child's CPT entry P(self = i | parents
// = parentAssignment). Fails with NotChildError if n is a root or a
// continuous child, and with OutOfRangeError if i or any parent index
// exceeds its cardinality.
func (n *Node) ConditionalProb(i int, parentAssignment []int) (float64, error) {
	if n.variant != Child || n.cpt == nil {
		return 0, &NotChildError{Name: n.name}
	}
	if i < 0 || i >= n.cpt.Cardinality() {
		return 0, &OutOfRangeError{Name: n.name, Index: i, Bound: n.cpt.Cardinality()}
	}
	v, err := n.cpt.At(i, parentAssignment)
	if err != nil {
		parentCards := n.cpt.ParentCardinalities()
		for k, a := range parentAssignment {
			if k < len(parentCards) && (a < 0 || a >= parentCards[k]) {
				return 0, &OutOfRangeError{Name: n.name, Index: a, Bound: parentCards[k]}
			}
		}
		return 0, &OutOfRangeError{Name: n.name, Index: i, Bound: n.cpt.Cardinality()}
	}
	return v, nil
}

// DistributionParameters returns the continuous child's {intercept, slope,
// scale} triple.
func (n *Node) DistributionParameters() DistributionParameters { return n.distParams }

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func copyParams(params map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// mergedParams exposes a root's own distribution parameters merged with the
// query-time system parameters θ to the marginal density closure; the
// node's own parameters win on a name collision.
func mergedParams(distributionParams map[string]float64, theta paramset.Set) paramset.Set {
	merged := make(map[string]float64, len(distributionParams)+len(theta.Names()))
	for _, name := range theta.Names() {
		v, _ := theta.Get(name)
		merged[name] = v
	}
	for k, v := range distributionParams {
		merged[k] = v
	}
	return paramset.New(merged)
}
