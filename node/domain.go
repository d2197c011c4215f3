package node

import "fmt"

// Domain describes the set of values a variable may take: either a closed
// continuous interval [Lo, Hi] or a finite discrete cardinality, with
// assignments understood as integers in [0, Cardinality).
type Domain struct {
	continuous  bool
	lo, hi      float64
	cardinality int
}

// NewContinuousDomain builds a continuous domain over the closed interval
// [lo, hi]. Returns an error if lo is not strictly less than hi.
func NewContinuousDomain(lo, hi float64) (Domain, error) {
	if !(lo < hi) {
		return Domain{}, fmt.Errorf("domain: lower bound %g must be strictly less than upper bound %g", lo, hi)
	}
	return Domain{continuous: true, lo: lo, hi: hi}, nil
}

// NewDiscreteDomain builds a discrete domain of the given cardinality.
// Returns an error if card is not positive.
func NewDiscreteDomain(card int) (Domain, error) {
	if card < 1 {
		return Domain{}, fmt.Errorf("domain: cardinality must be at least 1, got %d", card)
	}
	return Domain{continuous: false, cardinality: card}, nil
}

// IsContinuous reports whether the domain is a continuous interval.
func (d Domain) IsContinuous() bool { return d.continuous }

// IsDiscrete reports whether the domain is a finite cardinality.
func (d Domain) IsDiscrete() bool { return !d.continuous }

// Bounds returns the interval endpoints of a continuous domain.
func (d Domain) Bounds() (lo, hi float64) { return d.lo, d.hi }

// Cardinality returns the cardinality of a discrete domain.
func (d Domain) Cardinality() int { return d.cardinality }

// Contains reports whether x is a member of the domain: within [lo, hi] for
// continuous domains, or an integer in [0, cardinality) for discrete ones.
func (d Domain) Contains(x float64) bool {
	if d.continuous {
		return x >= d.lo && x <= d.hi
	}
	i := int(x)
	return float64(i) == x && i >= 0 && i < d.cardinality
}

// ContainsIndex reports whether i is a valid discrete assignment.
func (d Domain) ContainsIndex(i int) bool {
	if d.continuous {
		return false
	}
	return i >= 0 && i < d.cardinality
}

func (d Domain) String() string {
	if d.continuous {
		return fmt.Sprintf("[%g, %g]", d.lo, d.hi)
	}
	return fmt.Sprintf("{0..%d}", d.cardinality-1)
}
