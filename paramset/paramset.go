// Package paramset provides the keyed set of external system parameters (θ)
// threaded through node densities and equations. A parameter is a scalar
// never treated as a random variable and never a member of any factor scope.
package paramset

// Set is an immutable-after-construction keyed set of scalar parameters.
type Set struct {
	values map[string]float64
}

// New creates a Set from a plain map, copying it so later mutation of the
// caller's map cannot affect the Set.
func New(values map[string]float64) Set {
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Set{values: copied}
}

// Empty returns a Set with no parameters.
func Empty() Set {
	return Set{values: map[string]float64{}}
}

// Get returns the value of name and whether it was present.
func (s Set) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name is present in the set.
func (s Set) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns the parameter names in the set, in no particular order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	return names
}

// Missing returns the subset of required that is not present in s.
func Missing(s Set, required []string) []string {
	var missing []string
	for _, name := range required {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
