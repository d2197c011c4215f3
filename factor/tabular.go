package factor

import (
	"fmt"

	"github.com/rcushen/cassandra/paramset"
)

// DefaultTableCap is the default maximum number of cells a Tabular factor
// may occupy.
const DefaultTableCap = 10_000_000

// Tabular is a factor backed by an N-dimensional array over discrete
// assignments, one axis per scope variable bound by that variable's
// cardinality.
type Tabular struct {
	scope         []string
	cardinalities map[string]int
	values        []float64
	cap           int
}

// NewTabular builds a tabular factor from a flat, row-major array of
// values, axis i indexed by scope[i] with bound cardinalities[scope[i]].
// Fails with TableTooLargeError if the scope's cell product exceeds cap
// (use DefaultTableCap when the caller has no specific requirement).
func NewTabular(scope []string, cardinalities map[string]int, values []float64, cap int) (*Tabular, error) {
	if cap <= 0 {
		cap = DefaultTableCap
	}
	cells := 1
	for _, v := range scope {
		cells *= cardinalities[v]
	}
	if cells > cap {
		return nil, &TableTooLargeError{Scope: append([]string(nil), scope...), Cells: cells, Cap: cap}
	}
	scopeCopy := make([]string, len(scope))
	copy(scopeCopy, scope)
	cardsCopy := make(map[string]int, len(cardinalities))
	for k, v := range cardinalities {
		cardsCopy[k] = v
	}
	valuesCopy := make([]float64, len(values))
	copy(valuesCopy, values)
	return &Tabular{scope: scopeCopy, cardinalities: cardsCopy, values: valuesCopy, cap: cap}, nil
}

// Scope returns the factor's ordered scope (parents-first, as constructed).
func (t *Tabular) Scope() []string {
	out := make([]string, len(t.scope))
	copy(out, t.scope)
	return out
}

// Cardinality returns the cardinality of a scope variable.
func (t *Tabular) Cardinality(variable string) (int, bool) {
	c, ok := t.cardinalities[variable]
	return c, ok
}

// Values returns the flat row-major backing array.
func (t *Tabular) Values() []float64 {
	out := make([]float64, len(t.values))
	copy(out, t.values)
	return out
}

func (t *Tabular) index(assignment map[string]float64) (int, error) {
	idx := 0
	for _, v := range t.scope {
		card := t.cardinalities[v]
		x := assignment[v]
		i := int(x)
		if float64(i) != x || i < 0 || i >= card {
			return 0, &MissingAssignmentError{Missing: []string{v}, Scope: t.Scope()}
		}
		idx = idx*card + i
	}
	return idx, nil
}

// Evaluate returns the table entry at assignment. θ is accepted for
// interface symmetry with Functional but unused: discrete CPT entries do not
// depend on system parameters.
func (t *Tabular) Evaluate(assignment map[string]float64, theta paramset.Set) (float64, error) {
	if missing := missingKeys(t.scope, assignment); len(missing) > 0 {
		return 0, &MissingAssignmentError{Missing: missing, Scope: t.Scope()}
	}
	idx, err := t.index(assignment)
	if err != nil {
		return 0, err
	}
	return t.values[idx], nil
}

// Multiply returns the broadcast product of t and other. Both must be
// Tabular; mixing with a Functional factor fails with
// MixedRepresentationError.
func (t *Tabular) Multiply(other Factor) (Factor, error) {
	if other == nil {
		return nil, &TypeError{Reason: "multiply operand is nil"}
	}
	u, ok := other.(*Tabular)
	if !ok {
		return nil, &MixedRepresentationError{LeftScope: t.Scope(), RightScope: other.Scope()}
	}

	newScope := concatDedup(t.scope, u.scope)
	newCards := make(map[string]int, len(newScope))
	for _, v := range newScope {
		if c, ok := t.cardinalities[v]; ok {
			newCards[v] = c
		} else {
			newCards[v] = u.cardinalities[v]
		}
	}

	cells := 1
	for _, v := range newScope {
		cells *= newCards[v]
	}
	cap := t.cap
	if u.cap < cap {
		cap = u.cap
	}
	if cells > cap {
		return nil, &TableTooLargeError{Scope: newScope, Cells: cells, Cap: cap}
	}

	values := make([]float64, cells)
	assignment := make([]int, len(newScope))
	for flat := 0; flat < cells; flat++ {
		unflatten(flat, newScope, newCards, assignment)
		lv := t.valueAt(newScope, assignment)
		rv := u.valueAt(newScope, assignment)
		values[flat] = lv * rv
	}

	return &Tabular{scope: newScope, cardinalities: newCards, values: values, cap: cap}, nil
}

// valueAt looks up t's value given a full assignment expressed over the
// joined scope's variable order, projecting down to t's own scope.
func (t *Tabular) valueAt(jointScope []string, jointAssignment []int) float64 {
	idx := 0
	for _, v := range t.scope {
		card := t.cardinalities[v]
		a := lookup(jointScope, jointAssignment, v)
		idx = idx*card + a
	}
	return t.values[idx]
}

func lookup(scope []string, assignment []int, variable string) int {
	for i, v := range scope {
		if v == variable {
			return assignment[i]
		}
	}
	return 0
}

func unflatten(flat int, scope []string, cardinalities map[string]int, out []int) {
	for i := len(scope) - 1; i >= 0; i-- {
		card := cardinalities[scope[i]]
		out[i] = flat % card
		flat /= card
	}
}

func concatDedup(a, b []string) []string {
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
	return out
}

// Eliminate sums variable out of the table along its axis, returning a new
// Tabular over the residual scope.
func (t *Tabular) Eliminate(variable string) (Factor, error) {
	card, ok := t.cardinalities[variable]
	if !ok {
		return nil, &NotInScopeError{Variable: variable, Scope: t.Scope()}
	}
	newScope := removeVariable(t.scope, variable)
	if len(newScope) == 0 {
		return nil, &CollapseToScalarError{Variable: variable}
	}

	newCards := make(map[string]int, len(newScope))
	cells := 1
	for _, v := range newScope {
		newCards[v] = t.cardinalities[v]
		cells *= newCards[v]
	}

	values := make([]float64, cells)
	assignment := make([]int, len(newScope))
	for flat := 0; flat < cells; flat++ {
		unflatten(flat, newScope, newCards, assignment)
		sum := 0.0
		for i := 0; i < card; i++ {
			full := make([]string, len(newScope)+1)
			copy(full, newScope)
			full[len(newScope)] = variable
			fullAssignment := make([]int, len(assignment)+1)
			copy(fullAssignment, assignment)
			fullAssignment[len(assignment)] = i
			sum += t.valueAt(full, fullAssignment)
		}
		values[flat] = sum
	}

	return &Tabular{scope: newScope, cardinalities: newCards, values: values, cap: t.cap}, nil
}

// Reduce fixes variable to value, dropping it from the scope: the evidence
// early-reduction fast path used by elimination.Query and elimination.MAP,
// which resolve every non-evidence variable rather than integrating a
// single query range.
func (t *Tabular) Reduce(variable string, value int) (*Tabular, error) {
	card, ok := t.cardinalities[variable]
	if !ok {
		return nil, &NotInScopeError{Variable: variable, Scope: t.Scope()}
	}
	if value < 0 || value >= card {
		return nil, fmt.Errorf("tabular: reduce value %d out of range [0, %d) for %q", value, card, variable)
	}
	newScope := removeVariable(t.scope, variable)
	newCards := make(map[string]int, len(newScope))
	cells := 1
	for _, v := range newScope {
		newCards[v] = t.cardinalities[v]
		cells *= newCards[v]
	}

	values := make([]float64, cells)
	assignment := make([]int, len(newScope))
	full := make([]string, len(newScope)+1)
	copy(full, newScope)
	full[len(newScope)] = variable
	fullAssignment := make([]int, len(newScope)+1)
	fullAssignment[len(newScope)] = value
	for flat := 0; flat < cells; flat++ {
		unflatten(flat, newScope, newCards, assignment)
		copy(fullAssignment, assignment)
		values[flat] = t.valueAt(full, fullAssignment)
	}

	if len(newScope) == 0 {
		return &Tabular{scope: nil, cardinalities: map[string]int{}, values: values, cap: t.cap}, nil
	}
	return &Tabular{scope: newScope, cardinalities: newCards, values: values, cap: t.cap}, nil
}

// MaxEliminate maximises variable out of the table (max-product elimination,
// the combinator elimination.MAP needs instead of Eliminate's sum-product).
// Besides the max-reduced table over the residual scope, it returns a
// parallel argmax slice: for the assignment at flat index i of the residual
// scope, argmax[i] is the value of variable that attained the maximum.
// Unlike Eliminate, a lone scope variable is permitted to collapse; MAP
// needs every variable resolved, including the last one in an elimination
// order, so the caller (not MaxEliminate) decides what an empty residual
// scope means.
func (t *Tabular) MaxEliminate(variable string) (*Tabular, []int, error) {
	card, ok := t.cardinalities[variable]
	if !ok {
		return nil, nil, &NotInScopeError{Variable: variable, Scope: t.Scope()}
	}
	newScope := removeVariable(t.scope, variable)
	newCards := make(map[string]int, len(newScope))
	cells := 1
	for _, v := range newScope {
		newCards[v] = t.cardinalities[v]
		cells *= newCards[v]
	}
	if cells == 0 {
		cells = 1
	}

	values := make([]float64, cells)
	argmax := make([]int, cells)
	assignment := make([]int, len(newScope))
	for flat := 0; flat < cells; flat++ {
		unflatten(flat, newScope, newCards, assignment)
		best, bestIdx := -1.0, 0
		for i := 0; i < card; i++ {
			full := make([]string, len(newScope)+1)
			copy(full, newScope)
			full[len(newScope)] = variable
			fullAssignment := make([]int, len(assignment)+1)
			copy(fullAssignment, assignment)
			fullAssignment[len(assignment)] = i
			v := t.valueAt(full, fullAssignment)
			if v > best {
				best, bestIdx = v, i
			}
		}
		values[flat] = best
		argmax[flat] = bestIdx
	}

	return &Tabular{scope: newScope, cardinalities: newCards, values: values, cap: t.cap}, argmax, nil
}
