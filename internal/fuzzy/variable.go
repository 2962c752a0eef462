package fuzzy

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTerm is returned when a term name is registered twice.
	ErrDuplicateTerm = errors.New("duplicate term")
	// ErrUnknownTerm is returned when a term is not registered on a variable.
	ErrUnknownTerm = errors.New("unknown term")
)

// Degrees maps term name to membership degree.
type Degrees map[string]float64

// Variable is a linguistic variable: a universe plus named membership functions.
type Variable struct {
	Name     string
	Universe Universe

	terms map[string]MembershipFunc
	order []string
}

// NewVariable creates a variable with no terms.
func NewVariable(name string, u Universe) *Variable {
	return &Variable{
		Name:     name,
		Universe: u,
		terms:    make(map[string]MembershipFunc),
	}
}

// AddTerm registers a linguistic term.
func (v *Variable) AddTerm(name string, mf MembershipFunc) error {
	if _, ok := v.terms[name]; ok {
		return fmt.Errorf("%s/%s: %w", v.Name, name, ErrDuplicateTerm)
	}
	v.terms[name] = mf
	v.order = append(v.order, name)
	return nil
}

// Term returns the MF registered under name.
func (v *Variable) Term(name string) (MembershipFunc, error) {
	mf, ok := v.terms[name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", v.Name, name, ErrUnknownTerm)
	}
	return mf, nil
}

// Terms returns term names in registration order.
func (v *Variable) Terms() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Fuzzify evaluates every term at x. x is clamped to the universe first,
// so values beyond the bounds take the boundary degrees.
func (v *Variable) Fuzzify(x float64) Degrees {
	x = v.Universe.Clamp(x)
	d := make(Degrees, len(v.terms))
	for name, mf := range v.terms {
		d[name] = mf.Degree(x)
	}
	return d
}

// Sample evaluates the named term at every point of the universe.
func (v *Variable) Sample(term string) ([]float64, error) {
	mf, err := v.Term(term)
	if err != nil {
		return nil, err
	}
	pts := v.Universe.Points()
	out := make([]float64, len(pts))
	for i, x := range pts {
		out[i] = mf.Degree(x)
	}
	return out, nil
}
