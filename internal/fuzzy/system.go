package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownVariable is returned when a rule or input names an unregistered variable.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrMissingInput is returned when an antecedent has no crisp value or degrees.
	ErrMissingInput = errors.New("missing input")
	// ErrNoRules is returned when a system is built without rules.
	ErrNoRules = errors.New("no rules")
)

// Clause is one "variable IS term" condition.
type Clause struct {
	Variable string
	Term     string
}

// Rule joins its clauses with fuzzy AND and implies the consequent term.
type Rule struct {
	If   []Clause
	Then string
}

func (r Rule) String() string {
	s := ""
	for i, c := range r.If {
		if i > 0 {
			s += " & "
		}
		s += c.Variable + "[" + c.Term + "]"
	}
	return s + " -> " + r.Then
}

// Activation is one rule's firing strength for a given input.
type Activation struct {
	Rule       int
	Strength   float64
	Consequent string
}

// Inputs holds fuzzified degrees keyed by antecedent name.
type Inputs map[string]Degrees

// Set is a discrete fuzzy set over a universe.
type Set struct {
	Points []float64
	Values []float64
}

// Mass is the sum of membership values.
func (s *Set) Mass() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	return sum
}

// System is a Mamdani inference system: min for AND and implication,
// max for aggregation. It is read-only after NewSystem and safe for
// concurrent use.
type System struct {
	antecedents map[string]*Variable
	names       []string
	consequent  *Variable
	rules       []Rule

	// consequent term MFs sampled over the consequent universe
	points  []float64
	samples map[string][]float64
}

// NewSystem validates the rule base against the variables.
func NewSystem(consequent *Variable, rules []Rule, antecedents ...*Variable) (*System, error) {
	if consequent == nil {
		return nil, fmt.Errorf("consequent: %w", ErrUnknownVariable)
	}
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	s := &System{
		antecedents: make(map[string]*Variable, len(antecedents)),
		consequent:  consequent,
		points:      consequent.Universe.Points(),
		samples:     make(map[string][]float64),
	}
	for _, v := range antecedents {
		if _, ok := s.antecedents[v.Name]; ok {
			return nil, fmt.Errorf("antecedent %q registered twice", v.Name)
		}
		s.antecedents[v.Name] = v
		s.names = append(s.names, v.Name)
	}

	for _, term := range consequent.Terms() {
		vals, err := consequent.Sample(term)
		if err != nil {
			return nil, err
		}
		s.samples[term] = vals
	}

	s.rules = make([]Rule, len(rules))
	for i, r := range rules {
		if _, ok := s.samples[r.Then]; !ok {
			return nil, fmt.Errorf("rule %d: %s/%s: %w", i+1, consequent.Name, r.Then, ErrUnknownTerm)
		}
		clauses := make([]Clause, len(r.If))
		for j, c := range r.If {
			v, ok := s.antecedents[c.Variable]
			if !ok {
				return nil, fmt.Errorf("rule %d: %q: %w", i+1, c.Variable, ErrUnknownVariable)
			}
			if _, err := v.Term(c.Term); err != nil {
				return nil, fmt.Errorf("rule %d: %w", i+1, err)
			}
			clauses[j] = c
		}
		s.rules[i] = Rule{If: clauses, Then: r.Then}
	}
	return s, nil
}

// Antecedents returns antecedent names in registration order.
func (s *System) Antecedents() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Antecedent looks up an input variable by name.
func (s *System) Antecedent(name string) (*Variable, bool) {
	v, ok := s.antecedents[name]
	return v, ok
}

// Consequent returns the output variable.
func (s *System) Consequent() *Variable { return s.consequent }

// Rules returns a copy of the rule base.
func (s *System) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Fuzzify maps a crisp value per antecedent to its degrees.
func (s *System) Fuzzify(crisp map[string]float64) (Inputs, error) {
	in := make(Inputs, len(s.names))
	for name := range crisp {
		if _, ok := s.antecedents[name]; !ok {
			return nil, fmt.Errorf("input %q: %w", name, ErrUnknownVariable)
		}
	}
	for _, name := range s.names {
		x, ok := crisp[name]
		if !ok {
			return nil, fmt.Errorf("input %q: %w", name, ErrMissingInput)
		}
		in[name] = s.antecedents[name].Fuzzify(x)
	}
	return in, nil
}

// Infer fires every rule and aggregates the clipped consequents.
func (s *System) Infer(in Inputs) (*Set, []Activation, error) {
	for _, name := range s.names {
		if _, ok := in[name]; !ok {
			return nil, nil, fmt.Errorf("input %q: %w", name, ErrMissingInput)
		}
	}
	set, acts := s.infer(in, s.rules)
	return set, acts, nil
}

func (s *System) infer(in Inputs, rules []Rule) (*Set, []Activation) {
	out := &Set{
		Points: append([]float64(nil), s.points...),
		Values: make([]float64, len(s.points)),
	}
	acts := make([]Activation, len(rules))
	for i, r := range rules {
		strength := 1.0
		for _, c := range r.If {
			strength = math.Min(strength, in[c.Variable][c.Term])
		}
		acts[i] = Activation{Rule: i, Strength: strength, Consequent: r.Then}
		if strength == 0 {
			continue
		}
		for k, mu := range s.samples[r.Then] {
			out.Values[k] = math.Max(out.Values[k], math.Min(mu, strength))
		}
	}
	return out, acts
}
