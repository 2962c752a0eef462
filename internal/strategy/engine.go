package strategy

import (
	"errors"
	"fmt"
	"math"

	"FuzzyDecision/internal/fuzzy"
	"FuzzyDecision/internal/model"
)

var (
	// ErrInsufficientVariables is returned when fewer than three indicator values are supplied.
	ErrInsufficientVariables = errors.New("insufficient fuzzy variables")
	// ErrEmptyInput is returned when a batch has no rows.
	ErrEmptyInput = errors.New("no data found")
	// ErrNonNumericInput is returned for NaN or infinite indicator values.
	ErrNonNumericInput = errors.New("non-numeric input")
	// ErrUndefinedDefuzzification is returned when no rule fires for an input.
	ErrUndefinedDefuzzification = fuzzy.ErrUndefinedDefuzzification
)

// NumVariables is the number of indicator inputs per evaluation.
const NumVariables = 3

// Rescale maps a centroid on the [0,10] decision universe to the public
// score range [-0.5, 0.5].
func Rescale(centroid float64) float64 {
	return (centroid - 5) / 10
}

// Engine evaluates RSI/MACD/ADX triples against the fixed rule base.
// It holds no mutable state and may be shared across goroutines.
type Engine struct {
	system *fuzzy.System
}

// NewEngine builds the linguistic variables and the 27-rule base.
func NewEngine() (*Engine, error) {
	vars := make([]*fuzzy.Variable, 0, NumVariables)
	for _, def := range []variableDef{rsiDef, macdDef, adxDef} {
		v, err := buildVariable(def)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	decision, err := buildVariable(decisionDef)
	if err != nil {
		return nil, err
	}
	sys, err := fuzzy.NewSystem(decision, buildRules(), vars...)
	if err != nil {
		return nil, fmt.Errorf("build rule base: %w", err)
	}
	return &Engine{system: sys}, nil
}

// System exposes the underlying inference system, read-only.
func (e *Engine) System() *fuzzy.System { return e.system }

// EvaluateValues evaluates the first three values as RSI, MACD, ADX.
func (e *Engine) EvaluateValues(values []float64) (*model.Decision, error) {
	if len(values) < NumVariables {
		return nil, fmt.Errorf("got %d values, need %d: %w", len(values), NumVariables, ErrInsufficientVariables)
	}
	return e.Evaluate(model.Indicators{RSI: values[0], MACD: values[1], ADX: values[2]})
}

// Evaluate runs one fuzzify -> infer -> defuzzify cycle.
func (e *Engine) Evaluate(ind model.Indicators) (*model.Decision, error) {
	for name, x := range map[string]float64{VarRSI: ind.RSI, VarMACD: ind.MACD, VarADX: ind.ADX} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%s=%v: %w", name, x, ErrNonNumericInput)
		}
	}

	in, err := e.system.Fuzzify(map[string]float64{
		VarRSI:  ind.RSI,
		VarMACD: ind.MACD,
		VarADX:  ind.ADX,
	})
	if err != nil {
		return nil, err
	}
	set, acts, err := e.system.Infer(in)
	if err != nil {
		return nil, err
	}

	d := &model.Decision{
		Input:   ind,
		Degrees: make(map[string]map[string]float64, len(in)),
		Firings: make([]model.RuleFiring, len(acts)),
	}
	for name, deg := range in {
		d.Degrees[name] = deg
	}
	rules := e.system.Rules()
	for i, a := range acts {
		d.Firings[i] = model.RuleFiring{
			Rule:       rules[a.Rule].String(),
			Strength:   a.Strength,
			Consequent: model.Label(a.Consequent),
		}
	}

	c, err := fuzzy.Centroid(set)
	if err != nil {
		return nil, fmt.Errorf("rsi=%g macd=%g adx=%g: %w", ind.RSI, ind.MACD, ind.ADX, err)
	}
	d.Centroid = c
	d.Score = Rescale(c)
	d.Label = e.labelAt(c)
	return d, nil
}

// labelAt picks the decision term with the highest membership at x.
// Ties go to the earlier term (buy, hold, sell).
func (e *Engine) labelAt(x float64) model.Label {
	out := e.system.Consequent()
	best, bestDeg := "", -1.0
	for _, term := range out.Terms() {
		mf, err := out.Term(term)
		if err != nil {
			continue
		}
		if deg := mf.Degree(x); deg > bestDeg {
			best, bestDeg = term, deg
		}
	}
	return model.Label(best)
}
