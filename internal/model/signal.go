package model

// Label is the linguistic decision term.
type Label string

const (
	LabelBuy  Label = "buy"
	LabelHold Label = "hold"
	LabelSell Label = "sell"
)

// RuleFiring is one rule's firing strength, kept for explanation output.
type RuleFiring struct {
	Rule       string
	Strength   float64
	Consequent Label
}

// Decision is the final output of the fuzzy engine for one input.
type Decision struct {
	Input    Indicators
	Centroid float64 // raw defuzzified value on the decision universe
	Score    float64 // (Centroid - 5) / 10
	Label    Label   // consequent with the strongest activation

	Degrees map[string]map[string]float64 // variable -> term -> degree
	Firings []RuleFiring
}

// Result pairs an input row with its decision or the error that stopped it.
type Result struct {
	Row      Row
	Decision *Decision
	Err      error
}

// OK reports whether the row produced a score.
func (r Result) OK() bool { return r.Err == nil && r.Decision != nil }
