package strategy

import (
	"fmt"

	"FuzzyDecision/internal/fuzzy"
	"FuzzyDecision/internal/model"
)

// Variable names.
const (
	VarRSI      = "rsi"
	VarMACD     = "macd"
	VarADX      = "adx"
	VarDecision = "decision"
)

// Antecedent terms.
const (
	Lo = "lo"
	Me = "me"
	Hi = "hi"
)

type termDef struct {
	name string
	pts  []float64 // 3 points: triangle, 4 points: trapezoid
}

type variableDef struct {
	name     string
	min, max float64
	terms    []termDef
}

var (
	rsiDef = variableDef{VarRSI, 0, 100, []termDef{
		{Lo, []float64{0, 0, 30}},
		{Me, []float64{20, 50, 90}},
		{Hi, []float64{80, 100, 100}},
	}}
	macdDef = variableDef{VarMACD, 0, 200, []termDef{
		{Lo, []float64{0, 0, 20, 30}},
		{Me, []float64{30, 50, 80, 100}},
		{Hi, []float64{80, 100, 200, 200}},
	}}
	adxDef = variableDef{VarADX, 20, 100, []termDef{
		{Lo, []float64{20, 20, 30, 40}},
		{Me, []float64{30, 40, 50, 60}},
		{Hi, []float64{50, 60, 100, 100}},
	}}
	decisionDef = variableDef{VarDecision, 0, 10, []termDef{
		{string(model.LabelBuy), []float64{0, 0, 3, 4}},
		{string(model.LabelHold), []float64{3, 4, 6, 7}},
		{string(model.LabelSell), []float64{6, 7, 10, 10}},
	}}
)

// decisionTable is the full rule base, RSI & MACD & ADX -> decision.
// Only the RSI term changes the outcome; the MACD and ADX clauses are kept.
var decisionTable = [27]struct {
	rsi, macd, adx string
	then           model.Label
}{
	{Hi, Hi, Me, model.LabelSell},
	{Hi, Me, Me, model.LabelSell},
	{Hi, Lo, Me, model.LabelSell},
	{Me, Hi, Me, model.LabelHold},
	{Me, Me, Me, model.LabelHold},
	{Me, Lo, Me, model.LabelHold},
	{Lo, Hi, Me, model.LabelBuy},
	{Lo, Me, Me, model.LabelBuy},
	{Lo, Lo, Me, model.LabelBuy},

	{Hi, Hi, Lo, model.LabelSell},
	{Hi, Me, Lo, model.LabelSell},
	{Hi, Lo, Lo, model.LabelSell},
	{Me, Hi, Lo, model.LabelHold},
	{Me, Me, Lo, model.LabelHold},
	{Me, Lo, Lo, model.LabelHold},
	{Lo, Hi, Lo, model.LabelBuy},
	{Lo, Me, Lo, model.LabelBuy},
	{Lo, Lo, Lo, model.LabelBuy},

	{Hi, Hi, Hi, model.LabelSell},
	{Hi, Me, Hi, model.LabelSell},
	{Hi, Lo, Hi, model.LabelSell},
	{Me, Hi, Hi, model.LabelHold},
	{Me, Me, Hi, model.LabelHold},
	{Me, Lo, Hi, model.LabelHold},
	{Lo, Hi, Hi, model.LabelBuy},
	{Lo, Me, Hi, model.LabelBuy},
	{Lo, Lo, Hi, model.LabelBuy},
}

func buildVariable(def variableDef) (*fuzzy.Variable, error) {
	u, err := fuzzy.NewUniverse(def.min, def.max, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.name, err)
	}
	v := fuzzy.NewVariable(def.name, u)
	for _, t := range def.terms {
		var mf fuzzy.MembershipFunc
		switch len(t.pts) {
		case 3:
			mf, err = fuzzy.NewTriangle(t.pts[0], t.pts[1], t.pts[2])
		case 4:
			mf, err = fuzzy.NewTrapezoid(t.pts[0], t.pts[1], t.pts[2], t.pts[3])
		default:
			err = fmt.Errorf("%d breakpoints: %w", len(t.pts), fuzzy.ErrInvalidBreakpoints)
		}
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", def.name, t.name, err)
		}
		if err := v.AddTerm(t.name, mf); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func buildRules() []fuzzy.Rule {
	rules := make([]fuzzy.Rule, 0, len(decisionTable))
	for _, r := range decisionTable {
		rules = append(rules, fuzzy.Rule{
			If: []fuzzy.Clause{
				{Variable: VarRSI, Term: r.rsi},
				{Variable: VarMACD, Term: r.macd},
				{Variable: VarADX, Term: r.adx},
			},
			Then: string(r.then),
		})
	}
	return rules
}
