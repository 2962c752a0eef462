package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuzzyDecision/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	require.NoError(t, err)
	return e
}

func TestEvaluate_Hold(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.Evaluate(model.Indicators{RSI: 50, MACD: 50, ADX: 50})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d.Centroid, 1e-9)
	assert.InDelta(t, 0.0, d.Score, 0.1)
	assert.Equal(t, model.LabelHold, d.Label)
}

func TestEvaluate_SellScenario(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.Evaluate(model.Indicators{RSI: 90, MACD: 90, ADX: 50})
	require.NoError(t, err)
	// rsi hi 0.5, macd me/hi 0.5, adx me 1 -> sell clipped at 0.5 over 7..10
	assert.InDelta(t, 8.5, d.Centroid, 1e-9)
	assert.InDelta(t, 0.35, d.Score, 1e-9)
	assert.Equal(t, model.LabelSell, d.Label)
	assert.GreaterOrEqual(t, math.Abs(d.Score), 0.1)
	assert.LessOrEqual(t, math.Abs(d.Score), 0.5)
}

func TestEvaluate_BuyScenario(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.Evaluate(model.Indicators{RSI: 0, MACD: 50, ADX: 50})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, d.Centroid, 1e-9)
	assert.InDelta(t, -0.35, d.Score, 1e-9)
	assert.Equal(t, model.LabelBuy, d.Label)
}

func TestEvaluate_SellOnlyCentroidBounds(t *testing.T) {
	e := newTestEngine(t)
	for rsi := 90.0; rsi <= 100; rsi += 0.5 {
		d, err := e.Evaluate(model.Indicators{RSI: rsi, MACD: 150, ADX: 80})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.Centroid, 6.0, "rsi=%v", rsi)
		assert.LessOrEqual(t, d.Centroid, 10.0, "rsi=%v", rsi)
		assert.Greater(t, d.Score, 0.1, "rsi=%v", rsi)
		assert.LessOrEqual(t, d.Score, 0.5, "rsi=%v", rsi)
	}
}

func TestEvaluate_MonotonicInRSI(t *testing.T) {
	e := newTestEngine(t)
	prev := math.Inf(-1)
	var first, mid, last float64
	for rsi := 0.0; rsi <= 100; rsi++ {
		d, err := e.Evaluate(model.Indicators{RSI: rsi, MACD: 65, ADX: 45})
		require.NoError(t, err, "rsi=%v", rsi)
		assert.GreaterOrEqual(t, d.Score, prev-1e-12, "rsi=%v", rsi)
		prev = d.Score
		switch rsi {
		case 0:
			first = d.Score
		case 50:
			mid = d.Score
		case 100:
			last = d.Score
		}
	}
	assert.Less(t, first, -0.1)
	assert.InDelta(t, 0.0, mid, 0.1)
	assert.Greater(t, last, 0.1)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	in := model.Indicators{RSI: 63.2, MACD: 88.1, ADX: 41.7}
	a, err := e.Evaluate(in)
	require.NoError(t, err)
	b, err := e.Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEvaluate_Undefined(t *testing.T) {
	e := newTestEngine(t)
	// MACD=30 is the single point where lo, me and hi are all zero.
	d, err := e.Evaluate(model.Indicators{RSI: 50, MACD: 30, ADX: 50})
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrUndefinedDefuzzification)
}

func TestEvaluate_OutOfDomainIsClamped(t *testing.T) {
	e := newTestEngine(t)
	low, err := e.Evaluate(model.Indicators{RSI: -40, MACD: -10, ADX: 0})
	require.NoError(t, err)
	edge, err := e.Evaluate(model.Indicators{RSI: 0, MACD: 0, ADX: 20})
	require.NoError(t, err)
	assert.Equal(t, edge.Centroid, low.Centroid)

	high, err := e.Evaluate(model.Indicators{RSI: 130, MACD: 500, ADX: 120})
	require.NoError(t, err)
	assert.Equal(t, model.LabelSell, high.Label)
}

func TestEvaluate_NonNumeric(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Evaluate(model.Indicators{RSI: math.NaN(), MACD: 50, ADX: 50})
	assert.ErrorIs(t, err, ErrNonNumericInput)
	_, err = e.Evaluate(model.Indicators{RSI: 50, MACD: math.Inf(1), ADX: 50})
	assert.ErrorIs(t, err, ErrNonNumericInput)
}

func TestEvaluateValues(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.EvaluateValues([]float64{50, 50})
	assert.ErrorIs(t, err, ErrInsufficientVariables)

	d, err := e.EvaluateValues([]float64{50, 50, 50, 99})
	require.NoError(t, err)
	assert.Equal(t, model.LabelHold, d.Label)
}

func TestEvaluate_DegreesAndFirings(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.Evaluate(model.Indicators{RSI: 25, MACD: 90, ADX: 35})
	require.NoError(t, err)

	require.Len(t, d.Degrees, 3)
	for _, v := range []string{VarRSI, VarMACD, VarADX} {
		assert.Len(t, d.Degrees[v], 3, v)
	}
	assert.InDelta(t, 5.0/30.0, d.Degrees[VarRSI][Lo], 1e-12)
	assert.InDelta(t, 0.5, d.Degrees[VarADX][Lo], 1e-12)

	require.Len(t, d.Firings, 27)
	for _, f := range d.Firings {
		assert.LessOrEqual(t, f.Strength, 5.0/30.0+1e-12)
	}
	// equal lo/me RSI strengths put the centroid at the buy/hold border
	assert.InDelta(t, 3.0, d.Centroid, 1e-9)
	assert.Equal(t, model.LabelBuy, d.Label)
}

func TestRuleBase_CartesianProduct(t *testing.T) {
	e := newTestEngine(t)
	rules := e.System().Rules()
	require.Len(t, rules, 27)

	want := map[string]string{Lo: "buy", Me: "hold", Hi: "sell"}
	seen := make(map[[3]string]bool)
	for _, r := range rules {
		require.Len(t, r.If, 3)
		assert.Equal(t, VarRSI, r.If[0].Variable)
		assert.Equal(t, VarMACD, r.If[1].Variable)
		assert.Equal(t, VarADX, r.If[2].Variable)
		assert.Equal(t, want[r.If[0].Term], r.Then)
		seen[[3]string{r.If[0].Term, r.If[1].Term, r.If[2].Term}] = true
	}
	assert.Len(t, seen, 27)
}

func TestRescale(t *testing.T) {
	assert.Equal(t, -0.5, Rescale(0))
	assert.Equal(t, 0.0, Rescale(5))
	assert.Equal(t, 0.5, Rescale(10))
}
