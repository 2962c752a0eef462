package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"FuzzyDecision/internal/model"
)

func sampleResults() []model.Result {
	return []model.Result{
		{Row: model.Row{Line: 1, ID: "AAPL"}, Decision: &model.Decision{Score: 0.35, Label: model.LabelSell}},
		{Row: model.Row{Line: 2, ID: "MSFT"}, Decision: &model.Decision{Score: 0, Label: model.LabelHold}},
		{Row: model.Row{Line: 3}, Err: errors.New("defuzzification undefined")},
		{Row: model.Row{Line: 4, ID: "TSLA"}, Decision: &model.Decision{Score: -0.35, Label: model.LabelBuy}},
	}
}

func TestFormatDecisionTable(t *testing.T) {
	got := FormatDecisionTable(sampleResults())
	want := "|-Stock decision Percentage-|\n" +
		"No Decision\n" +
		" 1 0.350000\n" +
		" 2 0.000000\n" +
		" 3 ERROR defuzzification undefined\n" +
		" 4 -0.350000\n"
	assert.Equal(t, want, got)
}

func TestFormatRunSummary(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	got := FormatRunSummary("run-1", "file:x.csv", at, sampleResults())
	assert.Contains(t, got, "2026-10-14 09:30")
	assert.Contains(t, got, "Rows: 4 (failed 1)")
	assert.Contains(t, got, "Buy: 1 | Hold: 1 | Sell: 1")
	assert.Contains(t, got, "Average score: +0.000")
	assert.Contains(t, got, "Lowest: TSLA -0.350")
	assert.Contains(t, got, "Highest: AAPL +0.350")
}

func TestFormatRunSummary_AllFailed(t *testing.T) {
	res := []model.Result{{Row: model.Row{Line: 1}, Err: errors.New("boom")}}
	got := FormatRunSummary("r", "s", time.Now(), res)
	assert.Contains(t, got, "No row produced a score.")
}

func TestFormatExplain(t *testing.T) {
	d := &model.Decision{
		Input:    model.Indicators{RSI: 90, MACD: 90, ADX: 50},
		Centroid: 8.5,
		Score:    0.35,
		Label:    model.LabelSell,
		Degrees: map[string]map[string]float64{
			"rsi":  {"lo": 0, "me": 0, "hi": 0.5},
			"macd": {"lo": 0, "me": 0.5, "hi": 0.5},
			"adx":  {"lo": 0, "me": 1, "hi": 0},
		},
		Firings: []model.RuleFiring{
			{Rule: "rsi[hi] & macd[hi] & adx[me] -> sell", Strength: 0.5, Consequent: model.LabelSell},
			{Rule: "rsi[lo] & macd[lo] & adx[lo] -> buy", Strength: 0, Consequent: model.LabelBuy},
		},
	}
	got := FormatExplain(d, map[string]string{"rsi": "RSI14"})
	assert.Contains(t, got, "RSI14")
	assert.Contains(t, got, "hi=0.500")
	assert.Contains(t, got, "rsi[hi] & macd[hi] & adx[me] -> sell")
	assert.NotContains(t, got, "adx[lo] -> buy")
	assert.True(t, strings.HasSuffix(got, "score: 0.350000 (sell)\n"))
}
