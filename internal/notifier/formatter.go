package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"FuzzyDecision/internal/model"
)

// FormatDecisionTable renders one line per row in the classic
// "No Decision" layout. Failed rows print ERROR and the reason.
func FormatDecisionTable(results []model.Result) string {
	var b strings.Builder
	b.WriteString("|-Stock decision Percentage-|\n")
	b.WriteString("No Decision\n")
	for _, r := range results {
		if r.OK() {
			b.WriteString(fmt.Sprintf("%2d %.6f\n", r.Row.Line, r.Decision.Score))
			continue
		}
		b.WriteString(fmt.Sprintf("%2d ERROR %v\n", r.Row.Line, r.Err))
	}
	return b.String()
}

// FormatExplain shows degrees per variable and every rule that fired.
// labels optionally renames rsi/macd/adx, e.g. with CSV header names.
func FormatExplain(d *model.Decision, labels map[string]string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("input: rsi=%g macd=%g adx=%g\n", d.Input.RSI, d.Input.MACD, d.Input.ADX))

	for _, v := range []string{"rsi", "macd", "adx"} {
		deg, ok := d.Degrees[v]
		if !ok {
			continue
		}
		name := v
		if l, ok := labels[v]; ok && l != "" {
			name = l
		}
		b.WriteString(fmt.Sprintf("  %-8s lo=%.3f me=%.3f hi=%.3f\n", name, deg["lo"], deg["me"], deg["hi"]))
	}

	b.WriteString("rules fired:\n")
	fired := 0
	for _, f := range d.Firings {
		if f.Strength <= 0 {
			continue
		}
		fired++
		b.WriteString(fmt.Sprintf("  %-40s %.3f\n", f.Rule, f.Strength))
	}
	if fired == 0 {
		b.WriteString("  none\n")
	}
	b.WriteString(fmt.Sprintf("centroid: %.6f\nscore: %.6f (%s)\n", d.Centroid, d.Score, d.Label))
	return b.String()
}

// FormatRunSummary formats a batch run into a Telegram message.
func FormatRunSummary(runID, source string, at time.Time, results []model.Result) string {
	counts := map[model.Label]int{}
	failed := 0
	var sum float64
	var ok []model.Result
	for _, r := range results {
		if !r.OK() {
			failed++
			continue
		}
		counts[r.Decision.Label]++
		sum += r.Decision.Score
		ok = append(ok, r)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>FuzzyDecision run</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Run: %s\nSource: %s\n", runID, source))
	b.WriteString(fmt.Sprintf("Rows: %d (failed %d)\n", len(results), failed))
	b.WriteString(fmt.Sprintf("Buy: %d | Hold: %d | Sell: %d\n",
		counts[model.LabelBuy], counts[model.LabelHold], counts[model.LabelSell]))
	if len(ok) == 0 {
		b.WriteString("\nNo row produced a score.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Average score: %+.3f\n", sum/float64(len(ok))))

	sort.SliceStable(ok, func(i, j int) bool { return ok[i].Decision.Score < ok[j].Decision.Score })
	b.WriteString(fmt.Sprintf("\nLowest: %s %+.3f\n", rowName(ok[0].Row), ok[0].Decision.Score))
	last := ok[len(ok)-1]
	b.WriteString(fmt.Sprintf("Highest: %s %+.3f", rowName(last.Row), last.Decision.Score))
	return b.String()
}

func rowName(r model.Row) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("#%d", r.Line)
}
