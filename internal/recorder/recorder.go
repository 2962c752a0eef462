package recorder

import (
	"time"

	"FuzzyDecision/internal/model"
)

// RunRecord holds one batch evaluation.
type RunRecord struct {
	ID      string
	At      time.Time
	Source  string
	Results []model.Result
}

// Failed counts rows that produced no score.
func (r *RunRecord) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// RunSummary is a recorded run read back from storage.
type RunSummary struct {
	ID     string
	At     time.Time
	Source string
	Rows   int
	Failed int
}

// Recorder persists evaluation history for analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	Close() error
}
