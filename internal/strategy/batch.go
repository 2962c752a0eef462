package strategy

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	"FuzzyDecision/internal/model"
)

// EvaluateAll evaluates rows on a pool of workers and returns one result
// per row, in input order. A failing row only marks its own result. If ctx
// is cancelled, rows not yet dispatched carry ctx.Err() and the same error
// is returned.
func (e *Engine) EvaluateAll(ctx context.Context, rows []model.Row, workers int) ([]model.Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(rows) {
		workers = len(rows)
	}

	results := make([]model.Result, len(rows))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.evaluateRow(rows[i])
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range rows {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	if dispatched < len(rows) {
		for i := dispatched; i < len(rows); i++ {
			results[i] = model.Result{Row: rows[i], Err: ctx.Err()}
		}
		return results, ctx.Err()
	}
	return results, nil
}

func (e *Engine) evaluateRow(row model.Row) model.Result {
	if row.Err != nil {
		return model.Result{Row: row, Err: row.Err}
	}
	d, err := e.Evaluate(row.Indicators)
	if err != nil {
		log.Debug().Int("line", row.Line).Str("id", row.ID).Err(err).Msg("row evaluation failed")
		return model.Result{Row: row, Err: err}
	}
	return model.Result{Row: row, Decision: d}
}
