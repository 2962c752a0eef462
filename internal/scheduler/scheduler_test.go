package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuzzyDecision/internal/collector"
	"FuzzyDecision/internal/metrics"
	"FuzzyDecision/internal/model"
	"FuzzyDecision/internal/notifier"
	"FuzzyDecision/internal/recorder"
	"FuzzyDecision/internal/strategy"
)

func testTable() *collector.Table {
	return &collector.Table{
		Headers: []string{"No", "RSI", "MACD", "ADX"},
		Rows: []model.Row{
			{Line: 1, ID: "A", Indicators: model.Indicators{RSI: 90, MACD: 90, ADX: 50}},
			{Line: 2, ID: "B", Indicators: model.Indicators{RSI: 50, MACD: 30, ADX: 50}},
			{Line: 3, ID: "C", Indicators: model.Indicators{RSI: 10, MACD: 60, ADX: 45}},
		},
	}
}

func newTestScheduler(t *testing.T, src collector.Source, tn *notifier.TelegramNotifier, rec recorder.Recorder) (*Scheduler, *metrics.Metrics) {
	t.Helper()
	eng, err := strategy.NewEngine()
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	return NewScheduler(context.Background(), src, eng, 2, tn, rec, m), m
}

func TestRunOnce(t *testing.T) {
	s, m := newTestScheduler(t, &collector.StaticSource{Table: testTable()}, nil, nil)

	_, err := s.Last()
	assert.ErrorIs(t, err, ErrNoRunYet)

	run, err := s.RunOnce()
	require.NoError(t, err)
	require.Len(t, run.Results, 3)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "static", run.Source)
	assert.Equal(t, model.LabelSell, run.Results[0].Decision.Label)
	assert.ErrorIs(t, run.Results[1].Err, strategy.ErrUndefinedDefuzzification)
	assert.Equal(t, model.LabelBuy, run.Results[2].Decision.Label)

	last, err := s.Last()
	require.NoError(t, err)
	assert.Equal(t, run.ID, last.ID)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(metrics.OutcomeUndefined)))
}

func TestRunOnce_RecordsToSQLite(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer rec.Close()

	s, _ := newTestScheduler(t, &collector.StaticSource{Table: testTable()}, nil, rec)
	run, err := s.RunOnce()
	require.NoError(t, err)

	runs, err := rec.Runs(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 3, runs[0].Rows)
	assert.Equal(t, 1, runs[0].Failed)
}

func TestRunOnce_LoadFailure(t *testing.T) {
	var sent int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&sent, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	tn := notifier.NewTelegramNotifier("T", "1", "")
	tn.APIBase = server.URL

	s, m := newTestScheduler(t, &collector.StaticSource{Err: errors.New("disk gone")}, tn, nil)
	_, err := s.RunOnce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Equal(t, int32(1), atomic.LoadInt32(&sent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchRunsTotal.WithLabelValues("failed")))
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.StaticSource{Table: testTable()}, nil, nil)

	assert.Equal(t, "No evaluation has run yet.", s.HandleCommand("/last"))
	assert.Contains(t, s.HandleCommand("/run"), "Rows: 3 (failed 1)")
	assert.Contains(t, s.HandleCommand("/last"), "Buy: 1 | Hold: 0 | Sell: 1")
	assert.Contains(t, s.HandleCommand("hello"), "/run")
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.StaticSource{Table: testTable()}, nil, nil)
	assert.Error(t, s.Register("not a cron"))
	require.NoError(t, s.Register("0 */5 * * * *"))
	assert.Len(t, s.Cron.Entries(), 1)
	s.Start()
	s.Stop()
}
