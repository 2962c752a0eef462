package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"FuzzyDecision/internal/model"
	"FuzzyDecision/internal/strategy"
)

// Outcome labels for EvaluationsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeUndefined = "undefined"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Metrics holds the Prometheus collectors for batch evaluation.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec // labels: outcome
	EvaluationDuration prometheus.Histogram   // whole batch
	BatchRows          prometheus.Gauge       // rows in the latest batch
	BatchRunsTotal     *prometheus.CounterVec // labels: status=ok|failed
	LabelRows          *prometheus.GaugeVec   // labels: label
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuzzydecision_evaluations_total",
			Help: "Row evaluations by outcome",
		}, []string{"outcome"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fuzzydecision_batch_duration_seconds",
			Help:    "Wall time to evaluate one batch",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		BatchRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fuzzydecision_batch_rows",
			Help: "Rows in the most recent batch",
		}),
		BatchRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuzzydecision_batch_runs_total",
			Help: "Batch runs by status",
		}, []string{"status"}),
		LabelRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fuzzydecision_label_rows",
			Help: "Rows per decision label in the most recent batch",
		}, []string{"label"}),
	}
	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.BatchRows,
		m.BatchRunsTotal,
		m.LabelRows,
	)
	return m
}

// Outcome classifies a row result.
func Outcome(r model.Result) string {
	switch {
	case r.OK():
		return OutcomeOK
	case errors.Is(r.Err, strategy.ErrUndefinedDefuzzification):
		return OutcomeUndefined
	case errors.Is(r.Err, strategy.ErrNonNumericInput), errors.Is(r.Err, strategy.ErrInsufficientVariables):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// ObserveBatch records one completed batch.
func (m *Metrics) ObserveBatch(results []model.Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationDuration.Observe(elapsed.Seconds())
	m.BatchRows.Set(float64(len(results)))
	m.BatchRunsTotal.WithLabelValues("ok").Inc()

	labels := map[model.Label]int{model.LabelBuy: 0, model.LabelHold: 0, model.LabelSell: 0}
	for _, r := range results {
		m.EvaluationsTotal.WithLabelValues(Outcome(r)).Inc()
		if r.OK() {
			labels[r.Decision.Label]++
		}
	}
	for l, n := range labels {
		m.LabelRows.WithLabelValues(string(l)).Set(float64(n))
	}
}

// ObserveFailedBatch records a batch that could not be evaluated at all.
func (m *Metrics) ObserveFailedBatch() {
	if m == nil {
		return
	}
	m.BatchRunsTotal.WithLabelValues("failed").Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
