package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"FuzzyDecision/internal/collector"
	"FuzzyDecision/internal/metrics"
	"FuzzyDecision/internal/model"
	"FuzzyDecision/internal/notifier"
	"FuzzyDecision/internal/recorder"
	"FuzzyDecision/internal/strategy"
)

// ErrNoRunYet is returned by Last before the first completed run.
var ErrNoRunYet = errors.New("no run yet")

// Run is one completed batch evaluation.
type Run struct {
	ID      string
	At      time.Time
	Source  string
	Headers []string
	Results []model.Result
}

// Scheduler loads the input, evaluates it and fans the results out to the
// recorder, metrics and notifier, either on demand or on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Source   collector.Source
	Engine   *strategy.Engine
	Workers  int
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Ctx      context.Context

	mu   sync.Mutex
	last *Run
}

// NewScheduler creates a new Scheduler. tn and m may be nil.
func NewScheduler(ctx context.Context, src collector.Source, eng *strategy.Engine, workers int,
	tn *notifier.TelegramNotifier, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Source:   src,
		Engine:   eng,
		Workers:  workers,
		Notifier: tn,
		Recorder: rec,
		Metrics:  m,
		Ctx:      ctx,
	}
}

// Register schedules RunOnce on the given cron expression (with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register evaluation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scheduledRun() {
	run, err := s.RunOnce()
	if err != nil {
		log.Error().Err(err).Msg("scheduled evaluation failed")
		return
	}
	s.trySend(notifier.FormatRunSummary(run.ID, run.Source, run.At, run.Results))
}

// RunOnce loads the input and evaluates every row. Row failures stay in
// the results; only load and dispatch failures return an error.
func (s *Scheduler) RunOnce() (*Run, error) {
	run := &Run{
		ID:     uuid.NewString(),
		At:     time.Now(),
		Source: s.Source.Name(),
	}
	logger := log.With().Str("run_id", run.ID).Str("source", run.Source).Logger()
	logger.Info().Msg("evaluation run started")

	tbl, err := s.Source.Load(s.Ctx)
	if err != nil {
		s.Metrics.ObserveFailedBatch()
		s.trySend(fmt.Sprintf("❌ input load failed: %v", err))
		return nil, fmt.Errorf("load input: %w", err)
	}
	run.Headers = tbl.Headers

	start := time.Now()
	results, err := s.Engine.EvaluateAll(s.Ctx, tbl.Rows, s.Workers)
	elapsed := time.Since(start)
	if err != nil {
		s.Metrics.ObserveFailedBatch()
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	run.Results = results
	s.Metrics.ObserveBatch(results, elapsed)

	rec := &recorder.RunRecord{ID: run.ID, At: run.At, Source: run.Source, Results: results}
	if err := s.Recorder.RecordRun(rec); err != nil {
		logger.Error().Err(err).Msg("record run")
	}

	s.mu.Lock()
	s.last = run
	s.mu.Unlock()

	logger.Info().
		Int("rows", len(results)).
		Int("failed", rec.Failed()).
		Dur("elapsed", elapsed).
		Msg("evaluation run finished")
	return run, nil
}

// Last returns the most recent completed run.
func (s *Scheduler) Last() (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, ErrNoRunYet
	}
	return s.last, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		run, err := s.RunOnce()
		if err != nil {
			return fmt.Sprintf("❌ run failed: %v", err)
		}
		return notifier.FormatRunSummary(run.ID, run.Source, run.At, run.Results)
	case "/last":
		run, err := s.Last()
		if err != nil {
			return "No evaluation has run yet."
		}
		return notifier.FormatRunSummary(run.ID, run.Source, run.At, run.Results)
	default:
		return "Available commands:\n• /run - evaluate the input now\n• /last - summary of the latest run"
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
