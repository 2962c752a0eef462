package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"FuzzyDecision/internal/metrics"
	"FuzzyDecision/internal/scheduler"
)

func newWatchCmd(a *app) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate the input on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, err := newEngine()
			if err != nil {
				return err
			}
			rec := a.recorder()
			defer rec.Close()

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			if a.cfg.Metrics.Addr != "" {
				go func() {
					if err := metrics.Serve(ctx, a.cfg.Metrics.Addr, reg); err != nil {
						log.Error().Err(err).Msg("metrics server")
					}
				}()
			}

			tn := a.notifier()
			sched := scheduler.NewScheduler(ctx, a.source(), eng, a.cfg.Engine.Workers, tn, rec, m)
			if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
				return fmt.Errorf("register cron task: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			if tn.Enabled() {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}
			if runOnStart {
				go func() {
					if _, err := sched.RunOnce(); err != nil {
						log.Error().Err(err).Msg("initial evaluation failed")
					}
				}()
			}

			log.Info().Str("cron", a.cfg.Schedule.Cron).Str("source", sched.Source.Name()).Msg("fuzzydecide is watching, press Ctrl+C to stop")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "evaluate once immediately")
	return cmd
}
