package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"FuzzyDecision/internal/notifier"
	"FuzzyDecision/internal/scheduler"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		verbose bool
		notify  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every row of the input once and print the decision table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			rec := a.recorder()
			defer rec.Close()

			var tn *notifier.TelegramNotifier
			if notify {
				tn = a.notifier()
			}
			sched := scheduler.NewScheduler(cmd.Context(), a.source(), eng, a.cfg.Engine.Workers, tn, rec, nil)
			run, err := sched.RunOnce()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, notifier.FormatDecisionTable(run.Results))
			if verbose {
				labels := headerLabels(run.Headers)
				for _, r := range run.Results {
					if !r.OK() {
						continue
					}
					fmt.Fprintf(out, "\n[%d] %s\n", r.Row.Line, r.Row.ID)
					fmt.Fprint(out, notifier.FormatExplain(r.Decision, labels))
				}
			}
			if notify && tn.Enabled() {
				summary := notifier.FormatRunSummary(run.ID, run.Source, run.At, run.Results)
				if err := tn.SendWithRetry(cmd.Context(), summary, 3); err != nil {
					return fmt.Errorf("send summary: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print degrees and rule firings per row")
	cmd.Flags().BoolVar(&notify, "notify", false, "send the run summary to Telegram")
	return cmd
}
