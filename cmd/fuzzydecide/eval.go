package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"FuzzyDecision/internal/notifier"
)

func newEvalCmd(_ *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "eval RSI MACD ADX",
		Short: "Evaluate a single indicator triple",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, len(args))
			for i, s := range args {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("argument %d %q: %w", i+1, s, err)
				}
				values[i] = v
			}
			eng, err := newEngine()
			if err != nil {
				return err
			}
			d, err := eng.EvaluateValues(values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprint(out, notifier.FormatExplain(d, nil))
				return nil
			}
			fmt.Fprintf(out, "%.6f %s\n", d.Score, d.Label)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print degrees and rule firings")
	return cmd
}
