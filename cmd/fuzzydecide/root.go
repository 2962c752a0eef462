package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"FuzzyDecision/internal/collector"
	"FuzzyDecision/internal/config"
	"FuzzyDecision/internal/logger"
	"FuzzyDecision/internal/notifier"
	"FuzzyDecision/internal/recorder"
	"FuzzyDecision/internal/strategy"
)

const defaultConfigPath = "configs/config.yaml"

// app is the state shared by subcommands after config is loaded.
type app struct {
	cfgPath string
	cfg     *config.Config
}

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "fuzzydecide",
		Short:         "Fuzzy buy/hold/sell decisions from RSI, MACD and ADX",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(newRunCmd(a), newEvalCmd(a), newWatchCmd(a))
	return root
}

func (a *app) load() error {
	path := a.cfgPath
	if path == "" {
		path = defaultConfigPath
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	a.cfg = cfg
	return nil
}

func (a *app) source() collector.Source {
	return collector.NewSource(a.cfg.Input.Path, a.cfg.Input.APIKey, a.cfg.Proxy)
}

func (a *app) notifier() *notifier.TelegramNotifier {
	tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
	if a.cfg.Telegram.APIBase != "" {
		tn.APIBase = a.cfg.Telegram.APIBase
	}
	return tn
}

// recorder opens the SQLite history, falling back to a no-op recorder.
func (a *app) recorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newEngine() (*strategy.Engine, error) {
	eng, err := strategy.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return eng, nil
}

// headerLabels maps the indicator columns of a CSV header to display names.
func headerLabels(headers []string) map[string]string {
	labels := map[string]string{}
	for i, v := range []string{strategy.VarRSI, strategy.VarMACD, strategy.VarADX} {
		if i+1 < len(headers) && headers[i+1] != "" {
			labels[v] = headers[i+1]
		}
	}
	return labels
}
