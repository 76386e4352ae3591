package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/wrangle/config"
	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/logging"
	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/translator"
)

// ============================================================================
// WRANGLE CLI: plain-English data cleaning
// ============================================================================

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "wrangle",
	Short: "Clean tabular data with plain-English instructions",
	Long: `wrangle loads a CSV, TSV or XLSX file, turns plain-English instructions
into transformation statements with a language model, applies them one
step at a time and exports the result.

Environment:
  GOOGLE_API_KEY / GEMINI_API_KEY   key for the gemini provider (default)
  OPENAI_API_KEY                    key for the openai provider
  WRANGLE_CONFIG                    path to a TOML config file
  WRANGLE_LOG_LEVEL                 overrides the configured log level

Examples:
  wrangle inspect --file people.csv
  wrangle apply --file people.csv -i "remove rows where age is missing" --out clean.csv
  wrangle apply --file people.csv --code 'df.Filter("age >= 18")' --recipe-out steps.yaml
  wrangle replay --file people.csv --recipe steps.yaml --out clean.xlsx
  wrangle tui --file people.csv
  wrangle serve`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./wrangle.toml or ~/.config/wrangle/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// loadConfig reads the configuration and builds the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		config.LoadDotEnv()
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.General.LogLevel = logLevel
	}

	log := logging.New(logging.Options{Level: cfg.General.LogLevel, Format: cfg.General.LogFormat})
	slog.SetDefault(log)
	return cfg, log, nil
}

// newTranslator builds the configured provider.
func newTranslator(cfg *config.Config, log *slog.Logger) (translator.Translator, error) {
	return translator.New(translator.Config{
		Provider:    cfg.Translator.Provider,
		APIKey:      cfg.Translator.APIKey,
		Model:       cfg.Translator.Model,
		Endpoint:    cfg.Translator.Endpoint,
		Timeout:     cfg.Translator.Timeout.Duration,
		Temperature: cfg.Translator.Temperature,
		Logger:      log,
	})
}

// newOrchestrator wires a session. tr may be nil for statement-only use.
func newOrchestrator(cfg *config.Config, log *slog.Logger, tr translator.Translator) *session.Orchestrator {
	return session.NewOrchestrator(tr,
		session.WithSampleRows(cfg.Translator.SampleRows),
		session.WithExecutorOptions(
			executor.WithMaxCodeLength(cfg.Executor.MaxCodeLength),
			executor.WithLogger(logging.Component(log, "executor")),
		),
		session.WithLogger(log),
	)
}

// optionalTranslator returns nil with a warning when no provider can be
// built, so interactive surfaces still accept statements.
func optionalTranslator(cfg *config.Config, log *slog.Logger) translator.Translator {
	tr, err := newTranslator(cfg, log)
	if err != nil {
		log.Warn("translator unavailable, only statements can be applied", "error", err)
		return nil
	}
	return tr
}

// loadFile reads path into a fresh session keyed by its base name.
func loadFile(o *session.Orchestrator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := o.Load(filepath.Base(path), data); err != nil {
		return err
	}
	return nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
