// Command statusline turns extracted photo metadata fields into status lines
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/David-Botos/statusline/pkg/config"
)

var (
	// Global flags
	envFile   string
	rulesFile string

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "statusline",
		Short: "Build photo status lines from extracted metadata fields",
		Long: `statusline reads one photo per input line, each line holding the extracted
fields (Name, Sublocation, Location, ProvinceState, Country, Date, Creator),
and prints the cleaned status line for it.

Configuration is read from the environment, a .env file in the working
directory, and an optional --env-file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine, an explicit --env-file is not
			_ = godotenv.Load(".env")
			if envFile != "" {
				if err := godotenv.Overload(envFile); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", envFile, err)
				}
			}

			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if rulesFile != "" {
				cfg.RulesFile = rulesFile
			}

			logger, err = newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Additional .env file to load")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rule tables (overrides STATUSLINE_RULES_FILE)")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newValidateCmd())

	return rootCmd
}

// newLogger builds a zap logger for the given level and format
func newLogger(level, format string) (*zap.Logger, error) {
	var zcfg zap.Config
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// loadRuleTables loads and validates the configured rule tables
func loadRuleTables() (*config.RuleTables, error) {
	tables, err := config.LoadRuleTables(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	if err := tables.Validate(cfg.FieldCount); err != nil {
		return nil, fmt.Errorf("invalid rule tables: %w", err)
	}
	for _, overlap := range tables.Overlaps() {
		logger.Warn("Overlapping timespans, the first listed fills a field", zap.String("overlap", overlap))
	}
	return tables, nil
}
