package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/validation"
)

var version = "dev"

type cliOptions struct {
	configPath   string
	envFile      string
	outputFormat string
	logLevel     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:          "poha-forecast",
		Short:        "Steady-state financial model of a poha plant",
		SilenceUsage: true,
		Version:      version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(opts.envFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&opts.envFile, "env-file", "", "optional .env file loaded before the configuration")
	flags.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(opts),
		newSweepCommand(opts),
		newSeekCommand(opts),
		newPresetsCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// loadEnv loads environment variables from a .env file. A missing default
// file is not an error; a missing explicit one is.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed loading env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed loading .env: %w", err)
	}
	return nil
}

// session is a loaded configuration with its logger and output format.
type session struct {
	conf         *config.Configuration
	logger       *zap.Logger
	outputFormat string
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// openSession loads the configuration, builds the logger and resolves the
// output format, logging any configuration warnings.
func openSession(opts *cliOptions) (*session, error) {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{conf: conf, logger: logger, outputFormat: resolveOutputFormat(conf.Output.Format, opts.outputFormat)}
	if err := validation.ValidateOutputFormat(s.outputFormat); err != nil {
		s.close()
		return nil, err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return s, nil
}

// resolveOutputFormat prefers the CLI override, then the configured
// format, then pretty.
func resolveOutputFormat(configured, override string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return constants.OutputFormatPretty
}
