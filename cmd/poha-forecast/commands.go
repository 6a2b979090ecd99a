package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/internal/forecast"
	"github.com/iwvelando/poha-forecast/internal/optimizer"
	"github.com/iwvelando/poha-forecast/internal/server"
	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/output"
	"github.com/iwvelando/poha-forecast/pkg/validation"
)

func newRunCommand(opts *cliOptions) *cobra.Command {
	var optimize bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every active scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			var seekResult *optimizer.Result
			if optimize {
				if seekResult, err = runSeek(s); err != nil {
					return err
				}
			}

			results, err := computeForecast(cmd.Context(), s)
			if err != nil {
				return err
			}
			if seekResult != nil {
				seekResult.Apply(results)
			}
			return output.Write(cmd.OutOrStdout(), s.outputFormat, results)
		},
	}

	cmd.Flags().BoolVar(&optimize, "optimize", false, "apply seek directives before evaluating")
	return cmd
}

func newSweepCommand(opts *cliOptions) *cobra.Command {
	var (
		field   string
		low     float64
		high    float64
		workers int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Vary one assumption and report net profit at each step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			sensitivity := s.conf.Common.Sensitivity
			if sensitivity == nil {
				sensitivity = &config.SensitivityConfig{}
			}
			if field != "" {
				sensitivity.Field = field
			}
			if cmd.Flags().Changed("low") {
				sensitivity.Low = &low
			}
			if cmd.Flags().Changed("high") {
				sensitivity.High = &high
			}
			if workers > 0 {
				sensitivity.Workers = workers
			}
			if sensitivity.Field == "" {
				return fmt.Errorf("no sensitivity field: pass --field or set common.sensitivity.field")
			}
			s.conf.Common.Sensitivity = sensitivity

			results, err := computeForecast(cmd.Context(), s)
			if err != nil {
				return err
			}
			return output.SensitivityFormat(cmd.OutOrStdout(), s.outputFormat, results)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "assumption to vary, e.g. productPricePerKg")
	cmd.Flags().Float64Var(&low, "low", constants.DefaultSweepLow, "lowest change in percent")
	cmd.Flags().Float64Var(&high, "high", constants.DefaultSweepHigh, "highest change in percent")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent evaluations (default "+strconv.Itoa(constants.DefaultSweepWorkers)+")")
	return cmd
}

func newSeekCommand(opts *cliOptions) *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "seek",
		Short: "Solve each scenario's seek directives and report the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()

			seekResult, err := runSeek(s)
			if err != nil {
				return err
			}
			if seekResult.Empty() {
				s.logger.Warn("no seek directives in active scenarios",
					zap.String("op", "main.seek"),
				)
			}

			if savePath != "" {
				if err := saveConfiguration(savePath, s.conf); err != nil {
					return err
				}
				s.logger.Info("saved configuration with seek results",
					zap.String("op", "main.seek"),
					zap.String("path", savePath),
				)
			}

			results, err := computeForecast(cmd.Context(), s)
			if err != nil {
				return err
			}
			seekResult.Apply(results)
			return output.Write(cmd.OutOrStdout(), s.outputFormat, results)
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "write the configuration with seek results to this path")
	return cmd
}

func newPresetsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in assumption presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat := resolveOutputFormat("", opts.outputFormat)
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}
			return writePresets(cmd.OutOrStdout(), outputFormat)
		},
	}
}

func newServeCommand(opts *cliOptions) *cobra.Command {
	var (
		serverConfigPath string
		address          string
		maxUploadSize    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				cfg.SetUploadSizeBytes(size)
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			return serve(cmd.Context(), logger, cfg)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	cmd.Flags().StringVar(&maxUploadSize, "max-upload-size", "", "upload limit override, e.g. 512K")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      server.NewHandler(logger.Named("server"), cfg.UploadSizeBytes(), version),
		ReadTimeout:  cfg.RequestTimeoutDuration(),
		WriteTimeout: cfg.RequestTimeoutDuration(),
		IdleTimeout:  4 * cfg.RequestTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("max_upload_bytes", cfg.UploadSizeBytes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received", zap.String("op", "main.serve"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func runSeek(s *session) (*optimizer.Result, error) {
	runner, err := optimizer.NewRunner(s.logger, s.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize optimizer: %w", err)
	}
	result, err := runner.Run()
	if err != nil {
		return nil, fmt.Errorf("optimizer execution failed: %w", err)
	}
	return result, nil
}

func computeForecast(ctx context.Context, s *session) ([]forecast.Forecast, error) {
	results, err := forecast.GetForecastContext(ctx, s.logger, *s.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute forecast: %w", err)
	}
	return results, nil
}

func saveConfiguration(path string, conf *config.Configuration) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration to %s: %w", path, err)
	}
	return nil
}

// writePresets renders every preset. Pretty and CSV output lay the presets
// side by side, one row per assumption.
func writePresets(w io.Writer, outputFormat string) error {
	names := financials.PresetNames()
	presets := make(map[string]financials.Assumptions, len(names))
	for _, name := range names {
		a, err := financials.Preset(name)
		if err != nil {
			return err
		}
		presets[name] = a
	}

	if outputFormat == constants.OutputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(presets)
	}

	records := [][]string{append([]string{"Field"}, names...)}
	for _, field := range financials.Fields() {
		record := []string{string(field)}
		for _, name := range names {
			v, err := presets[name].Get(field)
			if err != nil {
				return err
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		records = append(records, record)
	}

	if outputFormat == constants.OutputFormatCSV {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		return nil
	}

	p := message.NewPrinter(language.English)
	for _, record := range records {
		label := record[0]
		if f, err := financials.ParseField(label); err == nil {
			label = f.Label()
		}
		_, _ = p.Fprintf(w, "%-30s", label)
		for _, value := range record[1:] {
			_, _ = p.Fprintf(w, " | %14s", value)
		}
		_, _ = p.Fprintf(w, "\n")
	}
	return nil
}
