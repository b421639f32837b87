package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tsunamieval/internal/config"
	"tsunamieval/internal/experiment"
	"tsunamieval/internal/report"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		configFile string
		outputDir  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "tsunamieval [dataset.csv]",
		Short: "Compare tsunami classifiers with repeated cross-validation",
		Long: `Evaluates logistic regression, random forest and gradient boosting on an
earthquake dataset. Each model is cross-validated on the training split over
several trials, then scored on the held-out test split. Summary tables,
confusion matrices and a comparison chart are written to the output directory.

Run without arguments to use the built-in defaults.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := config.Load(configFile)
			if err != nil {
				logger.Error("load config", zap.Error(err))
				return err
			}
			if len(args) == 1 {
				cfg.Data.Path = args[0]
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}

			if _, err := run(cfg, logger, out); err != nil {
				logger.Error("run failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML file overlaying the default configuration")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func run(cfg config.Config, logger *zap.Logger, out io.Writer) (*experiment.Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results, err := experiment.NewRunner(cfg, logger, out).Run()
	if err != nil {
		return nil, err
	}

	summary := report.Summarize(results)
	if _, err := report.NewReporter(cfg, logger, out).Report(results, summary); err != nil {
		return nil, err
	}

	logger.Info("evaluation complete",
		zap.String("run_id", results.RunID),
		zap.String("output_dir", cfg.Output.Dir))
	return results, nil
}
