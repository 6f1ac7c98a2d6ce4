package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/argspec/pkg/logging"
	"github.com/ormasoftchile/argspec/pkg/metrics"
	"github.com/ormasoftchile/argspec/pkg/report"
	"github.com/ormasoftchile/argspec/pkg/spec"
	"github.com/ormasoftchile/argspec/pkg/validate"
	"github.com/ormasoftchile/argspec/pkg/watch"
)

var (
	validateSpec        string
	validateArgs        string
	validateFormat      string
	validateMetricsFile string
	validateConcurrency int
	validateWatch       bool
)

// errInvalidArgs marks a run that completed but found warnings.
var errInvalidArgs = errors.New("arguments are invalid")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an args file against a model spec",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	format := cfg.Validate.Format
	if cmd.Flags().Changed("format") {
		format = validateFormat
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	concurrency := cfg.Validate.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = validateConcurrency
	}
	metricsFile := cfg.Metrics.Textfile
	if cmd.Flags().Changed("metrics-file") {
		metricsFile = validateMetricsFile
	}

	logger := logging.FromContext(cmd.Context())
	opts := []validate.Option{
		validate.WithLogger(logger),
		validate.WithConcurrency(concurrency),
	}
	var collector *metrics.Collector
	if metricsFile != "" {
		collector = metrics.NewCollector(nil)
		opts = append(opts, validate.WithObserver(collector))
	}
	v := validate.New(opts...)

	out := cmd.OutOrStdout()
	ropts := report.Options{Styled: isTerminal(out), Width: 100}
	run := func(ctx context.Context) error {
		_, err := validateOnce(ctx, out, v, validateSpec, validateArgs, f, ropts)
		if collector != nil {
			if werr := collector.WriteTextfile(metricsFile); werr != nil {
				logger.Error("failed to write metrics", "path", metricsFile, "error", werr)
			}
		}
		return err
	}

	if !validateWatch {
		return run(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx); err != nil && !errors.Is(err, errInvalidArgs) {
		logger.Error("validation failed", "error", err)
	}
	return watch.Watch(ctx, watch.Config{
		Paths:  []string{validateSpec, validateArgs},
		Logger: logger,
	}, func(ctx context.Context) error {
		fmt.Fprintln(out)
		if err := run(ctx); err != nil && !errors.Is(err, errInvalidArgs) {
			return err
		}
		return nil
	})
}

// validateOnce loads both files, validates and writes the report. It
// returns errInvalidArgs when the report has warnings.
func validateOnce(ctx context.Context, w io.Writer, v *validate.Validator, specPath, argsPath string, format report.Format, opts report.Options) (report.Report, error) {
	ms, err := spec.LoadFile(specPath)
	if err != nil {
		return report.Report{}, err
	}
	values, err := spec.LoadArgsFile(argsPath)
	if err != nil {
		return report.Report{}, err
	}
	warnings, err := v.Validate(ctx, values, &ms.Args)
	if err != nil {
		return report.Report{}, fmt.Errorf("%s: %w", specPath, err)
	}

	rep := report.New(ms.ModelName, argsPath, warnings)
	if err := report.Write(w, format, rep, opts); err != nil {
		return rep, err
	}
	if !rep.Valid {
		return rep, fmt.Errorf("%w: %d warning(s)", errInvalidArgs, len(rep.Warnings))
	}
	return rep, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func init() {
	validateCmd.Flags().StringVar(&validateSpec, "spec", "", "Model spec YAML file")
	validateCmd.Flags().StringVar(&validateArgs, "args", "", "Args YAML or JSON file")
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Report format: text, json or markdown")
	validateCmd.Flags().StringVar(&validateMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after each run")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 1, "Checkers run at once")
	validateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Re-validate whenever the model spec or args file changes")
	_ = validateCmd.MarkFlagRequired("spec")
	_ = validateCmd.MarkFlagRequired("args")
}
