// Package cli holds the plumbing shared by the ecomdata commands: config
// loading, logger construction, metrics backend selection and flag helpers.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"ecomdata/internal/config"
	"ecomdata/internal/logger"
	"ecomdata/internal/metrics"
	"ecomdata/internal/metrics/datadog"
	"ecomdata/internal/metrics/prompush"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks errors that should exit with ExitUsage.
var ErrUsage = errors.New("usage error")

// Usagef returns an error wrapping ErrUsage.
func Usagef(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, a...))
}

// NewFlagSet returns a flag set that reports errors instead of exiting and
// writes its usage text to stderr.
func NewFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// Parse parses args. -h/-help exits cleanly; anything else is a usage error.
func Parse(fs *flag.FlagSet, args []string) (exit int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK, false
		}
		return ExitUsage, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return ExitUsage, false
	}
	return ExitOK, true
}

// SplitList parses a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewLogger builds the command logger from cfg. Logs go to w.
func NewLogger(cfg *config.Config, command string, w io.Writer) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: command,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		ErrorStack:  cfg.LogErrorStack,
		Output:      w,
	})
}

// InitMetrics installs the backend named by cfg.MetricsBackend. The returned
// cleanup flushes or closes it and restores the nop backend; it is never nil.
func InitMetrics(ctx context.Context, cfg *config.Config) (func() error, error) {
	noop := func() error { return nil }

	switch cfg.MetricsBackend {
	case "", config.MetricsNone:
		return noop, nil

	case config.MetricsPushgateway:
		b, err := prompush.NewBackend(cfg.MetricsJob, cfg.PushgatewayURL)
		if err != nil {
			return noop, err
		}
		metrics.SetBackend(b)
		return func() error {
			defer metrics.SetBackend(nil)
			return b.Flush()
		}, nil

	case config.MetricsDatadog:
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    cfg.MetricsJob,
			Tags:       datadog.ParseTagsCSV(cfg.MetricsTags),
			FlushEvery: cfg.MetricsFlushEvery,
		})
		if err != nil {
			return noop, err
		}
		metrics.SetBackend(b)
		return func() error {
			defer metrics.SetBackend(nil)
			return b.Close()
		}, nil

	default:
		return noop, fmt.Errorf("metrics: unknown backend %q", cfg.MetricsBackend)
	}
}

// IsSet reports whether the flag name was given on the command line.
func IsSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Deps are the process-level seams every command takes so tests can run
// runMain without touching the environment or the network.
type Deps struct {
	LoadConfig  func() (*config.Config, error)
	InitMetrics func(context.Context, *config.Config) (func() error, error)
	Now         func() time.Time
}

// DefaultDeps wires the real implementations.
func DefaultDeps() Deps {
	return Deps{LoadConfig: config.Load, InitMetrics: InitMetrics, Now: time.Now}
}

// RunFunc is the body of a command, called once config, logging and
// metrics are in place.
type RunFunc func(ctx context.Context, cfg *config.Config, log *logger.Logger) error

// Execute loads config, builds the logger, installs metrics, runs fn and
// maps its error to an exit code. Errors wrapping ErrUsage exit with
// ExitUsage.
func Execute(ctx context.Context, command string, stderr io.Writer, deps Deps, fn RunFunc) int {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", command, err)
		return ExitFailure
	}

	log := NewLogger(cfg, command, stderr)
	ctx = log.WithCommand(ctx, command)

	cleanup, err := deps.InitMetrics(ctx, cfg)
	if err != nil {
		log.Warn(log.WithField(ctx, "error", err.Error()), "metrics disabled")
	}
	defer func() {
		if cleanup == nil {
			return
		}
		if err := cleanup(); err != nil {
			log.Error(ctx, "metrics flush failed", err)
		}
	}()

	started := time.Now()
	err = fn(ctx, cfg, log)
	metrics.ObserveStep(command, started, err)

	switch {
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(stderr, "%s: %v\n", command, err)
		return ExitUsage
	case err != nil:
		log.Error(ctx, command+" failed", err)
		return ExitFailure
	}
	log.Debug(log.WithField(ctx, "elapsed", time.Since(started).String()), "done")
	return ExitOK
}
