// Command ssam splits one or more aligned input files into randomly sampled
// sets (for example train, dev and test).
//
//	ssam -n test,dev,train -s 1000,0.1,* -S 42 -o splits corpus.en corpus.nl
//
// Without input files a single column is read from standard input. When there
// is one column and one set the result goes to standard output; otherwise one
// file per column and set is written as <output>/<stem>.<set>.<extension>.
// Diagnostics are written to standard error only.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/proycon/ssam/internal/config"
	"github.com/proycon/ssam/internal/errs"
	"github.com/proycon/ssam/internal/metrics"
	"github.com/proycon/ssam/internal/metrics/datadog"
	"github.com/proycon/ssam/internal/metrics/prompush"
	"github.com/proycon/ssam/internal/split"
)

func main() {
	os.Exit(run(context.Background(), os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errs.ExitOK
		}
		fmt.Fprintf(stderr, "ssam: %v\n", err)
		return errs.ExitCode(err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := config.Err(issues); err != nil {
		log.Error("configuration is invalid", "err", err)
		return errs.ExitCode(err)
	}
	if cfg.ValidateOnly {
		log.Info("configuration is valid")
		return errs.ExitOK
	}

	runID := uuid.NewString()
	if flush := setupMetrics(cfg, runID, log); flush != nil {
		defer flush()
	}

	start := time.Now()
	sum, err := split.Run(ctx, cfg, split.Streams{Stdin: stdin, Stdout: stdout}, log)
	if err != nil {
		log.Error("split failed", "err", err, "seed", sum.Seed)
		return errs.ExitCode(err)
	}
	log.Debug("completed", "run", runID, "seed", sum.Seed, "elapsed", time.Since(start).Truncate(time.Millisecond))
	return errs.ExitOK
}

// setupMetrics installs the configured backend and returns a function that
// flushes it, or nil when metrics are disabled.
func setupMetrics(cfg *config.Config, runID string, log *slog.Logger) func() {
	backend := strings.ToLower(strings.TrimSpace(cfg.MetricsBackend))
	switch backend {
	case "pushgateway":
		b, err := prompush.NewBackend(cfg.Job, runID, cfg.PushgatewayURL)
		if err != nil {
			log.Warn("metrics: failed to init prom push backend; using nop", "err", err)
			return nil
		}
		metrics.SetBackend(b)
		log.Debug("metrics", "backend", backend, "url", cfg.PushgatewayURL, "job", cfg.Job, "instance", runID)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.DogStatsDAddr,
			GlobalTags: []string{"job:" + cfg.Job, "run:" + runID},
		})
		if err != nil {
			log.Warn("metrics: failed to init datadog backend; using nop", "err", err)
			return nil
		}
		metrics.SetBackend(b)
		log.Debug("metrics", "backend", backend, "addr", cfg.DogStatsDAddr, "job", cfg.Job, "run", runID)

	default:
		// metrics disabled; nop backend remains
		log.Debug("metrics: disabled", "backend", cfg.MetricsBackend)
		return nil
	}

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", "err", err)
		}
	}
}
