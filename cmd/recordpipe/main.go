// Command recordpipe generates synthetic record files, merges them into one
// artifact while dropping lines that contain a substring, and bulk-loads the
// artifact into a database table.
//
//	recordpipe -create -files 10 -strings 1000
//	recordpipe -delete abc
//	recordpipe -sql -db_driver sqlite -dsn records.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recordpipe/internal/config"
	"recordpipe/internal/loader"
	"recordpipe/internal/merge"
	"recordpipe/internal/metrics"
	"recordpipe/internal/metrics/datadog"
	"recordpipe/internal/metrics/prompush"
	"recordpipe/internal/pipeline"

	// register all backends with the storage factory.
	_ "recordpipe/internal/storage/all"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	getenv, err := config.WithDotEnv(os.Getenv, ".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process globals, returning the exit code.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)

	fs := flag.NewFlagSet("recordpipe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	issues := config.Validate(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		return exitUsage
	}
	if cfg.Validate {
		log.Printf("configuration is valid")
		return exitOK
	}
	if !cfg.AnyStage() {
		fs.Usage()
		return exitOK
	}

	flush := setupMetrics(cfg)
	defer flush()

	start := time.Now()
	rep := newReporter(cfg.Progress, stdout, cfg.Files)
	runner := pipeline.New(*cfg, rep.hooks())
	res, err := runner.Run(ctx)
	rep.finish()
	summarize(stdout, cfg, res)
	if err != nil {
		log.Printf("run=%s: %v", res.RunID, err)
		return exitFailure
	}
	if cfg.Verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return exitOK
}

// setupMetrics installs the configured backend and returns a function that
// flushes it. Backend init failures fall back to the no-op backend.
func setupMetrics(cfg *config.Config) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err = prompush.NewBackend(pipeline.DefaultJob, cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: cfg.DogStatsDAddr, GlobalTags: []string{"job:" + pipeline.DefaultJob}})
	default:
		if cfg.Verbose {
			log.Printf("metrics: disabled (backend=%q)", cfg.MetricsBackend)
		}
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", cfg.MetricsBackend, err)
		return func() {}
	}
	log.Printf("metrics: backend=%s", cfg.MetricsBackend)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// summarize prints the user-facing outcome of every stage that ran.
func summarize(w io.Writer, cfg *config.Config, rep pipeline.Report) {
	if c := rep.Create; c != nil {
		fmt.Fprintf(w, "created %d files x %d lines in %s\n", c.Files, c.LinesPerFile, c.Dir)
	}
	if m := rep.Merge; m != nil {
		switch m.Status {
		case merge.StatusNoFiles:
			fmt.Fprintf(w, "nothing to merge: %s is missing or empty\n", cfg.Dir)
		default:
			for _, f := range m.Missing() {
				fmt.Fprintf(w, "skipped %s: file disappeared\n", f.Path)
			}
			if cfg.Remove != "" {
				fmt.Fprintf(w, "dropped %d lines containing %q\n", m.Removed, cfg.Remove)
			}
			fmt.Fprintf(w, "merged %d files into %s: %d lines (xxh3 %016x)\n", len(m.Files), cfg.Artifact, m.Kept, m.Checksum)
		}
	}
	if l := rep.Load; l != nil {
		switch l.Status {
		case loader.StatusNoSource:
			fmt.Fprintf(w, "nothing to load: %s does not exist\n", cfg.Artifact)
		case loader.StatusOK:
			fmt.Fprintf(w, "loaded %d of %d rows into %s in %d batches\n", l.Count, l.Total, cfg.Table, l.Batches)
			if rep.TableRows >= 0 {
				fmt.Fprintf(w, "table %s now holds %d rows\n", cfg.Table, rep.TableRows)
			}
		}
	}
}
