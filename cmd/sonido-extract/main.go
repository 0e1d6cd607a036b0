// Command sonido-extract walks an audio tree, applies one feature transform
// to every file and writes the arrays to a mirrored output tree.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/RyanBlaney/sonido-extract/config"
	"github.com/RyanBlaney/sonido-extract/features"
	"github.com/RyanBlaney/sonido-extract/logging"
	"github.com/RyanBlaney/sonido-extract/pipeline"
	"github.com/RyanBlaney/sonido-extract/transcode"
)

const (
	exitOK        = 0
	exitFatal     = 1
	exitAllFailed = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// 1. Defaults, env file, environment, flags.
	cfg, err := config.Load(args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, config.ErrVersion):
		fmt.Fprintf(stdout, "sonido-extract %s\n", config.Version)
		return exitOK
	case err != nil:
		fmt.Fprintf(stderr, "sonido-extract: %v\n", err)
		return exitFatal
	}

	sink := newLogSink(stderr)
	log := newLogger(cfg, stdout, sink)

	// 2. Decoder and transform registry.
	decoder, err := transcode.NewDecoder(&transcode.DecoderConfig{
		MaxDuration:     cfg.MaxDuration,
		ResampleQuality: cfg.ResampleQuality,
	})
	if err != nil {
		log.Error(err, "Invalid decoder configuration")
		return exitFatal
	}
	registry := features.NewRegistry(decoder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Run with a progress bar unless disabled.
	bar := newProgress(stderr, sink, cfg.Mode, !cfg.NoProgress)
	report, err := pipeline.NewRunner(registry).Run(ctx, pipeline.Options{
		InputRoot:    cfg.InputDir,
		OutputRoot:   cfg.OutputDir,
		Mode:         cfg.Mode,
		Concurrency:  cfg.Concurrency,
		Sequential:   cfg.Sequential,
		Extensions:   cfg.Extensions,
		OnDiscovered: bar.Start,
		Observer:     bar.Observe,
		Logger:       log,
	})
	bar.Wait()

	switch {
	case report == nil:
		log.Error(err, "Extraction could not start")
		return exitFatal
	case err != nil:
		log.Error(err, "Extraction interrupted", logging.Fields{
			"succeeded":   report.Succeeded,
			"failed":      report.Failed,
			"not_started": report.NotStarted,
		})
		return exitFatal
	case report.AllFailed():
		return exitAllFailed
	}
	return exitOK
}

func newLogger(cfg *config.Config, stdout, stderr io.Writer) logging.Logger {
	base := logging.NewDefaultLoggerWithWriters(stdout, stderr)
	level, _ := logging.ParseLevel(cfg.LogLevel) // already validated
	base.SetLevel(level)
	logging.SetGlobalLogger(base)

	if cfg.NoColor {
		logging.DisableColors()
	} else {
		logging.EnableColors()
	}

	return base.WithFields(logging.Fields{"component": "sonido-extract"})
}
