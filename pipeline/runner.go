package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-extract/features"
	"github.com/RyanBlaney/sonido-extract/logging"
)

// DefaultConcurrency is the worker count used when Options.Concurrency is
// not positive.
const DefaultConcurrency = 8

// Options configures one batch run.
type Options struct {
	InputRoot   string
	OutputRoot  string
	Mode        features.Mode
	Concurrency int
	Sequential  bool     // process in discovery order on the calling goroutine
	Extensions  []string // defaults to DefaultExtensions

	// OnDiscovered is called once with the number of files found, before
	// any is processed.
	OnDiscovered func(total int)

	// Observer is called once per outcome, always from the same goroutine.
	Observer func(Outcome)

	Logger logging.Logger
}

// Runner drives the per-file processor over a dataset.
type Runner struct {
	extractor Extractor
}

// NewRunner creates a runner over the given transforms
func NewRunner(extractor Extractor) *Runner {
	return &Runner{extractor: extractor}
}

// Run validates the mode and input root, discovers files and processes
// each one. Configuration errors are returned before any file is touched.
// When ctx is cancelled no further files are started, in-flight files are
// finished, and the partial report is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = logging.WithFields(logging.Fields{"component": "pipeline"})
	}

	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", features.ErrUnsupportedMode, string(opts.Mode))
	}
	if _, err := r.extractor.Lookup(opts.Mode); err != nil {
		return nil, err
	}

	files, err := Discover(opts.InputRoot, opts.Extensions, log)
	if err != nil {
		return nil, err
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if opts.Sequential {
		workers = 1
	}

	log.Info("Starting feature extraction", logging.Fields{
		"mode":       string(opts.Mode),
		"input":      opts.InputRoot,
		"output":     opts.OutputRoot,
		"files":      len(files),
		"workers":    workers,
		"sequential": opts.Sequential,
	})
	if opts.OnDiscovered != nil {
		opts.OnDiscovered(len(files))
	}

	start := time.Now()
	report := &Report{Mode: opts.Mode, Total: len(files)}
	proc := NewProcessor(r.extractor, opts.Mode, opts.InputRoot, opts.OutputRoot, log)

	observe := func(o Outcome) {
		report.record(o)
		if opts.Observer != nil {
			opts.Observer(o)
		}
	}

	files, collided := splitCollisions(opts.InputRoot, opts.OutputRoot, files)
	for _, o := range collided {
		log.Warn("Skipping file with a shared output path", logging.Fields{
			"path":  o.Path,
			"error": o.Err.Error(),
		})
		observe(o)
	}

	if opts.Sequential {
		runSequential(ctx, proc, files, observe)
	} else {
		runPool(ctx, proc, files, workers, observe)
	}

	report.finish(start)
	logSummary(log, report)

	if err := ctx.Err(); err != nil {
		log.Warn("Run cancelled", logging.Fields{"not_started": report.NotStarted})
		return report, err
	}
	return report, nil
}

// splitCollisions separates files whose mirrored output paths are unique
// from groups that would write the same array. Every member of a group
// becomes a mirror-stage Failure so the result does not depend on which
// worker finishes last. Order of the unique files is preserved.
func splitCollisions(inputRoot, outputRoot string, files []string) (unique []string, collided []Outcome) {
	byOutput := make(map[string][]string, len(files))
	for _, f := range files {
		if out, err := OutputPath(inputRoot, outputRoot, f); err == nil {
			byOutput[out] = append(byOutput[out], f)
		}
	}

	for _, f := range files {
		out, err := OutputPath(inputRoot, outputRoot, f)
		if err != nil || len(byOutput[out]) == 1 {
			unique = append(unique, f)
			continue
		}
		collided = append(collided, Outcome{
			Path: f,
			Err: &StageError{
				Stage: StageMirror,
				Err:   fmt.Errorf("%w: %s also maps to %s", ErrOutputCollision, strings.Join(others(byOutput[out], f), ", "), out),
			},
		})
	}
	return unique, collided
}

func others(group []string, self string) []string {
	out := make([]string, 0, len(group)-1)
	for _, g := range group {
		if g != self {
			out = append(out, g)
		}
	}
	return out
}

func runSequential(ctx context.Context, proc *Processor, files []string, observe func(Outcome)) {
	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		observe(proc.Process(path))
	}
}

// runPool fans files out to a fixed set of workers. observe runs on the
// calling goroutine only.
func runPool(ctx context.Context, proc *Processor, files []string, workers int, observe func(Outcome)) {
	jobs := make(chan string)
	results := make(chan Outcome, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- proc.Process(path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		observe(o)
	}
}

func logSummary(log logging.Logger, report *Report) {
	fields := logging.Fields{
		"mode":        string(report.Mode),
		"total":       report.Total,
		"succeeded":   report.Succeeded,
		"failed":      report.Failed,
		"not_started": report.NotStarted,
		"elapsed":     report.Elapsed.Round(time.Millisecond).String(),
	}

	switch {
	case report.Total == 0:
		log.Warn("No matching audio files found", fields)
	case report.AllFailed():
		log.Warn("Every processed file failed", fields)
	default:
		log.Info("Feature extraction finished", fields)
	}
}
