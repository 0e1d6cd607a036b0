package main

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/RyanBlaney/sonido-extract/features"
	"github.com/RyanBlaney/sonido-extract/pipeline"
)

// logSink is the logger's stderr. While a bar is rendering it forwards
// lines through the progress container so they print above the bar.
type logSink struct {
	mu       sync.Mutex
	w        io.Writer
	fallback io.Writer
}

func newLogSink(w io.Writer) *logSink {
	return &logSink{w: w, fallback: w}
}

func (s *logSink) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.w.Write(b)
	if err != nil && s.w != s.fallback {
		// container already shut down
		return s.fallback.Write(b)
	}
	return n, err
}

func (s *logSink) route(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func (s *logSink) reset() { s.route(s.fallback) }

// progress renders one bar per run. A disabled progress is inert.
type progress struct {
	enabled bool
	out     io.Writer
	sink    *logSink
	mode    features.Mode

	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgress(out io.Writer, sink *logSink, mode features.Mode, enabled bool) *progress {
	return &progress{enabled: enabled, out: out, sink: sink, mode: mode}
}

// Start creates the bar once the file count is known.
func (pr *progress) Start(total int) {
	if !pr.enabled || total == 0 {
		return
	}
	pr.p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(pr.out), mpb.WithAutoRefresh())
	pr.bar = pr.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(string(pr.mode)+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)
	if pr.sink != nil {
		pr.sink.route(pr.p)
	}
}

// Observe advances the bar by one file.
func (pr *progress) Observe(o pipeline.Outcome) {
	if pr.bar != nil {
		pr.bar.EwmaIncrement(o.Duration)
	}
}

// Wait flushes the bar; an unfinished bar (cancelled run) is aborted in place.
// Log lines go straight to the terminal again afterwards.
func (pr *progress) Wait() {
	if pr.p == nil {
		return
	}
	if !pr.bar.Completed() {
		pr.bar.Abort(false)
	}
	pr.p.Wait()
	if pr.sink != nil {
		pr.sink.reset()
	}
}
