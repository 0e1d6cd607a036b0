package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/sonido-extract/arrayio"
	"github.com/RyanBlaney/sonido-extract/features"
	"github.com/RyanBlaney/sonido-extract/logging"
)

// Extractor runs a transform by mode. *features.Registry satisfies it.
type Extractor interface {
	Lookup(m features.Mode) (features.TransformFunc, error)
	Extract(m features.Mode, path string) (*features.Array, error)
}

// Outcome is the result of processing one file. Err is nil on success and a
// *StageError otherwise.
type Outcome struct {
	Path     string
	Output   string
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the array was persisted.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Processor turns one audio file into one persisted array.
type Processor struct {
	extractor  Extractor
	mode       features.Mode
	inputRoot  string
	outputRoot string
	log        logging.Logger
}

// NewProcessor binds an extractor and mode to an input and output root.
func NewProcessor(extractor Extractor, mode features.Mode, inputRoot, outputRoot string, log logging.Logger) *Processor {
	if log == nil {
		log = &logging.NoOpLogger{}
	}
	return &Processor{
		extractor:  extractor,
		mode:       mode,
		inputRoot:  inputRoot,
		outputRoot: outputRoot,
		log:        log,
	}
}

// Process never panics and never returns an error: every failure,
// including a panicking transform, is captured in the Outcome. No output
// file is written unless the transform produced an array.
func (p *Processor) Process(path string) (out Outcome) {
	start := time.Now()
	out.Path = path

	defer func() {
		out.Duration = time.Since(start)
		if out.Err != nil {
			p.log.Warn("Failed to process file", logging.Fields{
				"path":  path,
				"stage": string(StageOf(out.Err)),
				"error": out.Err.Error(),
			})
			return
		}
		p.log.Debug("Processed file", logging.Fields{
			"path":        path,
			"output":      out.Output,
			"duration_ms": out.Duration.Milliseconds(),
		})
	}()

	dir, name, err := Mirror(p.inputRoot, p.outputRoot, path)
	if err != nil {
		out.Err = &StageError{Stage: StageMirror, Err: err}
		return out
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		out.Err = &StageError{Stage: StageMkdir, Err: err}
		return out
	}

	arr, err := p.extract(path)
	if err != nil {
		out.Err = &StageError{Stage: StageTransform, Err: err}
		return out
	}

	target := filepath.Join(dir, name)
	if err := arrayio.Save(target, arr); err != nil {
		out.Err = &StageError{Stage: StagePersist, Err: err}
		return out
	}

	out.Output = target
	return out
}

func (p *Processor) extract(path string) (arr *features.Array, err error) {
	defer func() {
		if r := recover(); r != nil {
			arr = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return p.extractor.Extract(p.mode, path)
}
