package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrOutsideInputRoot is returned by Mirror for files that do not live
	// beneath the input root.
	ErrOutsideInputRoot = errors.New("file is outside the input root")

	// ErrInputRoot is returned when the input root is missing, unreadable
	// or not a directory.
	ErrInputRoot = errors.New("invalid input root")

	// ErrPanic marks a transform that panicked.
	ErrPanic = errors.New("transform panicked")

	// ErrOutputCollision marks files whose output paths coincide, such as
	// x.wav and x.WAV in the same directory. None of them is processed.
	ErrOutputCollision = errors.New("output path shared with another input")
)

// Stage names the step of per-file processing that failed.
type Stage string

const (
	StageMirror    Stage = "mirror"
	StageMkdir     Stage = "mkdir"
	StageTransform Stage = "transform"
	StagePersist   Stage = "persist"
)

// StageError tags a per-file error with the stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, or "" if none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
