package features

import (
	"errors"

	"github.com/RyanBlaney/sonido-extract/algorithms/spectral"
)

var (
	// ErrUnsupportedMode is returned for a mode outside the closed set or one
	// with no registered transform.
	ErrUnsupportedMode = errors.New("unsupported transform mode")

	// ErrNoArray is returned when a transform completes without producing
	// an array.
	ErrNoArray = errors.New("transform produced no array")

	ErrSignalTooLong = spectral.ErrSignalTooLong
	ErrRaggedRows    = errors.New("rows have different lengths")
)
