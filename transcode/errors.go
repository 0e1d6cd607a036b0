package transcode

import "errors"

var (
	ErrUnsupportedFormat   = errors.New("unsupported audio format")
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")
	ErrInvalidWAV          = errors.New("not a valid WAV file")
	ErrInvalidAIFF         = errors.New("not a valid AIFF file")
	ErrEmptyAudio          = errors.New("audio contains no samples")
)
