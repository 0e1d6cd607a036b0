package features

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-extract/transcode"
)

// TransformFunc turns one audio file into a feature array. Implementations
// must be deterministic and safe to call from many goroutines at once.
type TransformFunc func(path string) (*Array, error)

// AudioLoader decodes a file to mono PCM. targetRate <= 0 keeps the native
// rate. *transcode.Decoder satisfies it.
type AudioLoader interface {
	DecodeFile(path string, targetRate int) (*transcode.AudioData, error)
}

// Registry maps modes to transforms.
type Registry struct {
	mu         sync.RWMutex
	transforms map[Mode]TransformFunc
}

// NewRegistry returns a registry holding the six built-in transforms, all
// reading audio through loader.
func NewRegistry(loader AudioLoader) *Registry {
	r := NewEmptyRegistry()
	x := newExtractor(loader)

	r.transforms[ModeMelSpectrogram] = x.melSpectrogram
	r.transforms[ModeGammatonegram] = x.gammatonegram
	r.transforms[ModeMFCC] = x.mfcc
	r.transforms[ModeSTFT] = x.stft
	r.transforms[ModeCQT] = x.cqt
	r.transforms[ModeWST] = x.wst
	return r
}

// NewEmptyRegistry returns a registry with no transforms.
func NewEmptyRegistry() *Registry {
	return &Registry{transforms: make(map[Mode]TransformFunc)}
}

// Register installs or replaces the transform for m. Only the six known
// modes may be registered.
func (r *Registry) Register(m Mode, fn TransformFunc) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, string(m))
	}
	if fn == nil {
		return fmt.Errorf("nil transform for mode %s", m)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[m] = fn
	return nil
}

// Lookup returns the transform for m or ErrUnsupportedMode.
func (r *Registry) Lookup(m Mode) (TransformFunc, error) {
	r.mu.RLock()
	fn, ok := r.transforms[m]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, string(m))
	}
	return fn, nil
}

// Extract runs the transform for m on path. A transform that returns
// neither an array nor an error yields ErrNoArray.
func (r *Registry) Extract(m Mode, path string) (*Array, error) {
	fn, err := r.Lookup(m)
	if err != nil {
		return nil, err
	}

	arr, err := fn(path)
	if err != nil {
		return nil, err
	}
	if arr == nil {
		return nil, ErrNoArray
	}
	if err := arr.Validate(); err != nil {
		return nil, fmt.Errorf("transform %s returned a malformed array: %w", m, err)
	}
	return arr, nil
}
