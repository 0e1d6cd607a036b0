package transcode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-extract/logging"
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono PCM in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // always 1 after mixing
	Duration   time.Duration `json:"duration"`
	Metadata   *FileMetadata `json:"metadata,omitempty"`
}

// FileMetadata describes the source file before mixing and resampling
type FileMetadata struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth,omitempty"`
	Samples    int    `json:"samples"` // per channel
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	MaxDuration     time.Duration `json:"max_duration"`     // 0 keeps the whole file
	ResampleQuality string        `json:"resample_quality"` // "fast", "medium", "high"
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		MaxDuration:     0,
		ResampleQuality: "medium",
	}
}

// Decoder reads audio files by extension and returns mono PCM at a requested
// sample rate. It holds no per-call state and is safe for concurrent use.
type Decoder struct {
	config    *DecoderConfig
	formats   map[string]FormatDecoder
	resampler *Resampler
}

// NewDecoder creates a decoder for WAV, AIFF, MP3 and Ogg Vorbis files
func NewDecoder(config *DecoderConfig) (*Decoder, error) {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	halfWidth, err := halfWidthForQuality(config.ResampleQuality)
	if err != nil {
		return nil, err
	}
	if config.MaxDuration < 0 {
		return nil, fmt.Errorf("max duration must not be negative: %v", config.MaxDuration)
	}

	d := &Decoder{
		config:    config,
		formats:   make(map[string]FormatDecoder),
		resampler: NewResampler(halfWidth),
	}
	d.Register(wavFormat{}, ".wav", ".wave")
	d.Register(aiffFormat{}, ".aiff", ".aif")
	d.Register(mp3Format{}, ".mp3")
	d.Register(vorbisFormat{}, ".ogg", ".oga")
	return d, nil
}

// Register binds a format decoder to one or more file extensions. Extensions
// are matched case-insensitively. Not safe to call concurrently with Decode.
func (d *Decoder) Register(format FormatDecoder, extensions ...string) {
	for _, ext := range extensions {
		d.formats[strings.ToLower(ext)] = format
	}
}

// SupportedExtensions returns the registered extensions in sorted order
func (d *Decoder) SupportedExtensions() []string {
	exts := make([]string, 0, len(d.formats))
	for ext := range d.formats {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// DecodeFile decodes an audio file to mono PCM. targetRate <= 0 keeps the
// file's native sample rate.
func (d *Decoder) DecodeFile(filename string, targetRate int) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	audio, err := d.Decode(f, filepath.Ext(filename), targetRate)
	if err != nil {
		logger.Debug("Audio decode failed", logging.Fields{"error": err.Error()})
		return nil, err
	}
	audio.Metadata.Path = filename

	logger.Debug("Audio decode completed", logging.Fields{
		"input_format":       audio.Metadata.Format,
		"input_sample_rate":  audio.Metadata.SampleRate,
		"input_channels":     audio.Metadata.Channels,
		"output_samples":     len(audio.PCM),
		"output_sample_rate": audio.SampleRate,
		"output_duration":    audio.Duration.Seconds(),
	})

	return audio, nil
}

// Decode reads a complete stream whose container is identified by ext.
func (d *Decoder) Decode(r io.ReadSeeker, ext string, targetRate int) (*AudioData, error) {
	format, ok := d.formats[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	raw, err := format.Decode(r)
	if err != nil {
		return nil, err
	}
	if raw.channels <= 0 || raw.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedEncoding, raw.channels, raw.sampleRate)
	}
	if len(raw.samples) < raw.channels {
		return nil, ErrEmptyAudio
	}

	mono := MixToMono(raw.samples, raw.channels)

	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(raw.sampleRate))
		if limit > 0 && len(mono) > limit {
			mono = mono[:limit]
		}
	}

	rate := raw.sampleRate
	if targetRate > 0 && targetRate != raw.sampleRate {
		mono, err = d.resampler.Resample(mono, raw.sampleRate, targetRate)
		if err != nil {
			return nil, err
		}
		rate = targetRate
	}

	return &AudioData{
		PCM:        mono,
		SampleRate: rate,
		Channels:   1,
		Duration:   time.Duration(len(mono)) * time.Second / time.Duration(rate),
		Metadata: &FileMetadata{
			Format:     format.Name(),
			SampleRate: raw.sampleRate,
			Channels:   raw.channels,
			BitDepth:   raw.bitDepth,
			Samples:    len(raw.samples) / raw.channels,
		},
	}, nil
}
