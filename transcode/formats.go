package transcode

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// rawAudio is interleaved PCM in [-1, 1] at the file's native rate.
type rawAudio struct {
	samples    []float64
	sampleRate int
	channels   int
	bitDepth   int
}

// FormatDecoder decodes a whole file of one container format.
type FormatDecoder interface {
	Name() string
	Decode(r io.ReadSeeker) (*rawAudio, error)
}

type wavFormat struct{}

func (wavFormat) Name() string { return "wav" }

func (wavFormat) Decode(r io.ReadSeeker) (*rawAudio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading wav samples: %w", err)
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	// 8-bit WAV is unsigned
	offset := 0
	if dec.BitDepth == 8 {
		offset = 128
	}
	return fromIntBuffer(buf, int(dec.BitDepth), offset)
}

type aiffFormat struct{}

func (aiffFormat) Name() string { return "aiff" }

func (aiffFormat) Decode(r io.ReadSeeker) (*rawAudio, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidAIFF
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading aiff samples: %w", err)
	}
	return fromIntBuffer(buf, int(dec.BitDepth), 0)
}

func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth, offset int) (*rawAudio, error) {
	if buf == nil || buf.Format == nil {
		return nil, ErrEmptyAudio
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedEncoding, bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v-offset) / scale
	}

	return &rawAudio{
		samples:    samples,
		sampleRate: buf.Format.SampleRate,
		channels:   buf.Format.NumChannels,
		bitDepth:   bitDepth,
	}, nil
}

type mp3Format struct{}

func (mp3Format) Name() string { return "mp3" }

// Decode reads signed 16-bit little-endian stereo frames.
func (mp3Format) Decode(r io.ReadSeeker) (*rawAudio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading mp3 frames: %w", err)
	}

	samples := make([]float64, len(data)/2)
	for i := range samples {
		v := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float64(v) / 32768.0
	}

	return &rawAudio{
		samples:    samples,
		sampleRate: dec.SampleRate(),
		channels:   2,
		bitDepth:   16,
	}, nil
}

type vorbisFormat struct{}

func (vorbisFormat) Name() string { return "vorbis" }

func (vorbisFormat) Decode(r io.ReadSeeker) (*rawAudio, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ogg vorbis stream: %w", err)
	}

	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v)
	}

	return &rawAudio{
		samples:    samples,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
	}, nil
}
