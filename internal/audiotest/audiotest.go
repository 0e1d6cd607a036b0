// Package audiotest writes small audio fixtures for tests.
package audiotest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sine returns n samples of a sine wave with the given amplitude.
func Sine(freq float64, sampleRate, n int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// Interleave merges equal-length channels into frame order.
func Interleave(channels ...[]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	n := len(channels[0])
	out := make([]float64, 0, n*len(channels))
	for i := range n {
		for _, ch := range channels {
			out = append(out, ch[i])
		}
	}
	return out
}

func toIntBuffer(interleaved []float64, sampleRate, channels, bitDepth int) *goaudio.IntBuffer {
	scale := float64(int64(1)<<(bitDepth-1)) - 1
	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, v)) * scale))
	}
	return &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
}

func create(tb testing.TB, path string) *os.File {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	return f
}

// WriteWAV encodes interleaved samples as PCM WAV, creating parent
// directories as needed.
func WriteWAV(tb testing.TB, path string, interleaved []float64, sampleRate, channels, bitDepth int) {
	tb.Helper()
	f := create(tb, path)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	if err := enc.Write(toIntBuffer(interleaved, sampleRate, channels, bitDepth)); err != nil {
		tb.Fatalf("write wav %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("close wav %s: %v", path, err)
	}
}

// WriteAIFF encodes interleaved samples as PCM AIFF.
func WriteAIFF(tb testing.TB, path string, interleaved []float64, sampleRate, channels, bitDepth int) {
	tb.Helper()
	f := create(tb, path)
	defer f.Close()

	enc := aiff.NewEncoder(f, sampleRate, bitDepth, channels)
	if err := enc.Write(toIntBuffer(interleaved, sampleRate, channels, bitDepth)); err != nil {
		tb.Fatalf("write aiff %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("close aiff %s: %v", path, err)
	}
}

// WriteSineWAV writes a mono 16-bit sine tone lasting seconds.
func WriteSineWAV(tb testing.TB, path string, freq float64, sampleRate int, seconds float64) {
	tb.Helper()
	n := int(seconds * float64(sampleRate))
	WriteWAV(tb, path, Sine(freq, sampleRate, n, 0.5), sampleRate, 1, 16)
}

// Touch writes a file with the given contents, creating parent directories.
func Touch(tb testing.TB, path string, contents []byte) {
	tb.Helper()
	f := create(tb, path)
	defer f.Close()
	if _, err := f.Write(contents); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}
