package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-extract/algorithms/windowing"
)

// PadMode selects how a centered STFT extends the signal past its edges.
type PadMode int

const (
	// PadConstant pads with zeros.
	PadConstant PadMode = iota
	// PadReflect mirrors the signal about its first and last sample,
	// excluding the edge sample itself.
	PadReflect
)

func (p PadMode) String() string {
	switch p {
	case PadConstant:
		return "constant"
	case PadReflect:
		return "reflect"
	default:
		return "unknown"
	}
}

// STFTParams configures a short-time Fourier transform
type STFTParams struct {
	WindowSize int     `json:"window_size"` // FFT size; the Hann window spans the whole frame
	HopSize    int     `json:"hop_size"`
	Center     bool    `json:"center"` // pad WindowSize/2 on both sides so frame t is centered at t*HopSize
	PadMode    PadMode `json:"pad_mode"`
}

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft *FFT
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// Compute runs a Hann-windowed STFT over signal. Frames are processed in
// order on the calling goroutine; callers parallelise across signals.
func (s *STFT) Compute(signal []float64, sampleRate int, params STFTParams) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if params.WindowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	if params.HopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	padded := signal
	if params.Center {
		padded = padSignal(signal, params.WindowSize/2, params.PadMode)
	}

	if len(padded) < params.WindowSize {
		return nil, fmt.Errorf("signal too short (%d samples) for window size %d", len(signal), params.WindowSize)
	}

	numFrames := (len(padded)-params.WindowSize)/params.HopSize + 1
	freqBins := params.WindowSize/2 + 1

	window := windowing.NewPeriodicHann(params.WindowSize)
	frame := make([]float64, params.WindowSize)
	magnitude := make([][]float64, numFrames)

	for t := range numFrames {
		start := t * params.HopSize
		copy(frame, padded[start:start+params.WindowSize])
		if err := window.ApplyInPlace(frame); err != nil {
			return nil, err
		}

		spectrum := s.fft.Compute(frame)
		row := make([]float64, freqBins)
		for k := range freqBins {
			row[k] = cmplx.Abs(spectrum[k])
		}
		magnitude[t] = row
	}

	return &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     params.WindowSize,
		HopSize:        params.HopSize,
		FreqResolution: float64(sampleRate) / float64(params.WindowSize),
		TimeResolution: float64(params.HopSize) / float64(sampleRate),
	}, nil
}

// Power returns |X|^2 in the same Time x Frequency layout.
func (r *STFTResult) Power() [][]float64 {
	power := make([][]float64, r.TimeFrames)
	for t, row := range r.Magnitude {
		power[t] = make([]float64, len(row))
		for f, mag := range row {
			power[t][f] = mag * mag
		}
	}
	return power
}

// padSignal extends signal by pad samples on both sides.
func padSignal(signal []float64, pad int, mode PadMode) []float64 {
	out := make([]float64, len(signal)+2*pad)
	copy(out[pad:], signal)
	if mode != PadReflect || pad == 0 {
		return out
	}

	n := len(signal)
	for i := range pad {
		out[pad-1-i] = signal[reflectIndex(i+1, n)]
		out[pad+n+i] = signal[reflectIndex(n-2-i, n)]
	}
	return out
}

// reflectIndex folds any integer index into [0, n) by repeated mirroring
// about the end samples, matching numpy's "reflect" for short signals.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// Transpose converts a Time x Frequency matrix into Frequency x Time.
func Transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return [][]float64{}
	}
	out := make([][]float64, len(m[0]))
	for f := range out {
		out[f] = make([]float64, len(m))
		for t := range m {
			out[f][t] = m[t][f]
		}
	}
	return out
}
