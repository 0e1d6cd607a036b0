package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-extract/algorithms/windowing"
)

// CQT computes a Constant-Q Transform magnitude spectrogram.
//
// Bin k is centered at f_k = minFreq * 2^(k/binsPerOctave). Its kernel is a
// Hann-windowed complex exponential of length ceil(Q*sampleRate/f_k) with
// Q = 1/(2^(1/binsPerOctave) - 1), normalised to unit L1 norm, so every bin
// spans the same number of cycles. Kernels are evaluated directly in the
// time domain at frame centers t*hopSize (zero padding past the edges).
//
// A CQT is immutable after construction and may be shared between
// goroutines.
type CQT struct {
	sampleRate    int
	hopSize       int
	minFreq       float64
	numBins       int
	binsPerOctave int
	qFactor       float64

	freqBins []float64
	kernels  [][]complex128
}

// NewCQT builds the kernels for the given geometry. The highest bin must lie
// below Nyquist.
func NewCQT(sampleRate, hopSize int, minFreq float64, numBins, binsPerOctave int) (*CQT, error) {
	if sampleRate <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("invalid CQT geometry: sr=%d hop=%d", sampleRate, hopSize)
	}
	if numBins <= 0 || binsPerOctave <= 0 || minFreq <= 0 {
		return nil, fmt.Errorf("invalid CQT bins: fmin=%.2f bins=%d per_octave=%d", minFreq, numBins, binsPerOctave)
	}

	maxFreq := minFreq * math.Pow(2.0, float64(numBins-1)/float64(binsPerOctave))
	if maxFreq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("highest CQT bin %.1f Hz exceeds Nyquist %.1f Hz", maxFreq, float64(sampleRate)/2)
	}

	cqt := &CQT{
		sampleRate:    sampleRate,
		hopSize:       hopSize,
		minFreq:       minFreq,
		numBins:       numBins,
		binsPerOctave: binsPerOctave,
		qFactor:       1.0 / (math.Pow(2.0, 1.0/float64(binsPerOctave)) - 1.0),
	}
	cqt.computeKernels()

	return cqt, nil
}

func (cqt *CQT) computeKernels() {
	cqt.freqBins = make([]float64, cqt.numBins)
	cqt.kernels = make([][]complex128, cqt.numBins)

	for k := range cqt.numBins {
		freq := cqt.minFreq * math.Pow(2.0, float64(k)/float64(cqt.binsPerOctave))
		cqt.freqBins[k] = freq

		length := cqt.kernelLength(freq)
		window := windowing.NewPeriodicHann(length).GetCoefficients()

		kernel := make([]complex128, length)
		norm := 0.0
		center := length / 2
		for n := range length {
			phase := 2.0 * math.Pi * freq * float64(n-center) / float64(cqt.sampleRate)
			kernel[n] = complex(window[n], 0) * cmplx.Exp(complex(0, phase))
			norm += cmplx.Abs(kernel[n])
		}
		if norm > 0 {
			for n := range kernel {
				kernel[n] /= complex(norm, 0)
			}
		}

		cqt.kernels[k] = kernel
	}
}

// kernelLength calculates the length of CQT kernel for given frequency
func (cqt *CQT) kernelLength(frequency float64) int {
	length := int(math.Ceil(cqt.qFactor * float64(cqt.sampleRate) / frequency))
	return max(length, 1)
}

// Compute returns a Bin x Frame magnitude matrix with 1 + len(signal)/hop
// frames.
func (cqt *CQT) Compute(signal []float64) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	numFrames := 1 + len(signal)/cqt.hopSize
	out := make([][]float64, cqt.numBins)

	for k, kernel := range cqt.kernels {
		row := make([]float64, numFrames)
		offset := len(kernel) / 2

		for t := range numFrames {
			start := t*cqt.hopSize - offset
			lo := max(0, -start)
			hi := min(len(kernel), len(signal)-start)

			var acc complex128
			for n := lo; n < hi; n++ {
				acc += complex(signal[start+n], 0) * cmplx.Conj(kernel[n])
			}
			row[t] = cmplx.Abs(acc)
		}
		out[k] = row
	}

	return out, nil
}

// GetCQTFrequencies returns the CQT frequency bins
func (cqt *CQT) GetCQTFrequencies() []float64 {
	freqs := make([]float64, len(cqt.freqBins))
	copy(freqs, cqt.freqBins)
	return freqs
}

// GetQFactor returns the quality factor
func (cqt *CQT) GetQFactor() float64 {
	return cqt.qFactor
}
