package spectral

import (
	"fmt"
	"math"
)

// Glasberg & Moore ERB parameters.
const (
	erbEarQ  = 9.26449
	erbMinBW = 24.7
)

// ERBSpace returns n center frequencies uniformly spaced on the ERB-rate
// scale between lowFreq and highFreq, in ascending order.
func ERBSpace(lowFreq, highFreq float64, n int) []float64 {
	cfs := make([]float64, n)
	q := erbEarQ * erbMinBW
	step := (math.Log(lowFreq+q) - math.Log(highFreq+q)) / float64(n)
	for i := 1; i <= n; i++ {
		// i = n lands on lowFreq; fill from the top so the slice ascends
		cfs[n-i] = -q + math.Exp(float64(i)*step)*(highFreq+q)
	}
	return cfs
}

// GammatoneFilterBank maps STFT power bins onto a bank of fourth-order
// gammatone magnitude responses.
type GammatoneFilterBank struct {
	sampleRate  int
	fftSize     int
	centerFreqs []float64
	weights     [][]float64
}

// NewGammatoneFilterBank builds numFilters filters between lowFreq and
// highFreq (highFreq <= 0 means Nyquist). Each filter is normalised to unit
// L1 norm over the FFT bins.
func NewGammatoneFilterBank(sampleRate, fftSize, numFilters int, lowFreq, highFreq float64) (*GammatoneFilterBank, error) {
	nyquist := float64(sampleRate) / 2
	if highFreq <= 0 || highFreq > nyquist {
		highFreq = nyquist
	}
	if numFilters <= 0 || fftSize <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid gammatone bank: sr=%d fft=%d filters=%d", sampleRate, fftSize, numFilters)
	}
	if lowFreq <= 0 || lowFreq >= highFreq {
		return nil, fmt.Errorf("invalid gammatone range: %.1f-%.1f Hz", lowFreq, highFreq)
	}

	numBins := fftSize/2 + 1
	centers := ERBSpace(lowFreq, highFreq, numFilters)
	weights := make([][]float64, numFilters)

	for m, fc := range centers {
		bandwidth := 1.019 * (fc/erbEarQ + erbMinBW)
		row := make([]float64, numBins)
		sum := 0.0
		for k := range row {
			f := float64(k) * float64(sampleRate) / float64(fftSize)
			d := (f - fc) / bandwidth
			row[k] = math.Pow(1+d*d, -2)
			sum += row[k]
		}
		if sum > 0 {
			for k := range row {
				row[k] /= sum
			}
		}
		weights[m] = row
	}

	return &GammatoneFilterBank{
		sampleRate:  sampleRate,
		fftSize:     fftSize,
		centerFreqs: centers,
		weights:     weights,
	}, nil
}

// Apply projects a Time x Frequency power spectrogram onto the bank and
// returns Filter x Time.
func (g *GammatoneFilterBank) Apply(power [][]float64) ([][]float64, error) {
	numBins := g.fftSize/2 + 1
	out := make([][]float64, len(g.weights))
	for m := range out {
		out[m] = make([]float64, len(power))
	}

	for t, frame := range power {
		if len(frame) != numBins {
			return nil, fmt.Errorf("frame %d has %d bins, want %d", t, len(frame), numBins)
		}
		for m, w := range g.weights {
			sum := 0.0
			for k, p := range frame {
				sum += w[k] * p
			}
			out[m][t] = sum
		}
	}
	return out, nil
}

// CenterFrequencies returns a copy of the filter center frequencies
func (g *GammatoneFilterBank) CenterFrequencies() []float64 {
	cfs := make([]float64, len(g.centerFreqs))
	copy(cfs, g.centerFreqs)
	return cfs
}
