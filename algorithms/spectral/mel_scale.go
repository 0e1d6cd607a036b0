package spectral

import (
	"math"
)

// Slaney mel scale constants: linear below 1 kHz, logarithmic above.
const (
	slaneyFSP       = 200.0 / 3.0
	slaneyMinLogHz  = 1000.0
	slaneyMinLogMel = slaneyMinLogHz / slaneyFSP
)

var slaneyLogStep = math.Log(6.4) / 27.0

// MelScale provides mel frequency conversion and filter bank construction.
// The zero value uses the Slaney scale with area-normalised triangles.
type MelScale struct {
	htk bool
}

// NewMelScale creates a Slaney-style mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// NewHTKMelScale creates a converter using the HTK formula
// 2595*log10(1 + f/700).
func NewHTKMelScale() *MelScale {
	return &MelScale{htk: true}
}

// HzToMel converts frequency in Hz to mel scale
func (ms *MelScale) HzToMel(hz float64) float64 {
	if ms.htk {
		return 2595.0 * math.Log10(1.0+hz/700.0)
	}
	if hz < slaneyMinLogHz {
		return hz / slaneyFSP
	}
	return slaneyMinLogMel + math.Log(hz/slaneyMinLogHz)/slaneyLogStep
}

// MelToHz converts mel scale to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	if ms.htk {
		return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
	}
	if mel < slaneyMinLogMel {
		return mel * slaneyFSP
	}
	return slaneyMinLogHz * math.Exp(slaneyLogStep*(mel-slaneyMinLogMel))
}

// MelFrequencies returns n frequencies evenly spaced on the mel scale
// between lowFreq and highFreq inclusive.
func (ms *MelScale) MelFrequencies(n int, lowFreq, highFreq float64) []float64 {
	lowMel := ms.HzToMel(lowFreq)
	highMel := ms.HzToMel(highFreq)

	freqs := make([]float64, n)
	if n == 1 {
		freqs[0] = ms.MelToHz(lowMel)
		return freqs
	}
	step := (highMel - lowMel) / float64(n-1)
	for i := range freqs {
		freqs[i] = ms.MelToHz(lowMel + float64(i)*step)
	}
	return freqs
}

// CreateMelFilterBank creates a numFilters x (fftSize/2+1) bank of
// triangular filters. Triangles are evaluated on the continuous FFT bin
// frequencies and scaled by 2/(upper-lower) so each has unit area.
func (ms *MelScale) CreateMelFilterBank(numFilters int, fftSize int, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 {
		return nil
	}

	numBins := fftSize/2 + 1
	fftFreqs := make([]float64, numBins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}

	melFreqs := ms.MelFrequencies(numFilters+2, lowFreq, highFreq)

	filterBank := make([][]float64, numFilters)
	for m := range filterBank {
		filterBank[m] = make([]float64, numBins)

		lower, center, upper := melFreqs[m], melFreqs[m+1], melFreqs[m+2]
		enorm := 2.0 / (upper - lower)

		for k, f := range fftFreqs {
			rising := (f - lower) / (center - lower)
			falling := (upper - f) / (upper - center)
			w := math.Max(0, math.Min(rising, falling))
			filterBank[m][k] = w * enorm
		}
	}

	return filterBank
}

// ApplyFilterBank applies mel filter bank to power spectrum
func (ms *MelScale) ApplyFilterBank(powerSpectrum []float64, filterBank [][]float64) []float64 {
	if len(filterBank) == 0 || len(powerSpectrum) == 0 {
		return []float64{}
	}

	melSpectrum := make([]float64, len(filterBank))

	for i, filter := range filterBank {
		sum := 0.0
		for j := 0; j < len(filter) && j < len(powerSpectrum); j++ {
			sum += powerSpectrum[j] * filter[j]
		}
		melSpectrum[i] = sum
	}

	return melSpectrum
}

// ApplyFilterBankFrames filters a Time x Frequency power spectrogram and
// returns the result as Filter x Time.
func (ms *MelScale) ApplyFilterBankFrames(power [][]float64, filterBank [][]float64) [][]float64 {
	out := make([][]float64, len(filterBank))
	for m := range out {
		out[m] = make([]float64, len(power))
	}

	for t, frame := range power {
		melFrame := ms.ApplyFilterBank(frame, filterBank)
		for m, v := range melFrame {
			out[m][t] = v
		}
	}
	return out
}
