package spectral

import (
	"fmt"
	"math"
)

// MFCC computes Mel-Frequency Cepstral Coefficients from a log-mel
// spectrogram with an orthonormal DCT-II.
type MFCC struct {
	numCoefficients int
	numMelFilters   int

	dctMatrix [][]float64
}

// NewMFCC keeps the first numCoefficients DCT coefficients of each
// numMelFilters-row log-mel frame.
func NewMFCC(numMelFilters, numCoefficients int) (*MFCC, error) {
	if numMelFilters <= 0 {
		return nil, fmt.Errorf("invalid mel filter count: %d", numMelFilters)
	}
	if numCoefficients <= 0 || numCoefficients > numMelFilters {
		return nil, fmt.Errorf("coefficient count %d must be in [1, %d]", numCoefficients, numMelFilters)
	}

	mfcc := &MFCC{
		numCoefficients: numCoefficients,
		numMelFilters:   numMelFilters,
	}
	mfcc.createDCTMatrix()

	return mfcc, nil
}

// ComputeFrames transforms a Filter x Time log-mel spectrogram into a
// Coefficient x Time matrix.
func (mfcc *MFCC) ComputeFrames(logMel [][]float64) ([][]float64, error) {
	if len(logMel) != mfcc.numMelFilters {
		return nil, fmt.Errorf("expected %d mel rows, got %d", mfcc.numMelFilters, len(logMel))
	}

	numFrames := len(logMel[0])
	out := make([][]float64, mfcc.numCoefficients)
	for k := range out {
		out[k] = make([]float64, numFrames)
	}

	column := make([]float64, mfcc.numMelFilters)
	for t := range numFrames {
		for m := range column {
			column[m] = logMel[m][t]
		}

		for k, c := range mfcc.applyDCT(column) {
			out[k][t] = c
		}
	}

	return out, nil
}

// createDCTMatrix creates the Discrete Cosine Transform matrix
func (mfcc *MFCC) createDCTMatrix() {
	mfcc.dctMatrix = make([][]float64, mfcc.numCoefficients)

	for k := 0; k < mfcc.numCoefficients; k++ {
		mfcc.dctMatrix[k] = make([]float64, mfcc.numMelFilters)

		for n := 0; n < mfcc.numMelFilters; n++ {
			// DCT-II formula
			mfcc.dctMatrix[k][n] = math.Cos(math.Pi * float64(k) * (float64(n) + 0.5) / float64(mfcc.numMelFilters))

			// Orthonormal scaling
			if k == 0 {
				mfcc.dctMatrix[k][n] *= math.Sqrt(1.0 / float64(mfcc.numMelFilters))
			} else {
				mfcc.dctMatrix[k][n] *= math.Sqrt(2.0 / float64(mfcc.numMelFilters))
			}
		}
	}
}

// applyDCT applies the Discrete Cosine Transform
func (mfcc *MFCC) applyDCT(logMelSpectrum []float64) []float64 {
	mfccCoeffs := make([]float64, mfcc.numCoefficients)

	for k := 0; k < mfcc.numCoefficients; k++ {
		sum := 0.0
		for n := 0; n < len(logMelSpectrum) && n < len(mfcc.dctMatrix[k]); n++ {
			sum += logMelSpectrum[n] * mfcc.dctMatrix[k][n]
		}
		mfccCoeffs[k] = sum
	}

	return mfccCoeffs
}
