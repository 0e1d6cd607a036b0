package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default floors and dynamic range for dB conversion.
const (
	DefaultPowerAmin     = 1e-10
	DefaultAmplitudeAmin = 1e-5
	DefaultTopDB         = 80.0
)

// MaxValue returns the largest element of m, or 0 for an empty matrix.
func MaxValue(m [][]float64) float64 {
	maxVal := math.Inf(-1)
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		maxVal = math.Max(maxVal, floats.Max(row))
	}
	if math.IsInf(maxVal, -1) {
		return 0
	}
	return maxVal
}

// PowerToDB converts a power spectrogram to decibels relative to ref:
// 10*log10(max(amin, S)) - 10*log10(max(amin, ref)). When topDB > 0 the
// result is floored at (peak - topDB). The input is not modified.
func PowerToDB(power [][]float64, ref, amin, topDB float64) [][]float64 {
	refDB := 10 * math.Log10(math.Max(amin, math.Abs(ref)))

	out := make([][]float64, len(power))
	for i, row := range power {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = 10*math.Log10(math.Max(amin, v)) - refDB
		}
	}

	if topDB > 0 {
		floor := MaxValue(out) - topDB
		for _, row := range out {
			for j, v := range row {
				row[j] = math.Max(v, floor)
			}
		}
	}
	return out
}

// AmplitudeToDB converts a magnitude spectrogram to decibels. It is
// PowerToDB applied to the squared magnitudes with ref and amin squared.
func AmplitudeToDB(magnitude [][]float64, ref, amin, topDB float64) [][]float64 {
	power := make([][]float64, len(magnitude))
	for i, row := range magnitude {
		power[i] = make([]float64, len(row))
		for j, v := range row {
			power[i][j] = v * v
		}
	}
	return PowerToDB(power, ref*ref, amin*amin, topDB)
}
