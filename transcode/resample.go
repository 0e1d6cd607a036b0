package transcode

import (
	"fmt"
	"math"
)

// Resampler converts mono PCM between sample rates with a Hann-windowed sinc
// interpolator. When downsampling the kernel is stretched so its cutoff sits
// at the destination Nyquist frequency.
type Resampler struct {
	halfWidth int
}

// NewResampler returns a resampler whose kernel spans halfWidth zero
// crossings on each side.
func NewResampler(halfWidth int) *Resampler {
	return &Resampler{halfWidth: max(halfWidth, 1)}
}

// halfWidthForQuality maps a quality name to a kernel half-width.
func halfWidthForQuality(quality string) (int, error) {
	switch quality {
	case "fast":
		return 8, nil
	case "", "medium":
		return 16, nil
	case "high":
		return 32, nil
	default:
		return 0, fmt.Errorf("unknown resample quality %q", quality)
	}
}

// Resample returns ceil(len(signal)*dstRate/srcRate) samples. Equal rates
// return a copy.
func (r *Resampler) Resample(signal []float64, srcRate, dstRate int) ([]float64, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}

	ratio := float64(dstRate) / float64(srcRate)
	cutoff := math.Min(1, ratio)
	support := float64(r.halfWidth) / cutoff

	outLen := (len(signal)*dstRate + srcRate - 1) / srcRate
	out := make([]float64, outLen)

	for n := range out {
		pos := float64(n) / ratio
		lo := max(int(math.Ceil(pos-support)), 0)
		hi := min(int(math.Floor(pos+support)), len(signal)-1)

		sum := 0.0
		for k := lo; k <= hi; k++ {
			d := pos - float64(k)
			sum += signal[k] * cutoff * sinc(cutoff*d) * hannTaper(d, support)
		}
		out[n] = sum
	}

	return out, nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func hannTaper(d, support float64) float64 {
	if math.Abs(d) >= support {
		return 0
	}
	return 0.5 * (1 + math.Cos(math.Pi*d/support))
}

// MixToMono averages interleaved channels into a single channel.
func MixToMono(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
