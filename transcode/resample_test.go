package transcode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample_SameRateCopies(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := NewResampler(16).Resample(in, 8000, 8000)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out[0] = 9
	assert.Equal(t, 1.0, in[0])
}

func TestResample_Length(t *testing.T) {
	r := NewResampler(8)
	out, err := r.Resample(make([]float64, 22050), 22050, 32193)
	require.NoError(t, err)
	assert.Len(t, out, 32193)

	out, err = r.Resample(make([]float64, 1001), 44100, 22050)
	require.NoError(t, err)
	assert.Len(t, out, 501)
}

func TestResample_PreservesLowTone(t *testing.T) {
	src := make([]float64, 16000)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 200 * float64(i) / 16000)
	}

	out, err := NewResampler(16).Resample(src, 16000, 8000)
	require.NoError(t, err)

	// skip the edges where the kernel is truncated
	for i := 200; i < len(out)-200; i++ {
		want := math.Sin(2 * math.Pi * 200 * float64(i) / 8000)
		assert.InDelta(t, want, out[i], 0.02)
	}
}

func TestResample_AttenuatesAboveNewNyquist(t *testing.T) {
	src := make([]float64, 16000)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 6000 * float64(i) / 16000)
	}

	out, err := NewResampler(16).Resample(src, 16000, 8000)
	require.NoError(t, err)

	peak := 0.0
	for _, v := range out[200 : len(out)-200] {
		peak = math.Max(peak, math.Abs(v))
	}
	assert.Less(t, peak, 0.05)
}

func TestResample_InvalidRates(t *testing.T) {
	_, err := NewResampler(8).Resample([]float64{1}, 0, 8000)
	assert.Error(t, err)
}

func TestMixToMono(t *testing.T) {
	assert.Equal(t, []float64{1.5, 3.5}, MixToMono([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1, 2}, MixToMono([]float64{1, 2}, 1))
	assert.Equal(t, []float64{2}, MixToMono([]float64{1, 2, 3}, 3))
}
