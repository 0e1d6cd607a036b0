package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

func TestSTFT_CenteredFrameCount(t *testing.T) {
	res, err := NewSTFT().Compute(make([]float64, 1000), 8000, STFTParams{
		WindowSize: 256,
		HopSize:    64,
		Center:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1+1000/64, res.TimeFrames)
	assert.Equal(t, 129, res.FreqBins)
	assert.Len(t, res.Magnitude, res.TimeFrames)
	assert.Len(t, res.Magnitude[0], res.FreqBins)
}

func TestSTFT_SinePeak(t *testing.T) {
	res, err := NewSTFT().Compute(sine(1000, 8000, 4000), 8000, STFTParams{
		WindowSize: 256,
		HopSize:    128,
		Center:     true,
		PadMode:    PadReflect,
	})
	require.NoError(t, err)

	mid := res.Magnitude[res.TimeFrames/2]
	assert.Equal(t, 32, argmax(mid))
}

func TestSTFT_RejectsBadInput(t *testing.T) {
	s := NewSTFT()
	_, err := s.Compute(nil, 8000, STFTParams{WindowSize: 256, HopSize: 64})
	assert.Error(t, err)
	_, err = s.Compute(make([]float64, 10), 8000, STFTParams{WindowSize: 256, HopSize: 64})
	assert.Error(t, err)
	_, err = s.Compute(make([]float64, 300), 8000, STFTParams{WindowSize: 256})
	assert.Error(t, err)
}

func TestPadSignal_Reflect(t *testing.T) {
	got := padSignal([]float64{1, 2, 3, 4}, 2, PadReflect)
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 4, 3, 2}, got)

	got = padSignal([]float64{1, 2, 3, 4}, 2, PadConstant)
	assert.Equal(t, []float64{0, 0, 1, 2, 3, 4, 0, 0}, got)
}

func TestPadSignal_ReflectLongerThanSignal(t *testing.T) {
	got := padSignal([]float64{1, 2, 3}, 4, PadReflect)
	assert.Equal(t, []float64{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3}, got)
}

func TestPowerToDB_TopDBClip(t *testing.T) {
	in := [][]float64{{1, 100}, {1e-20, 10}}
	got := PowerToDB(in, 100, DefaultPowerAmin, DefaultTopDB)

	assert.InDelta(t, -20, got[0][0], 1e-9)
	assert.InDelta(t, 0, got[0][1], 1e-9)
	assert.InDelta(t, -80, got[1][0], 1e-9)
	assert.InDelta(t, -10, got[1][1], 1e-9)
	assert.Equal(t, 1e-20, in[1][0], "input must not be modified")
}

func TestAmplitudeToDB(t *testing.T) {
	got := AmplitudeToDB([][]float64{{10, 1}}, 10, DefaultAmplitudeAmin, 0)
	assert.InDelta(t, 0, got[0][0], 1e-9)
	assert.InDelta(t, -20, got[0][1], 1e-9)
}

func TestMaxValue(t *testing.T) {
	assert.Equal(t, 0.0, MaxValue(nil))
	assert.Equal(t, 7.0, MaxValue([][]float64{{1, 7}, {}, {-3}}))
}

func TestMelScale_Conversions(t *testing.T) {
	ms := NewMelScale()
	assert.InDelta(t, 15.0, ms.HzToMel(1000), 1e-9)
	for _, hz := range []float64{18, 500, 4186} {
		assert.InDelta(t, hz, ms.MelToHz(ms.HzToMel(hz)), 1e-6)
	}

	htk := NewHTKMelScale()
	assert.InDelta(t, 1000, htk.HzToMel(1000), 0.1)
}

func TestMelFilterBank_Shape(t *testing.T) {
	ms := NewMelScale()
	bank := ms.CreateMelFilterBank(40, 512, 16000, 0, 8000)
	require.Len(t, bank, 40)
	for m, row := range bank {
		require.Len(t, row, 257)
		sum := 0.0
		for _, w := range row {
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.Greater(t, sum, 0.0, "filter %d is empty", m)
	}

	power := [][]float64{make([]float64, 257), make([]float64, 257)}
	out := ms.ApplyFilterBankFrames(power, bank)
	assert.Len(t, out, 40)
	assert.Len(t, out[0], 2)
}

func TestMFCC_ConstantColumn(t *testing.T) {
	m, err := NewMFCC(4, 3)
	require.NoError(t, err)

	logMel := [][]float64{{2, 2}, {2, 2}, {2, 2}, {2, 2}}
	out, err := m.ComputeFrames(logMel)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for t2 := range 2 {
		assert.InDelta(t, 4.0, out[0][t2], 1e-9)
		assert.InDelta(t, 0.0, out[1][t2], 1e-9)
		assert.InDelta(t, 0.0, out[2][t2], 1e-9)
	}
}

func TestMFCC_Validation(t *testing.T) {
	_, err := NewMFCC(0, 1)
	assert.Error(t, err)
	_, err = NewMFCC(10, 11)
	assert.Error(t, err)

	m, err := NewMFCC(4, 2)
	require.NoError(t, err)
	_, err = m.ComputeFrames([][]float64{{1}})
	assert.Error(t, err)
}

func TestERBSpace(t *testing.T) {
	cfs := ERBSpace(100, 4000, 10)
	require.Len(t, cfs, 10)
	assert.InDelta(t, 100, cfs[0], 1e-6)
	assert.Less(t, cfs[9], 4000.0)
	for i := 1; i < len(cfs); i++ {
		assert.Greater(t, cfs[i], cfs[i-1])
	}
}

func TestGammatoneFilterBank(t *testing.T) {
	g, err := NewGammatoneFilterBank(16000, 1024, 32, 18, 0)
	require.NoError(t, err)

	for _, row := range g.weights {
		require.Len(t, row, 513)
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}

	power := make([][]float64, 3)
	for i := range power {
		power[i] = make([]float64, 513)
		power[i][64] = 1 // 1 kHz
	}
	out, err := g.Apply(power)
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Len(t, out[0], 3)

	column := make([]float64, 32)
	for m := range out {
		column[m] = out[m][0]
	}
	peak := g.CenterFrequencies()[argmax(column)]
	assert.InDelta(t, 1000, peak, 150)

	_, err = g.Apply([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestGammatoneFilterBank_Validation(t *testing.T) {
	_, err := NewGammatoneFilterBank(16000, 1024, 0, 18, 0)
	assert.Error(t, err)
	_, err = NewGammatoneFilterBank(16000, 1024, 10, 9000, 0)
	assert.Error(t, err)
}

func TestCQT_SinePeak(t *testing.T) {
	cqt, err := NewCQT(8000, 128, 110, 24, 12)
	require.NoError(t, err)

	out, err := cqt.Compute(sine(220, 8000, 8000))
	require.NoError(t, err)
	require.Len(t, out, 24)
	assert.Len(t, out[0], 1+8000/128)

	mid := len(out[0]) / 2
	column := make([]float64, 24)
	for k := range out {
		column[k] = out[k][mid]
	}
	assert.Equal(t, 12, argmax(column))
	assert.InDelta(t, 220, cqt.GetCQTFrequencies()[12], 1e-9)
}

func TestCQT_Validation(t *testing.T) {
	_, err := NewCQT(8000, 128, 1000, 48, 12)
	assert.Error(t, err, "top bin above Nyquist")
	_, err = NewCQT(8000, 0, 110, 24, 12)
	assert.Error(t, err)

	cqt, err := NewCQT(8000, 128, 110, 24, 12)
	require.NoError(t, err)
	assert.InDelta(t, 1/(math.Pow(2, 1.0/12)-1), cqt.GetQFactor(), 1e-12)
	_, err = cqt.Compute(nil)
	assert.Error(t, err)
}

func TestScattering1D_Shape(t *testing.T) {
	s, err := NewScattering1D(2, 1, 64)
	require.NoError(t, err)

	rows, cols := s.Shape()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 16, cols)

	out, err := s.Compute(sine(5, 64, 50))
	require.NoError(t, err)
	require.Len(t, out, rows)
	for _, row := range out {
		assert.Len(t, row, cols)
	}
}

func TestScattering1D_ConstantLowpass(t *testing.T) {
	s, err := NewScattering1D(2, 1, 64)
	require.NoError(t, err)

	signal := make([]float64, 64)
	for i := range signal {
		signal[i] = 1
	}
	out, err := s.Compute(signal)
	require.NoError(t, err)
	for _, v := range out[0] {
		assert.InDelta(t, 1.0, v, 1e-9)
	}
}

func TestScattering1D_Errors(t *testing.T) {
	_, err := NewScattering1D(2, 1, 48)
	assert.Error(t, err)
	_, err = NewScattering1D(0, 1, 64)
	assert.Error(t, err)

	s, err := NewScattering1D(2, 1, 64)
	require.NoError(t, err)
	_, err = s.Compute(make([]float64, 65))
	assert.ErrorIs(t, err, ErrSignalTooLong)
}
