package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodicHann(t *testing.T) {
	h := NewPeriodicHann(4)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5}, h.GetCoefficients(), 1e-12)
}

func TestSymmetricHann(t *testing.T) {
	h := NewHann(5, true)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5, 0}, h.GetCoefficients(), 1e-12)
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewPeriodicHann(4)
	sig := []float64{2, 2, 2, 2}
	require.NoError(t, h.ApplyInPlace(sig))
	assert.InDeltaSlice(t, []float64{0, 1, 2, 1}, sig, 1e-12)

	assert.Error(t, h.ApplyInPlace([]float64{1, 2}))
}
