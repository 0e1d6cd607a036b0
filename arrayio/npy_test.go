package arrayio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-extract/features"
)

func TestSaveLoad_Matrix(t *testing.T) {
	arr, err := features.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "x.npy")
	require.NoError(t, Save(path, arr))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got.Shape)
	assert.Equal(t, arr.Data, got.Data)
}

func TestSaveLoad_Vector(t *testing.T) {
	arr := features.NewVector([]float64{-1.5, 0, 2.25})

	path := filepath.Join(t.TempDir(), "v.npy")
	require.NoError(t, Save(path, arr))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got.Shape)
	assert.Equal(t, arr.Data, got.Data)
}

func TestSave_NpyMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, features.NewVector([]float64{1})))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x93NUMPY")))
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.npy")
	require.NoError(t, Save(path, features.NewVector([]float64{1, 2})))
	require.NoError(t, Save(path, features.NewVector([]float64{3, 4})))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.npy", entries[0].Name())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, got.Data)
}

func TestSave_Deterministic(t *testing.T) {
	arr, err := features.FromRows([][]float64{{0.1, 0.2}, {0.3, 0.4}})
	require.NoError(t, err)

	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.npy"), filepath.Join(dir, "b.npy")
	require.NoError(t, Save(a, arr))
	require.NoError(t, Save(b, arr))

	ab, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, ab, bb)
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()

	err := Save(filepath.Join(dir, "missing", "x.npy"), features.NewVector([]float64{1}))
	assert.Error(t, err)

	err = Save(filepath.Join(dir, "bad.npy"), &features.Array{Shape: []int{2}, Data: []float64{1}})
	assert.Error(t, err)

	err = Save(filepath.Join(dir, "empty.npy"), features.NewVector(nil))
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "bad.npy"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.npy")
	require.NoError(t, os.WriteFile(path, []byte("not numpy"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFortranToC(t *testing.T) {
	// column-major [[1,2,3],[4,5,6]]
	got := fortranToC([]float64{1, 4, 2, 5, 3, 6}, 2, 3)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
}
