package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-extract/arrayio"
	"github.com/RyanBlaney/sonido-extract/dataset"
	"github.com/RyanBlaney/sonido-extract/features"
	"github.com/RyanBlaney/sonido-extract/internal/audiotest"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{"cat/a.npy", "cat/b.npy", "dog/c.npy"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		audiotest.Touch(t, path, nil)
		require.NoError(t, arrayio.Save(path, features.NewVector([]float64{1, 2})))
	}
	return root
}

func TestRun_Summary(t *testing.T) {
	root := buildTree(t)

	var out bytes.Buffer
	code := run([]string{"--verify", "--split", "0.5", root}, &out)
	require.Equal(t, 0, code)

	text := out.String()
	assert.Contains(t, text, "dataset: 3 samples, 2 classes")
	assert.Contains(t, text, "train:")
	assert.Contains(t, text, "validation:")
}

func TestRun_JSON(t *testing.T) {
	root := buildTree(t)

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"--json", root}, &out))

	var ix dataset.Index
	require.NoError(t, json.Unmarshal(out.Bytes(), &ix))
	assert.Equal(t, []string{"cat", "dog"}, ix.Classes)
	assert.Len(t, ix.Samples, 3)
}

func TestRun_VerifyFailsOnCorruptSample(t *testing.T) {
	root := buildTree(t)
	audiotest.Touch(t, filepath.Join(root, "dog", "broken.npy"), []byte("not an array"))

	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"--verify", root}, &out))
}

func TestRun_BadArgs(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(nil, &out))
	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "missing")}, &out))
}
