package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-extract/arrayio"
)

// Mirror maps a file under inputRoot to its output location:
//
//	<outputRoot>/<dir of file relative to inputRoot>/<basename with .npy>
//
// Only the final extension is replaced, so "a.b.wav" becomes "a.b.npy".
// Files outside inputRoot fail with ErrOutsideInputRoot.
func Mirror(inputRoot, outputRoot, file string) (dir, name string, err error) {
	rel, err := filepath.Rel(inputRoot, filepath.Dir(file))
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrOutsideInputRoot, file)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrOutsideInputRoot, file)
	}

	base := filepath.Base(file)
	name = strings.TrimSuffix(base, filepath.Ext(base)) + arrayio.Extension
	return filepath.Join(outputRoot, rel), name, nil
}

// OutputPath is Mirror joined into a single path.
func OutputPath(inputRoot, outputRoot, file string) (string, error) {
	dir, name, err := Mirror(inputRoot, outputRoot, file)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
