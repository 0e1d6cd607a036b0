package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RyanBlaney/sonido-extract/logging"
)

// DefaultExtensions are used when no extensions are configured.
var DefaultExtensions = []string{".wav"}

// Discover walks root and returns every regular file whose extension
// matches one of exts (case-insensitive, leading dot optional), sorted
// lexicographically. Subdirectories that cannot be read are skipped with a
// warning; an unreadable root fails with ErrInputRoot.
func Discover(root string, exts []string, log logging.Logger) ([]string, error) {
	if log == nil {
		log = &logging.NoOpLogger{}
	}
	if err := checkInputRoot(root); err != nil {
		return nil, err
	}

	want := extensionSet(exts)
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %v", ErrInputRoot, err)
			}
			log.Warn("Skipping unreadable path", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func checkInputRoot(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInputRoot, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInputRoot, root)
	}
	return nil
}

func extensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
