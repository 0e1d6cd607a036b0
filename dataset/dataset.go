// Package dataset indexes a tree of persisted feature arrays as labelled
// samples: every immediate subdirectory of the root is a class.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/RyanBlaney/sonido-extract/arrayio"
	"github.com/RyanBlaney/sonido-extract/features"
)

// ErrNoClasses is returned when the root holds no usable class directory.
var ErrNoClasses = errors.New("no class directories found")

// Options controls which directories and files are indexed.
type Options struct {
	SkipDirs  []string `json:"skip_dirs"` // directory names ignored at any depth
	Extension string   `json:"extension"` // sample file extension
}

// DefaultOptions skips notebook checkpoint folders and indexes .npy files.
func DefaultOptions() Options {
	return Options{
		SkipDirs:  []string{".ipynb_checkpoints"},
		Extension: arrayio.Extension,
	}
}

// Sample is one labelled array file.
type Sample struct {
	Path  string `json:"path"`
	Class string `json:"class"`
	Label int    `json:"label"`
}

// Index is a random-access view of (array, label) pairs. Labels are
// 0..len(Classes)-1 following the sorted class names.
type Index struct {
	Root    string   `json:"root"`
	Classes []string `json:"classes"`
	Samples []Sample `json:"samples"`
}

// Build scans root. Classes are its immediate subdirectories in sorted
// order, minus skipped names; samples are collected recursively beneath
// each class.
func Build(root string, opts Options) (*Index, error) {
	if opts.Extension == "" {
		opts.Extension = arrayio.Extension
	}
	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, name := range opts.SkipDirs {
		skip[name] = true
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading dataset root: %w", err)
	}

	ix := &Index{Root: root}
	for _, e := range entries {
		if e.IsDir() && !skip[e.Name()] {
			ix.Classes = append(ix.Classes, e.Name())
		}
	}
	if len(ix.Classes) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoClasses, root)
	}
	sort.Strings(ix.Classes)

	ext := strings.ToLower(opts.Extension)
	for label, class := range ix.Classes {
		err := filepath.WalkDir(filepath.Join(root, class), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skip[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && strings.ToLower(filepath.Ext(path)) == ext {
				ix.Samples = append(ix.Samples, Sample{Path: path, Class: class, Label: label})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("indexing class %q: %w", class, err)
		}
	}

	return ix, nil
}

// Len returns the number of samples
func (ix *Index) Len() int { return len(ix.Samples) }

// NumClasses returns the number of labels
func (ix *Index) NumClasses() int { return len(ix.Classes) }

// Sample returns sample i.
func (ix *Index) Sample(i int) (Sample, error) {
	if i < 0 || i >= len(ix.Samples) {
		return Sample{}, fmt.Errorf("sample index %d out of range [0, %d)", i, len(ix.Samples))
	}
	return ix.Samples[i], nil
}

// Load reads the array of sample i and returns it with its label.
func (ix *Index) Load(i int) (*features.Array, int, error) {
	s, err := ix.Sample(i)
	if err != nil {
		return nil, 0, err
	}
	arr, err := arrayio.Load(s.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("loading %s: %w", s.Path, err)
	}
	return arr, s.Label, nil
}

// LabelOf returns the label assigned to a class name.
func (ix *Index) LabelOf(class string) (int, bool) {
	i, ok := slices.BinarySearch(ix.Classes, class)
	return i, ok
}

// ClassCounts returns the number of samples per class name.
func (ix *Index) ClassCounts() map[string]int {
	counts := make(map[string]int, len(ix.Classes))
	for _, c := range ix.Classes {
		counts[c] = 0
	}
	for _, s := range ix.Samples {
		counts[s.Class]++
	}
	return counts
}

// Split partitions the samples into training and validation indexes,
// holding out round(fraction * n) samples of each class. The same seed
// always yields the same split. Both halves keep the full class list so
// labels agree.
func (ix *Index) Split(fraction float64, seed uint64) (train, validation *Index, err error) {
	if fraction < 0 || fraction > 1 || math.IsNaN(fraction) {
		return nil, nil, fmt.Errorf("validation fraction %v outside [0, 1]", fraction)
	}

	byLabel := make([][]Sample, len(ix.Classes))
	for _, s := range ix.Samples {
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	train = &Index{Root: ix.Root, Classes: slices.Clone(ix.Classes)}
	validation = &Index{Root: ix.Root, Classes: slices.Clone(ix.Classes)}

	for _, group := range byLabel {
		shuffled := slices.Clone(group)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		held := int(math.Round(fraction * float64(len(shuffled))))
		validation.Samples = append(validation.Samples, shuffled[:held]...)
		train.Samples = append(train.Samples, shuffled[held:]...)
	}

	sortSamples(train.Samples)
	sortSamples(validation.Samples)
	return train, validation, nil
}

func sortSamples(s []Sample) {
	sort.Slice(s, func(i, j int) bool { return s[i].Path < s[j].Path })
}
