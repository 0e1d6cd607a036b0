// Package arrayio persists feature arrays as NumPy .npy files.
package arrayio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"

	"github.com/RyanBlaney/sonido-extract/features"
)

// Extension is the file extension of persisted arrays.
const Extension = ".npy"

// Save writes arr to path as a little-endian float64 C-order .npy file.
// The data goes to a temporary file in the same directory which is renamed
// over path only after a complete write, so readers never observe a
// partial array.
func Save(path string, arr *features.Array) (err error) {
	if err := arr.Validate(); err != nil {
		return err
	}
	if arr.Len() == 0 {
		return fmt.Errorf("refusing to save empty array with shape %v", arr.Shape)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, arr); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// Write encodes arr in .npy format to w.
func Write(w io.Writer, arr *features.Array) error {
	var err error
	switch arr.Rank() {
	case 1:
		err = npyio.Write(w, arr.Data)
	case 2:
		m, derr := arr.Dense()
		if derr != nil {
			return derr
		}
		err = npyio.Write(w, m)
	default:
		return fmt.Errorf("cannot encode rank %d array", arr.Rank())
	}
	if err != nil {
		return fmt.Errorf("encoding npy: %w", err)
	}
	return nil
}

// Load reads a float64 .npy file of rank 1 or 2.
func Load(path string) (*features.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read decodes a .npy stream. Fortran-ordered matrices are returned in
// row-major order.
func Read(r io.Reader) (*features.Array, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading npy header: %w", err)
	}

	shape := append([]int(nil), npy.Header.Descr.Shape...)
	if len(shape) < 1 || len(shape) > 2 {
		return nil, fmt.Errorf("unsupported npy rank %d", len(shape))
	}

	var data []float64
	if err := npy.Read(&data); err != nil {
		return nil, fmt.Errorf("reading npy data: %w", err)
	}

	if npy.Header.Descr.Fortran && len(shape) == 2 {
		data = fortranToC(data, shape[0], shape[1])
	}

	arr := &features.Array{Shape: shape, Data: data}
	if err := arr.Validate(); err != nil {
		return nil, err
	}
	return arr, nil
}

func fortranToC(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for i := range rows {
		for j := range cols {
			out[i*cols+j] = data[j*rows+i]
		}
	}
	return out
}
