package logprobs

import (
	"fmt"
	"io"

	"github.com/sbinet/npyio/npy"
)

// ReadNPY decodes a two-dimensional float32 or float64 NumPy array.
func ReadNPY(r io.Reader) (Matrix, error) {
	rd, err := npy.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("npy: %w", err)
	}
	descr := rd.Header.Descr
	if len(descr.Shape) != 2 {
		return nil, fmt.Errorf("npy: expected 2 dimensions, got %d", len(descr.Shape))
	}
	rows, cols := descr.Shape[0], descr.Shape[1]

	var flat []float64
	switch descr.Type {
	case "<f4", ">f4":
		var data []float32
		if err := rd.Read(&data); err != nil {
			return nil, fmt.Errorf("npy: read %s data: %w", descr.Type, err)
		}
		flat = make([]float64, len(data))
		for i, v := range data {
			flat[i] = float64(v)
		}
	case "<f8", ">f8":
		if err := rd.Read(&flat); err != nil {
			return nil, fmt.Errorf("npy: read %s data: %w", descr.Type, err)
		}
	default:
		return nil, fmt.Errorf("npy: unsupported dtype %q", descr.Type)
	}
	if len(flat) != rows*cols {
		return nil, fmt.Errorf("npy: %d values for shape (%d, %d)", len(flat), rows, cols)
	}

	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	for n, v := range flat {
		row, col := n/cols, n%cols
		if descr.Fortran {
			row, col = n%rows, n/rows
		}
		m[row][col] = v
	}
	return m, nil
}
