package chips

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// RowMajorMatrix is a dense trace stored row after row
type RowMajorMatrix struct {
	Values []field.Element
	Width  int
}

// NewRowMajorMatrix creates a matrix from flattened rows
func NewRowMajorMatrix(values []field.Element, width int) (*RowMajorMatrix, error) {
	if width <= 0 {
		return nil, fmt.Errorf("matrix width must be positive, got %d", width)
	}
	if len(values)%width != 0 {
		return nil, fmt.Errorf("%d values do not fill rows of width %d", len(values), width)
	}
	return &RowMajorMatrix{Values: values, Width: width}, nil
}

// Height returns the number of rows
func (m *RowMajorMatrix) Height() int {
	if m.Width == 0 {
		return 0
	}
	return len(m.Values) / m.Width
}

// Row returns row i without copying
func (m *RowMajorMatrix) Row(i int) []field.Element {
	return m.Values[i*m.Width : (i+1)*m.Width]
}

// Equal reports whether both matrices hold the same cells
func (m *RowMajorMatrix) Equal(other *RowMajorMatrix) bool {
	if m.Width != other.Width || len(m.Values) != len(other.Values) {
		return false
	}
	for i := range m.Values {
		if !m.Values[i].Equal(other.Values[i]) {
			return false
		}
	}
	return true
}

// PadRowsFixed appends copies of dummy until the row count reaches the padded
// height: 2^log2 when a fixed height is given, else the next power of two.
func PadRowsFixed(rows [][]field.Element, dummy []field.Element, fixedLog2 *int) ([][]field.Element, error) {
	target := utils.NextPowerOfTwo(len(rows))
	if fixedLog2 != nil {
		target = 1 << *fixedLog2
		if len(rows) > target {
			return nil, fmt.Errorf("%d rows exceed fixed height 2^%d", len(rows), *fixedLog2)
		}
	}
	for len(rows) < target {
		row := make([]field.Element, len(dummy))
		copy(row, dummy)
		rows = append(rows, row)
	}
	return rows, nil
}
