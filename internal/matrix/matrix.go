// Package matrix generates the square matrix drill and marks its highlighted cells.
package matrix

import (
	"math"
	"math/rand/v2"

	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
	"github.com/labdesk/labdesk-server/internal/numeric"
)

// Size and value bounds for generated matrices.
const (
	MinSize  = 1
	MaxSize  = 10
	MinValue = -20
	MaxValue = 20
)

// Matrix is a square grid of integers, stored row by row.
type Matrix struct {
	rows [][]int
}

// Cell is one rendered element.
type Cell struct {
	Row         int
	Col         int
	Value       int
	Highlighted bool
}

// ParseSize parses the size field. It accepts anything numeric.Parse does
// but rejects non-integers and sizes outside [MinSize, MaxSize].
func ParseSize(text string) (int, error) {
	n := numeric.Parse(text)
	if !numeric.IsFinite(n) || n != math.Trunc(n) {
		return 0, errSize()
	}
	return validSize(int(n))
}

// Generate builds an n×n matrix with values drawn uniformly from
// [MinValue, MaxValue].
func Generate(n int, rng *rand.Rand) (*Matrix, error) {
	if _, err := validSize(n); err != nil {
		return nil, err
	}

	rows := make([][]int, n)
	for i := range rows {
		row := make([]int, n)
		for j := range row {
			row[j] = rng.IntN(MaxValue-MinValue+1) + MinValue
		}
		rows[i] = row
	}
	return &Matrix{rows: rows}, nil
}

// FromRows wraps existing rows. The rows are not copied.
func FromRows(rows [][]int) *Matrix {
	return &Matrix{rows: rows}
}

// IsHighlighted reports whether a value is negative, odd and greater than -10.
func IsHighlighted(v int) bool {
	return v < 0 && v%2 != 0 && v > -10
}

// Size returns the number of rows.
func (m *Matrix) Size() int {
	return len(m.rows)
}

// Rows returns the underlying rows.
func (m *Matrix) Rows() [][]int {
	return m.rows
}

// Highlighted counts highlighted cells.
func (m *Matrix) Highlighted() int {
	count := 0
	for _, row := range m.rows {
		for _, v := range row {
			if IsHighlighted(v) {
				count++
			}
		}
	}
	return count
}

// Cells lists every cell in row-major order with its highlight flag.
func (m *Matrix) Cells() []Cell {
	cells := make([]Cell, 0, len(m.rows)*len(m.rows))
	for i, row := range m.rows {
		for j, v := range row {
			cells = append(cells, Cell{Row: i, Col: j, Value: v, Highlighted: IsHighlighted(v)})
		}
	}
	return cells
}

func validSize(n int) (int, error) {
	if n < MinSize || n > MaxSize {
		return 0, errSize()
	}
	return n, nil
}

func errSize() error {
	return domainerrors.Validationf("enter an integer N between %d and %d", MinSize, MaxSize)
}
