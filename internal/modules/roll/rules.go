package roll

import (
	"math"
	"strconv"
	"strings"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

const (
	// NokThreshold is the fixed reject limit: any thickness strictly below it is NOK.
	NokThreshold = 5.0
	// MaxRows caps the grid height whatever the target length.
	MaxRows = 100
	// MaxCellsWithNok is the number of distinct rejected cells a roll tolerates.
	MaxCellsWithNok = 3

	shortRollLength  = 3
	firstMeasureRow  = 3
	measureRowStride = 5
)

// RowCount is the number of grid rows for a target length: min(100, max(0, L)).
func RowCount(targetLength int) int {
	if targetLength <= 0 {
		return 0
	}
	if targetLength > MaxRows {
		return MaxRows
	}
	return targetLength
}

// IsThicknessRow reports whether row carries thickness inputs. Rolls shorter than
// 3m are measured on row 1 only; longer rolls on row 3 and every 5th row after it.
func IsThicknessRow(row, targetLength int) bool {
	if row < 1 || row > targetLength {
		return false
	}
	if targetLength < shortRollLength {
		return row == 1
	}
	if row == firstMeasureRow {
		return true
	}
	return row > firstMeasureRow && (row-firstMeasureRow)%measureRowStride == 0
}

// ThicknessRows lists the measurement rows visible in the grid, ascending.
func ThicknessRows(targetLength int) []int {
	n := RowCount(targetLength)
	var rows []int
	for row := 1; row <= n; row++ {
		if IsThicknessRow(row, targetLength) {
			rows = append(rows, row)
		}
	}
	return rows
}

// TotalSlots is the number of thickness inputs a complete roll has.
func TotalSlots(targetLength int) int {
	return len(ThicknessRows(targetLength)) * len(domain.Columns)
}

// IsNok reports whether a thickness value is rejected.
func IsNok(value float64) bool { return value < NokThreshold }

// ParseThickness normalizes a decimal comma and parses the input text. empty is
// true for blank input; ok is false when the text is not a number.
func ParseThickness(raw string) (value float64, empty bool, ok bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, true, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, false
	}
	return v, false, true
}

// PointCode maps a grid lane to the measurement point code stored with a roll:
// first letter is the side (G left, D right), second the lane within it.
func PointCode(col domain.Column) string {
	switch col {
	case domain.ColG1:
		return "GG"
	case domain.ColC1:
		return "GC"
	case domain.ColD1:
		return "GD"
	case domain.ColG2:
		return "DG"
	case domain.ColC2:
		return "DC"
	case domain.ColD2:
		return "DD"
	default:
		return "GG"
	}
}
