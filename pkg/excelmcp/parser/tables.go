package parser

import (
	"github.com/xuri/excelize/v2"
)

// Bounds is a 1-based inclusive cell rectangle.
type Bounds struct {
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// Rows returns the number of rows covered.
func (b Bounds) Rows() int { return b.MaxRow - b.MinRow + 1 }

// Cols returns the number of columns covered.
func (b Bounds) Cols() int { return b.MaxCol - b.MinCol + 1 }

// A1 returns the bounds in "A1:D10" notation.
func (b Bounds) A1() string {
	start, _ := excelize.CoordinatesToCellName(b.MinCol, b.MinRow)
	end, _ := excelize.CoordinatesToCellName(b.MaxCol, b.MaxRow)
	return start + ":" + end
}

// UsedRange finds the bounding box of non-empty cells in a sheet.
// ok is false when the sheet holds no values.
func UsedRange(f *excelize.File, sheetName string) (b Bounds, ok bool, err error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return Bounds{}, false, err
	}
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return Bounds{}, false, nil
	}
	return Bounds{
		MinRow: minRow + 1,
		MinCol: minCol + 1,
		MaxRow: maxRow + 1,
		MaxCol: maxCol + 1,
	}, true, nil
}

// findDataBounds finds the bounding box of non-empty cells (0-based).
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}
