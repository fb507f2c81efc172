// Package parser provides typed reads over excelize worksheets.
package parser

import (
	"strconv"
	"strings"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
	"github.com/xuri/excelize/v2"
)

// ReadValue returns the stored value of a cell. Formula cells report their
// formula text, never a cached result.
func ReadValue(f *excelize.File, sheetName, cell string) (models.CellValue, error) {
	raw, err := f.GetCellValue(sheetName, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.CellValue{}, err
	}
	return typedValue(f, sheetName, cell, raw)
}

// typedValue resolves the kind of a cell whose raw value is already known.
func typedValue(f *excelize.File, sheetName, cell, raw string) (models.CellValue, error) {
	formula, err := f.GetCellFormula(sheetName, cell)
	if err != nil {
		return models.CellValue{}, err
	}
	if formula != "" {
		return models.Formula(formula), nil
	}

	cellType, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return models.CellValue{}, err
	}
	switch cellType {
	case excelize.CellTypeBool:
		return models.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		// A stored "" is still a string cell.
		return models.Text(raw), nil
	case excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		if raw == "" {
			return models.Empty(), nil
		}
		return models.Text(raw), nil
	default:
		return parseValue(raw), nil
	}
}

// ReadGrid reads the inclusive rectangle (startCol,startRow)-(endCol,endRow)
// row by row. Coordinates are 1-based. The sheet is scanned once; only cells
// the scan cannot type on its own are looked up individually.
func ReadGrid(f *excelize.File, sheetName string, startCol, startRow, endCol, endRow int) ([][]models.CellValue, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make([][]models.CellValue, 0, endRow-startRow+1)
	for row := startRow; row <= endRow; row++ {
		var raws []string
		if row-1 < len(rows) {
			raws = rows[row-1]
		}
		values := make([]models.CellValue, 0, endCol-startCol+1)
		for col := startCol; col <= endCol; col++ {
			cellName, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, err
			}
			v, err := gridValue(f, sheetName, cellName, raws, col)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		grid = append(grid, values)
	}
	return grid, nil
}

// gridValue types one cell of a scanned row. The scan drops trailing cells
// whose value is "" and has no formula, so those only need a type check.
func gridValue(f *excelize.File, sheetName, cell string, raws []string, col int) (models.CellValue, error) {
	if col-1 < len(raws) {
		if raw := raws[col-1]; raw != "" {
			return typedValue(f, sheetName, cell, raw)
		}
		// Blank padding, an uncached formula or an empty string.
		return ReadValue(f, sheetName, cell)
	}
	cellType, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return models.CellValue{}, err
	}
	if cellType == excelize.CellTypeUnset {
		return models.Empty(), nil
	}
	return ReadValue(f, sheetName, cell)
}

// parseValue interprets an untyped raw value. Numbers become KindNumber,
// anything else is kept as text.
func parseValue(s string) models.CellValue {
	if s == "" {
		return models.Empty()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.Number(f)
	}
	return models.Text(s)
}
