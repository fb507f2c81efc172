package excelmcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp/parser"
)

// WriteCell stores a single value. An empty value clears the cell.
func (s *Service) WriteCell(ctx context.Context, req WriteCellRequest) (models.CellResult, error) {
	const op = OpWriteCell
	if err := req.Validate(); err != nil {
		return models.CellResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.CellResult{}, err
	}

	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SheetName); err != nil {
			return err
		}
		return writeValue(op, f, req.SheetName, req.Cell, req.Value)
	})
	if err != nil {
		return models.CellResult{}, err
	}
	return models.CellResult{
		Envelope: models.Succeeded(fmt.Sprintf("Value written to %s", req.Cell)),
		Cell:     req.Cell,
		Value:    req.Value,
		Type:     req.Value.Kind.String(),
	}, nil
}

// ReadCell returns the stored value of a cell. Formula cells also report a
// calculated value when evaluation is enabled and succeeds.
func (s *Service) ReadCell(ctx context.Context, req ReadCellRequest) (models.CellResult, error) {
	const op = OpReadCell
	if err := req.Validate(); err != nil {
		return models.CellResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.CellResult{}, err
	}

	var (
		value      models.CellValue
		calculated *string
	)
	err := s.withWorkbook(ctx, op, req.WorkbookPath, false, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SheetName); err != nil {
			return err
		}
		v, err := parser.ReadValue(f, req.SheetName, req.Cell)
		if err != nil {
			return NewOperationError(op, errInternal, err, "Failed to read cell: %v", err)
		}
		value = v
		if v.Kind == models.KindFormula {
			calculated = s.calculate(f, req.SheetName, req.Cell)
		}
		return nil
	})
	if err != nil {
		return models.CellResult{}, err
	}
	return models.CellResult{
		Envelope:        models.Succeeded(fmt.Sprintf("Value read from %s", req.Cell)),
		Cell:            req.Cell,
		Value:           value,
		Type:            value.Kind.String(),
		CalculatedValue: calculated,
	}, nil
}

// WriteFormula stores a formula. The result carries the formula text and,
// when it can be computed, its value.
func (s *Service) WriteFormula(ctx context.Context, req WriteFormulaRequest) (models.CellResult, error) {
	const op = OpWriteFormula
	if err := req.Validate(); err != nil {
		return models.CellResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.CellResult{}, err
	}

	var calculated *string
	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SheetName); err != nil {
			return err
		}
		if err := writeValue(op, f, req.SheetName, req.Cell, models.Formula(req.Formula)); err != nil {
			return err
		}
		calculated = s.calculate(f, req.SheetName, req.Cell)
		return nil
	})
	if err != nil {
		return models.CellResult{}, err
	}
	return models.CellResult{
		Envelope:        models.Succeeded(fmt.Sprintf("Formula written to %s", req.Cell)),
		Cell:            req.Cell,
		Value:           models.Formula(req.Formula),
		Type:            models.KindFormula.String(),
		CalculatedValue: calculated,
	}, nil
}

// WriteRange writes Data row by row starting at StartCell. Short rows are
// padded: nothing is written past their end. Empty values clear their cell.
func (s *Service) WriteRange(ctx context.Context, req WriteRangeRequest) (models.RangeResult, error) {
	const op = OpWriteRange
	if err := req.Validate(); err != nil {
		return models.RangeResult{}, err
	}
	if err := s.checkRangeSize(op, req.rng); err != nil {
		return models.RangeResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.RangeResult{}, err
	}

	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SheetName); err != nil {
			return err
		}
		for i, row := range req.Data {
			for j, v := range row {
				if err := writeValue(op, f, req.SheetName, req.start.Offset(i, j).String(), v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.RangeResult{}, err
	}
	return models.RangeResult{
		Envelope: models.Succeeded(fmt.Sprintf("Data written to range starting at %s", req.StartCell)),
		Range:    req.rng.String(),
		Rows:     req.rng.Rows(),
		Cols:     req.rng.Cols(),
	}, nil
}

// ReadRange returns the stored values of every cell in the range.
func (s *Service) ReadRange(ctx context.Context, req ReadRangeRequest) (models.RangeResult, error) {
	const op = OpReadRange
	if err := req.Validate(); err != nil {
		return models.RangeResult{}, err
	}
	if err := s.checkRangeSize(op, req.rng); err != nil {
		return models.RangeResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.RangeResult{}, err
	}

	var data [][]models.CellValue
	err := s.withWorkbook(ctx, op, req.WorkbookPath, false, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SheetName); err != nil {
			return err
		}
		grid, err := parser.ReadGrid(f, req.SheetName,
			req.rng.Start.Col, req.rng.Start.Row, req.rng.End.Col, req.rng.End.Row)
		if err != nil {
			return NewOperationError(op, errInternal, err, "Failed to read range: %v", err)
		}
		data = grid
		return nil
	})
	if err != nil {
		return models.RangeResult{}, err
	}
	return models.RangeResult{
		Envelope: models.Succeeded(fmt.Sprintf("Data read from range %s", req.RangeRef)),
		Range:    req.RangeRef,
		Rows:     req.rng.Rows(),
		Cols:     req.rng.Cols(),
		Data:     data,
	}, nil
}

// writeValue stores v in cell, replacing any formula already there.
func writeValue(op string, f *excelize.File, sheet, cell string, v models.CellValue) error {
	var err error
	switch v.Kind {
	case models.KindEmpty:
		err = f.SetCellValue(sheet, cell, nil)
	case models.KindText:
		err = f.SetCellStr(sheet, cell, v.Text)
	case models.KindNumber:
		err = f.SetCellFloat(sheet, cell, v.Number, -1, 64)
	case models.KindBool:
		err = f.SetCellBool(sheet, cell, v.Bool)
	case models.KindFormula:
		err = f.SetCellFormula(sheet, cell, strings.TrimPrefix(v.Text, "="))
	default:
		return NewOperationError(op, ErrValidation, nil, "Unsupported value kind %s for cell %s", v.Kind, cell)
	}
	if err != nil {
		return NewOperationError(op, errInternal, err, "Failed to write cell %s: %v", cell, err)
	}
	return nil
}

// calculate evaluates a formula cell. It returns nil when evaluation is
// disabled or fails.
func (s *Service) calculate(f *excelize.File, sheet, cell string) *string {
	if !s.opts.ShouldEvaluateFormulas() {
		return nil
	}
	result, err := f.CalcCellValue(sheet, cell)
	if err != nil {
		s.logger.Debug("formula not evaluated", "sheet", sheet, "cell", cell, "error", err)
		return nil
	}
	return &result
}
