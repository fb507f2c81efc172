package excelmcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

// borderStyleIDs maps border style names to excelize border style indexes.
var borderStyleIDs = map[string]int{
	"none":   0,
	"thin":   1,
	"medium": 2,
	"dashed": 3,
	"dotted": 4,
	"thick":  5,
	"double": 6,
	"hair":   7,
}

const defaultBorderColor = "000000"

// FormatFont changes the font attributes that are set in req and keeps the rest.
func (s *Service) FormatFont(ctx context.Context, req FontFormatRequest) (models.FormatResult, error) {
	if err := req.Validate(); err != nil {
		return models.FormatResult{}, err
	}
	return s.restyle(ctx, OpFormatFont, "Font", req.RangeTarget, func(st *excelize.Style) {
		if st.Font == nil {
			st.Font = &excelize.Font{}
		}
		if req.FontName != nil {
			st.Font.Family = *req.FontName
		}
		if req.FontSize != nil {
			st.Font.Size = *req.FontSize
		}
		if req.Bold != nil {
			st.Font.Bold = *req.Bold
		}
		if req.Italic != nil {
			st.Font.Italic = *req.Italic
		}
		if req.Underline != nil {
			st.Font.Underline = *req.Underline
			if st.Font.Underline == "none" {
				st.Font.Underline = ""
			}
		}
		if req.Color != nil {
			st.Font.Color = *req.Color
			st.Font.ColorIndexed = 0
			st.Font.ColorTheme = nil
			st.Font.ColorTint = 0
		}
	})
}

// FormatFill replaces the cell background.
func (s *Service) FormatFill(ctx context.Context, req FillFormatRequest) (models.FormatResult, error) {
	if err := req.Validate(); err != nil {
		return models.FormatResult{}, err
	}
	// FillPatterns omits "none", which excelize numbers 0.
	pattern := slices.Index(FillPatterns, req.FillType) + 1
	return s.restyle(ctx, OpFormatFill, "Fill", req.RangeTarget, func(st *excelize.Style) {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: pattern, Color: []string{req.Color}}
	})
}

// FormatBorder sets the listed sides. Sides not listed keep their border;
// style "none" removes the listed sides.
func (s *Service) FormatBorder(ctx context.Context, req BorderFormatRequest) (models.FormatResult, error) {
	if err := req.Validate(); err != nil {
		return models.FormatResult{}, err
	}
	color := defaultBorderColor
	if req.Color != nil {
		color = *req.Color
	}
	styleID := borderStyleIDs[req.Style]
	return s.restyle(ctx, OpFormatBorder, "Border", req.RangeTarget, func(st *excelize.Style) {
		borders := slices.DeleteFunc(slices.Clone(st.Border), func(b excelize.Border) bool {
			return slices.Contains(req.Sides, b.Type)
		})
		if styleID != 0 {
			for _, side := range req.Sides {
				borders = append(borders, excelize.Border{Type: side, Color: color, Style: styleID})
			}
		}
		st.Border = borders
	})
}

// FormatAlignment changes the alignment attributes that are set in req.
func (s *Service) FormatAlignment(ctx context.Context, req AlignmentFormatRequest) (models.FormatResult, error) {
	if err := req.Validate(); err != nil {
		return models.FormatResult{}, err
	}
	return s.restyle(ctx, OpFormatAlignment, "Alignment", req.RangeTarget, func(st *excelize.Style) {
		if st.Alignment == nil {
			st.Alignment = &excelize.Alignment{}
		}
		if req.Horizontal != nil {
			st.Alignment.Horizontal = *req.Horizontal
		}
		if req.Vertical != nil {
			st.Alignment.Vertical = *req.Vertical
		}
		if req.WrapText != nil {
			st.Alignment.WrapText = *req.WrapText
		}
		if req.TextRotation != nil {
			st.Alignment.TextRotation = *req.TextRotation
		}
	})
}

// FormatNumber sets a custom number format code.
func (s *Service) FormatNumber(ctx context.Context, req NumberFormatRequest) (models.FormatResult, error) {
	if err := req.Validate(); err != nil {
		return models.FormatResult{}, err
	}
	code := req.FormatString
	return s.restyle(ctx, OpFormatNumber, "Number", req.RangeTarget, func(st *excelize.Style) {
		st.NumFmt = 0
		st.DecimalPlaces = nil
		st.CustomNumFmt = &code
	})
}

// restyle applies mutate to the style of every cell in the target range.
// Cells sharing a style share the derived style too, and excelize reuses an
// existing style id when the derived style is already defined, so applying
// the same change twice leaves the workbook unchanged.
func (s *Service) restyle(ctx context.Context, op, label string, target RangeTarget, mutate func(*excelize.Style)) (models.FormatResult, error) {
	if err := s.checkRangeSize(op, target.rng); err != nil {
		return models.FormatResult{}, err
	}
	if err := s.checkPath(op, target.WorkbookPath, true); err != nil {
		return models.FormatResult{}, err
	}

	err := s.withWorkbook(ctx, op, target.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, target.SheetName); err != nil {
			return err
		}
		derived := make(map[int]int)
		return target.rng.Each(func(ref CellRef) error {
			cell := ref.String()
			current, err := f.GetCellStyle(target.SheetName, cell)
			if err != nil {
				return NewOperationError(op, errInternal, err, "Failed to read style of %s: %v", cell, err)
			}
			next, ok := derived[current]
			if !ok {
				st, err := f.GetStyle(current)
				if err != nil || st == nil {
					st = &excelize.Style{}
				}
				mutate(st)
				if next, err = f.NewStyle(st); err != nil {
					return NewOperationError(op, ErrValidation, err, "Invalid %s format for %s: %v", strings.ToLower(label), target.RangeRef, err)
				}
				derived[current] = next
			}
			if next == current {
				return nil
			}
			if err := f.SetCellStyle(target.SheetName, cell, cell, next); err != nil {
				return NewOperationError(op, errInternal, err, "Failed to apply style to %s: %v", cell, err)
			}
			return nil
		})
	})
	if err != nil {
		return models.FormatResult{}, err
	}
	return models.FormatResult{
		Envelope: models.Succeeded(fmt.Sprintf("%s formatting applied to %s", label, target.RangeRef)),
		Range:    target.RangeRef,
		Cells:    target.rng.Cells(),
	}, nil
}
