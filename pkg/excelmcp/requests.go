package excelmcp

import (
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

// Operation names, as advertised to callers.
const (
	OpCreateWorkbook  = "create_workbook"
	OpWorkbookInfo    = "get_workbook_info"
	OpListSheets      = "list_sheets"
	OpCreateSheet     = "create_sheet"
	OpDeleteSheet     = "delete_sheet"
	OpRenameSheet     = "rename_sheet"
	OpCopySheet       = "copy_sheet"
	OpWriteCell       = "write_cell"
	OpReadCell        = "read_cell"
	OpWriteRange      = "write_range"
	OpReadRange       = "read_range"
	OpWriteFormula    = "write_formula"
	OpFormatFont      = "format_font"
	OpFormatFill      = "format_fill"
	OpFormatBorder    = "format_border"
	OpFormatAlignment = "format_alignment"
	OpFormatNumber    = "format_number"
)

// DefaultSheetName names the first sheet of a new workbook.
const DefaultSheetName = "Sheet1"

// Allowed values for the enumerated format parameters.
var (
	UnderlineStyles      = []string{"single", "double", "none"}
	BorderStyles         = []string{"thin", "medium", "thick", "double", "dashed", "dotted", "hair", "none"}
	BorderSides          = []string{"top", "bottom", "left", "right"}
	HorizontalAlignments = []string{"general", "left", "center", "right", "fill", "justify", "centerContinuous", "distributed"}
	VerticalAlignments   = []string{"top", "center", "bottom", "justify", "distributed"}
	FillPatterns         = []string{
		"solid", "mediumGray", "darkGray", "lightGray", "darkHorizontal", "darkVertical",
		"darkDown", "darkUp", "darkGrid", "darkTrellis", "lightHorizontal", "lightVertical",
		"lightDown", "lightUp", "lightGrid", "lightTrellis", "gray125", "gray0625",
	}
)

const (
	MinFontSize     = 8
	MaxFontSize     = 72
	MaxTextRotation = 180
)

// CreateWorkbookRequest is the input of create_workbook.
type CreateWorkbookRequest struct {
	FilePath string `json:"file_path"`
	// SheetName names the initial sheet. Defaults to "Sheet1".
	SheetName string `json:"sheet_name,omitempty"`
}

// Validate normalizes the request in place.
func (r *CreateWorkbookRequest) Validate() error {
	p, err := ValidatePath(OpCreateWorkbook, r.FilePath)
	if err != nil {
		return err
	}
	r.FilePath = p
	if r.SheetName == "" {
		r.SheetName = DefaultSheetName
	}
	return ValidateSheetName(OpCreateWorkbook, r.SheetName)
}

// WorkbookInfoRequest is the input of get_workbook_info.
type WorkbookInfoRequest struct {
	FilePath string `json:"file_path"`
}

func (r *WorkbookInfoRequest) Validate() error {
	p, err := ValidatePath(OpWorkbookInfo, r.FilePath)
	r.FilePath = p
	return err
}

// ListSheetsRequest is the input of list_sheets.
type ListSheetsRequest struct {
	FilePath string `json:"file_path"`
}

func (r *ListSheetsRequest) Validate() error {
	p, err := ValidatePath(OpListSheets, r.FilePath)
	r.FilePath = p
	return err
}

// SheetTarget names a sheet inside a workbook.
type SheetTarget struct {
	WorkbookPath string `json:"workbook_path"`
	SheetName    string `json:"sheet_name"`
}

func (t *SheetTarget) validate(op string) error {
	p, err := ValidatePath(op, t.WorkbookPath)
	if err != nil {
		return err
	}
	t.WorkbookPath = p
	if t.SheetName == "" {
		return validationf(op, "Sheet name cannot be empty")
	}
	return nil
}

// CreateSheetRequest is the input of create_sheet.
type CreateSheetRequest struct {
	SheetTarget
	// Index is the 0-based insert position. Nil or past the end appends.
	Index *int `json:"index,omitempty"`
}

func (r *CreateSheetRequest) Validate() error {
	if err := r.SheetTarget.validate(OpCreateSheet); err != nil {
		return err
	}
	if err := ValidateSheetName(OpCreateSheet, r.SheetName); err != nil {
		return err
	}
	if r.Index != nil && *r.Index < 0 {
		return validationf(OpCreateSheet, "Sheet index cannot be negative: %d", *r.Index)
	}
	return nil
}

// DeleteSheetRequest is the input of delete_sheet.
type DeleteSheetRequest struct {
	SheetTarget
}

func (r *DeleteSheetRequest) Validate() error {
	return r.SheetTarget.validate(OpDeleteSheet)
}

// RenameSheetRequest is the input of rename_sheet.
type RenameSheetRequest struct {
	WorkbookPath string `json:"workbook_path"`
	OldName      string `json:"old_name"`
	NewName      string `json:"new_name"`
}

func (r *RenameSheetRequest) Validate() error {
	p, err := ValidatePath(OpRenameSheet, r.WorkbookPath)
	if err != nil {
		return err
	}
	r.WorkbookPath = p
	if r.OldName == "" {
		return validationf(OpRenameSheet, "Old sheet name cannot be empty")
	}
	return ValidateSheetName(OpRenameSheet, r.NewName)
}

// CopySheetRequest is the input of copy_sheet.
type CopySheetRequest struct {
	WorkbookPath string `json:"workbook_path"`
	SourceSheet  string `json:"source_sheet"`
	NewName      string `json:"new_name"`
}

func (r *CopySheetRequest) Validate() error {
	p, err := ValidatePath(OpCopySheet, r.WorkbookPath)
	if err != nil {
		return err
	}
	r.WorkbookPath = p
	if r.SourceSheet == "" {
		return validationf(OpCopySheet, "Source sheet name cannot be empty")
	}
	return ValidateSheetName(OpCopySheet, r.NewName)
}

// CellTarget names a single cell.
type CellTarget struct {
	SheetTarget
	Cell string `json:"cell"`

	ref CellRef
}

func (t *CellTarget) validate(op string) error {
	if err := t.SheetTarget.validate(op); err != nil {
		return err
	}
	ref, err := ParseCell(t.Cell)
	if err != nil {
		return withOp(op, err)
	}
	t.ref = ref
	t.Cell = ref.String()
	return nil
}

// WriteCellRequest is the input of write_cell. An empty Value clears the cell.
type WriteCellRequest struct {
	CellTarget
	Value models.CellValue `json:"value"`
}

func (r *WriteCellRequest) Validate() error {
	if err := r.CellTarget.validate(OpWriteCell); err != nil {
		return err
	}
	if r.Value.Kind == models.KindFormula {
		f, err := ValidateFormula(OpWriteCell, r.Value.Text)
		if err != nil {
			return err
		}
		r.Value = models.Formula(f)
	}
	return nil
}

// ReadCellRequest is the input of read_cell.
type ReadCellRequest struct {
	CellTarget
}

func (r *ReadCellRequest) Validate() error {
	return r.CellTarget.validate(OpReadCell)
}

// WriteFormulaRequest is the input of write_formula.
type WriteFormulaRequest struct {
	CellTarget
	Formula string `json:"formula"`
}

func (r *WriteFormulaRequest) Validate() error {
	if err := r.CellTarget.validate(OpWriteFormula); err != nil {
		return err
	}
	f, err := ValidateFormula(OpWriteFormula, r.Formula)
	if err != nil {
		return err
	}
	r.Formula = f
	return nil
}

// WriteRangeRequest is the input of write_range. Rows may differ in length;
// an empty value inside Data clears that cell.
type WriteRangeRequest struct {
	SheetTarget
	StartCell string               `json:"start_cell"`
	Data      [][]models.CellValue `json:"data"`

	start CellRef
	rng   RangeRef
}

func (r *WriteRangeRequest) Validate() error {
	if err := r.SheetTarget.validate(OpWriteRange); err != nil {
		return err
	}
	start, err := ParseCell(r.StartCell)
	if err != nil {
		return withOp(OpWriteRange, err)
	}
	r.start = start
	r.StartCell = start.String()

	cols := 0
	for _, row := range r.Data {
		cols = max(cols, len(row))
	}
	if len(r.Data) == 0 || cols == 0 {
		return validationf(OpWriteRange, "Data cannot be empty")
	}
	end := start.Offset(len(r.Data)-1, cols-1)
	if end.Col > excelize.MaxColumns || end.Row > excelize.TotalRows {
		return NewOperationError(OpWriteRange, ErrInvalidReference, nil,
			"Data of %dx%d starting at %s exceeds the sheet bounds", len(r.Data), cols, r.StartCell)
	}
	r.rng = RangeRef{Start: start, End: end}

	for i, row := range r.Data {
		for j, v := range row {
			if v.Kind != models.KindFormula {
				continue
			}
			f, err := ValidateFormula(OpWriteRange, v.Text)
			if err != nil {
				return err
			}
			r.Data[i][j] = models.Formula(f)
		}
	}
	return nil
}

// RangeTarget names a rectangular range.
type RangeTarget struct {
	SheetTarget
	RangeRef string `json:"range_ref"`

	rng RangeRef
}

func (t *RangeTarget) validate(op string) error {
	if err := t.SheetTarget.validate(op); err != nil {
		return err
	}
	rng, err := ParseRange(t.RangeRef)
	if err != nil {
		return withOp(op, err)
	}
	t.rng = rng
	t.RangeRef = rng.String()
	return nil
}

// ReadRangeRequest is the input of read_range.
type ReadRangeRequest struct {
	RangeTarget
}

func (r *ReadRangeRequest) Validate() error {
	return r.RangeTarget.validate(OpReadRange)
}

// FontFormatRequest is the input of format_font. Nil fields are left unchanged.
type FontFormatRequest struct {
	RangeTarget
	FontName  *string  `json:"font_name,omitempty"`
	FontSize  *float64 `json:"font_size,omitempty"`
	Bold      *bool    `json:"bold,omitempty"`
	Italic    *bool    `json:"italic,omitempty"`
	Underline *string  `json:"underline,omitempty"`
	Color     *string  `json:"color,omitempty"`
}

func (r *FontFormatRequest) Validate() error {
	const op = OpFormatFont
	if err := r.RangeTarget.validate(op); err != nil {
		return err
	}
	if r.FontName == nil && r.FontSize == nil && r.Bold == nil && r.Italic == nil &&
		r.Underline == nil && r.Color == nil {
		return validationf(op, "At least one font attribute must be given")
	}
	if r.FontName != nil && strings.TrimSpace(*r.FontName) == "" {
		return validationf(op, "Font name cannot be empty")
	}
	if r.FontSize != nil && (*r.FontSize < MinFontSize || *r.FontSize > MaxFontSize) {
		return validationf(op, "Font size must be between %d and %d, got %v", MinFontSize, MaxFontSize, *r.FontSize)
	}
	if r.Underline != nil {
		if err := oneOf(op, "underline", *r.Underline, UnderlineStyles); err != nil {
			return err
		}
	}
	if r.Color != nil {
		c, err := ValidateColor(op, *r.Color)
		if err != nil {
			return err
		}
		r.Color = &c
	}
	return nil
}

// FillFormatRequest is the input of format_fill.
type FillFormatRequest struct {
	RangeTarget
	Color string `json:"color"`
	// FillType is "solid" (default) or an OOXML pattern name.
	FillType string `json:"fill_type,omitempty"`
}

func (r *FillFormatRequest) Validate() error {
	const op = OpFormatFill
	if err := r.RangeTarget.validate(op); err != nil {
		return err
	}
	c, err := ValidateColor(op, r.Color)
	if err != nil {
		return err
	}
	r.Color = c
	if r.FillType == "" {
		r.FillType = "solid"
	}
	return oneOf(op, "fill_type", r.FillType, FillPatterns)
}

// BorderFormatRequest is the input of format_border. Only the listed sides change.
type BorderFormatRequest struct {
	RangeTarget
	Style string   `json:"style,omitempty"`
	Color *string  `json:"color,omitempty"`
	Sides []string `json:"sides,omitempty"`
}

func (r *BorderFormatRequest) Validate() error {
	const op = OpFormatBorder
	if err := r.RangeTarget.validate(op); err != nil {
		return err
	}
	if r.Style == "" {
		r.Style = "thin"
	}
	if err := oneOf(op, "border style", r.Style, BorderStyles); err != nil {
		return err
	}
	if r.Color != nil {
		c, err := ValidateColor(op, *r.Color)
		if err != nil {
			return err
		}
		r.Color = &c
	}
	if len(r.Sides) == 0 {
		r.Sides = slices.Clone(BorderSides)
	}
	for _, side := range r.Sides {
		if err := oneOf(op, "side", side, BorderSides); err != nil {
			return err
		}
	}
	slices.Sort(r.Sides)
	r.Sides = slices.Compact(r.Sides)
	return nil
}

// AlignmentFormatRequest is the input of format_alignment. Nil fields are left unchanged.
type AlignmentFormatRequest struct {
	RangeTarget
	Horizontal   *string `json:"horizontal,omitempty"`
	Vertical     *string `json:"vertical,omitempty"`
	WrapText     *bool   `json:"wrap_text,omitempty"`
	TextRotation *int    `json:"text_rotation,omitempty"`
}

func (r *AlignmentFormatRequest) Validate() error {
	const op = OpFormatAlignment
	if err := r.RangeTarget.validate(op); err != nil {
		return err
	}
	if r.Horizontal == nil && r.Vertical == nil && r.WrapText == nil && r.TextRotation == nil {
		return validationf(op, "At least one alignment attribute must be given")
	}
	if r.Horizontal != nil {
		if err := oneOf(op, "horizontal alignment", *r.Horizontal, HorizontalAlignments); err != nil {
			return err
		}
	}
	if r.Vertical != nil {
		if err := oneOf(op, "vertical alignment", *r.Vertical, VerticalAlignments); err != nil {
			return err
		}
	}
	if r.TextRotation != nil && (*r.TextRotation < 0 || *r.TextRotation > MaxTextRotation) {
		return validationf(op, "Text rotation must be between 0 and %d, got %d", MaxTextRotation, *r.TextRotation)
	}
	return nil
}

// NumberFormatRequest is the input of format_number.
type NumberFormatRequest struct {
	RangeTarget
	// FormatString is an Excel number format code, e.g. "0.00" or "yyyy-mm-dd".
	FormatString string `json:"format_string"`
}

func (r *NumberFormatRequest) Validate() error {
	if err := r.RangeTarget.validate(OpFormatNumber); err != nil {
		return err
	}
	if strings.TrimSpace(r.FormatString) == "" {
		return validationf(OpFormatNumber, "Number format cannot be empty")
	}
	if len(r.FormatString) > 255 {
		return validationf(OpFormatNumber, "Number format exceeds 255 characters")
	}
	return nil
}

// withOp stamps op on an OperationError created without one.
func withOp(op string, err error) error {
	if oe, ok := err.(*OperationError); ok && oe.Op == "" {
		oe.Op = op
	}
	return err
}

// checkRangeSize enforces Options.MaxRangeCells.
func (s *Service) checkRangeSize(op string, rng RangeRef) error {
	if limit := s.opts.maxRangeCells(); rng.Cells() > limit {
		return validationf(op, "Range %s covers %d cells, more than the limit of %d", rng, rng.Cells(), limit)
	}
	return nil
}
