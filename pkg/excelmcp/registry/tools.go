package registry

import (
	"github.com/mort-lab/excel-mcp/pkg/excelmcp"
)

func definitions(svc *excelmcp.Service) []*Tool {
	return []*Tool{
		{
			Name:        excelmcp.OpCreateWorkbook,
			Description: "Create a new .xlsx workbook. Fails if the file already exists.",
			Params: []Param{
				filePath,
				{Name: "sheet_name", Type: TypeString, Description: "Name of the first sheet", Default: excelmcp.DefaultSheetName},
			},
			handler: bind(excelmcp.OpCreateWorkbook, svc.CreateWorkbook),
		},
		{
			Name:        excelmcp.OpWorkbookInfo,
			Description: "Describe a workbook: sheets with visibility, used range and print areas, active sheet and file size.",
			Params:      []Param{filePath},
			ReadOnly:    true,
			handler:     bind(excelmcp.OpWorkbookInfo, svc.WorkbookInfo),
		},
		{
			Name:        excelmcp.OpListSheets,
			Description: "List the sheet names of a workbook in tab order.",
			Params:      []Param{filePath},
			ReadOnly:    true,
			handler:     bind(excelmcp.OpListSheets, svc.ListSheets),
		},
		{
			Name:        excelmcp.OpCreateSheet,
			Description: "Add a sheet, appended or inserted at a 0-based position.",
			Params: []Param{
				workbookPath, sheetName,
				{Name: "index", Type: TypeInteger, Description: "0-based position; appended when omitted or past the end", Min: float(0)},
			},
			handler: bind(excelmcp.OpCreateSheet, svc.CreateSheet),
		},
		{
			Name:        excelmcp.OpDeleteSheet,
			Description: "Delete a sheet. The last remaining sheet cannot be deleted.",
			Params:      []Param{workbookPath, sheetName},
			Destructive: true,
			handler:     bind(excelmcp.OpDeleteSheet, svc.DeleteSheet),
		},
		{
			Name:        excelmcp.OpRenameSheet,
			Description: "Rename a sheet.",
			Params: []Param{
				workbookPath,
				{Name: "old_name", Type: TypeString, Description: "Current sheet name", Required: true},
				{Name: "new_name", Type: TypeString, Description: "New sheet name", Required: true},
			},
			handler: bind(excelmcp.OpRenameSheet, svc.RenameSheet),
		},
		{
			Name:        excelmcp.OpCopySheet,
			Description: "Copy a sheet's cells and styles to a new sheet appended at the end.",
			Params: []Param{
				workbookPath,
				{Name: "source_sheet", Type: TypeString, Description: "Sheet to copy", Required: true},
				{Name: "new_name", Type: TypeString, Description: "Name of the copy", Required: true},
			},
			handler: bind(excelmcp.OpCopySheet, svc.CopySheet),
		},
		{
			Name:        excelmcp.OpWriteCell,
			Description: "Write a value to one cell. Strings starting with '=' are stored as formulas; null clears the cell.",
			Params: []Param{
				workbookPath, sheetName, cell,
				{Name: "value", Type: TypeScalar, Description: "String, number, boolean or null", Required: true},
			},
			Destructive: true,
			handler:     bind(excelmcp.OpWriteCell, svc.WriteCell),
		},
		{
			Name:        excelmcp.OpReadCell,
			Description: "Read one cell. Formula cells return the formula and, when available, the calculated value.",
			Params:      []Param{workbookPath, sheetName, cell},
			ReadOnly:    true,
			handler:     bind(excelmcp.OpReadCell, svc.ReadCell),
		},
		{
			Name:        excelmcp.OpWriteRange,
			Description: "Write a 2D array of values starting at a cell. Rows may be ragged (nothing is written past a short row); null entries clear their cell.",
			Params: []Param{
				workbookPath, sheetName,
				{Name: "start_cell", Type: TypeString, Description: "Top-left cell, e.g. A1", Required: true},
				{
					Name: "data", Type: TypeArray, Description: "Rows of values", Required: true,
					Items: map[string]any{
						"type":  "array",
						"items": map[string]any{"type": []string{"string", "number", "boolean", "null"}},
					},
				},
			},
			Destructive: true,
			handler:     bind(excelmcp.OpWriteRange, svc.WriteRange),
		},
		{
			Name:        excelmcp.OpReadRange,
			Description: "Read a rectangular range as a 2D array. Empty cells are null.",
			Params:      []Param{workbookPath, sheetName, rangeRef},
			ReadOnly:    true,
			handler:     bind(excelmcp.OpReadRange, svc.ReadRange),
		},
		{
			Name:        excelmcp.OpWriteFormula,
			Description: "Write a formula to a cell. The formula must start with '='.",
			Params: []Param{
				workbookPath, sheetName, cell,
				{Name: "formula", Type: TypeString, Description: "Formula text, e.g. =SUM(A1:A10)", Required: true},
			},
			Destructive: true,
			handler:     bind(excelmcp.OpWriteFormula, svc.WriteFormula),
		},
		{
			Name:        excelmcp.OpFormatFont,
			Description: "Set font attributes on every cell of a range. Unspecified attributes are kept.",
			Params: []Param{
				workbookPath, sheetName, rangeRef,
				{Name: "font_name", Type: TypeString, Description: "Font family, e.g. Calibri"},
				{Name: "font_size", Type: TypeNumber, Description: "Point size", Min: float(excelmcp.MinFontSize), Max: float(excelmcp.MaxFontSize)},
				{Name: "bold", Type: TypeBoolean},
				{Name: "italic", Type: TypeBoolean},
				{Name: "underline", Type: TypeString, Enum: excelmcp.UnderlineStyles},
				color("Font color as RRGGBB"),
			},
			handler: bind(excelmcp.OpFormatFont, svc.FormatFont),
		},
		{
			Name:        excelmcp.OpFormatFill,
			Description: "Set the background fill of every cell of a range.",
			Params: []Param{
				workbookPath, sheetName, rangeRef,
				required(color("Fill color as RRGGBB")),
				{Name: "fill_type", Type: TypeString, Description: "Pattern type", Enum: excelmcp.FillPatterns, Default: "solid"},
			},
			handler: bind(excelmcp.OpFormatFill, svc.FormatFill),
		},
		{
			Name:        excelmcp.OpFormatBorder,
			Description: "Set borders on the chosen sides of every cell of a range. Style none removes them.",
			Params: []Param{
				workbookPath, sheetName, rangeRef,
				{Name: "style", Type: TypeString, Enum: excelmcp.BorderStyles, Default: "thin"},
				color("Border color as RRGGBB, black by default"),
				{
					Name: "sides", Type: TypeArray, Description: "Sides to set, all four by default",
					Items: map[string]any{"type": "string", "enum": excelmcp.BorderSides},
				},
			},
			handler: bind(excelmcp.OpFormatBorder, svc.FormatBorder),
		},
		{
			Name:        excelmcp.OpFormatAlignment,
			Description: "Set alignment, wrapping and rotation on every cell of a range.",
			Params: []Param{
				workbookPath, sheetName, rangeRef,
				{Name: "horizontal", Type: TypeString, Enum: excelmcp.HorizontalAlignments},
				{Name: "vertical", Type: TypeString, Enum: excelmcp.VerticalAlignments},
				{Name: "wrap_text", Type: TypeBoolean},
				{Name: "text_rotation", Type: TypeInteger, Description: "Degrees", Min: float(0), Max: float(excelmcp.MaxTextRotation)},
			},
			handler: bind(excelmcp.OpFormatAlignment, svc.FormatAlignment),
		},
		{
			Name:        excelmcp.OpFormatNumber,
			Description: "Apply a number format code, e.g. #,##0.00 or yyyy-mm-dd, to every cell of a range.",
			Params: []Param{
				workbookPath, sheetName, rangeRef,
				{Name: "format_string", Type: TypeString, Description: "Excel number format code", Required: true},
			},
			handler: bind(excelmcp.OpFormatNumber, svc.FormatNumber),
		},
	}
}

var (
	filePath     = Param{Name: "file_path", Type: TypeString, Description: "Path to the .xlsx file", Required: true}
	workbookPath = Param{Name: "workbook_path", Type: TypeString, Description: "Path to the .xlsx file", Required: true}
	sheetName    = Param{Name: "sheet_name", Type: TypeString, Description: "Sheet name", Required: true}
	cell         = Param{Name: "cell", Type: TypeString, Description: "Cell reference, e.g. B2", Required: true}
	rangeRef     = Param{Name: "range_ref", Type: TypeString, Description: "Range reference, e.g. A1:C10", Required: true}
)

func color(desc string) Param {
	return Param{Name: "color", Type: TypeString, Description: desc}
}

func required(p Param) Param {
	p.Required = true
	return p
}

func float(v float64) *float64 { return &v }
