package models

// SheetInfo describes a single sheet inside WorkbookInfo.
type SheetInfo struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Index is the 0-based position in the workbook.
	Index int `json:"index"`
	// Visible is false for hidden sheets.
	Visible bool `json:"visible"`
	// UsedRange is the bounding box of non-empty cells (e.g. "A1:D10"), empty for a blank sheet.
	UsedRange string `json:"used_range,omitempty"`
	// Rows and Cols are the dimensions of UsedRange.
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	// PrintAreas contains user-defined print areas in A1:B2 form.
	PrintAreas []string `json:"print_areas,omitempty"`
}

// SheetList is returned by list_sheets.
type SheetList struct {
	Envelope
	Sheets []string `json:"sheets"`
	Count  int      `json:"count"`
}

// SheetResult is returned by the sheet management operations.
type SheetResult struct {
	Envelope
	SheetName string `json:"sheet_name,omitempty"`
	// Index is the 0-based position of the sheet after the operation, when it still exists.
	Index *int `json:"index,omitempty"`
}
