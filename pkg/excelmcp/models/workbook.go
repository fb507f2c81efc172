package models

// WorkbookResult is returned by create_workbook.
type WorkbookResult struct {
	Envelope
	// FilePath is the path of the workbook as given by the caller.
	FilePath string `json:"file_path,omitempty"`
}

// WorkbookInfo is returned by get_workbook_info.
type WorkbookInfo struct {
	Envelope
	// FilePath is the path of the workbook as given by the caller.
	FilePath string `json:"file_path,omitempty"`
	// Sheets lists sheet names in workbook order.
	Sheets []string `json:"sheets"`
	// SheetCount is len(Sheets).
	SheetCount int `json:"sheet_count"`
	// FileSize is the size of the workbook on disk, in bytes.
	FileSize int64 `json:"file_size"`
	// ActiveSheet is the name of the sheet selected when the file opens.
	ActiveSheet string `json:"active_sheet,omitempty"`
	// Details holds per-sheet metadata in workbook order.
	Details []SheetInfo `json:"details,omitempty"`
}
