package models

// CellResult is returned by write_cell, read_cell and write_formula.
type CellResult struct {
	Envelope
	Cell  string    `json:"cell,omitempty"`
	Value CellValue `json:"value"`
	// Type is the variant name of Value: empty, string, number, boolean or formula.
	Type string `json:"type,omitempty"`
	// CalculatedValue is the best-effort result of a formula. It is omitted
	// when the value could not be computed.
	CalculatedValue *string `json:"calculated_value,omitempty"`
}

// RangeResult is returned by write_range and read_range.
type RangeResult struct {
	Envelope
	Range string        `json:"range,omitempty"`
	Rows  int           `json:"rows"`
	Cols  int           `json:"cols"`
	Data  [][]CellValue `json:"data,omitempty"`
}

// FormatResult is returned by the format_* operations.
type FormatResult struct {
	Envelope
	Range string `json:"range,omitempty"`
	// Cells is the number of cells restyled.
	Cells int `json:"cells"`
}
