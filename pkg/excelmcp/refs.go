package excelmcp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellRefRe matches a cell reference like A1, XFD1048576
var cellRefRe = regexp.MustCompile(`^([A-Z]{1,3})([0-9]+)$`)

// CellRef is a 1-based column/row address.
type CellRef struct {
	Col int
	Row int
}

// String returns the A1 form of the reference.
func (c CellRef) String() string {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return ""
	}
	return name
}

// Offset returns the reference moved by dr rows and dc columns.
func (c CellRef) Offset(dr, dc int) CellRef {
	return CellRef{Col: c.Col + dc, Row: c.Row + dr}
}

// RangeRef is an inclusive rectangle with Start at the top-left.
type RangeRef struct {
	Start CellRef
	End   CellRef
}

// Rows returns the number of rows spanned by the range.
func (r RangeRef) Rows() int { return r.End.Row - r.Start.Row + 1 }

// Cols returns the number of columns spanned by the range.
func (r RangeRef) Cols() int { return r.End.Col - r.Start.Col + 1 }

// Cells returns the number of cells in the range.
func (r RangeRef) Cells() int { return r.Rows() * r.Cols() }

func (r RangeRef) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Each calls fn for every cell in row-major order, stopping at the first error.
func (r RangeRef) Each(fn func(ref CellRef) error) error {
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if err := fn(CellRef{Col: col, Row: row}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseCell parses a cell reference such as "b10". Lowercase input is
// normalized to uppercase; absolute markers ($) are not accepted.
func ParseCell(s string) (CellRef, error) {
	ref := strings.ToUpper(strings.TrimSpace(s))
	m := cellRefRe.FindStringSubmatch(ref)
	if m == nil {
		return CellRef{}, invalidRef("Invalid cell reference: %q. Expected format like 'A1' or 'B10'", s)
	}
	col, err := excelize.ColumnNameToNumber(m[1])
	if err != nil {
		return CellRef{}, invalidRef("Column %s in %q exceeds the maximum column %s", m[1], s, maxColumnName())
	}
	row, err := strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return CellRef{}, invalidRef("Invalid row number in cell reference %q", s)
	}
	if row > excelize.TotalRows {
		return CellRef{}, invalidRef("Row number %d exceeds the maximum (%d)", row, excelize.TotalRows)
	}
	return CellRef{Col: col, Row: row}, nil
}

// ParseRange parses a range reference such as "A1:D10". The start must not
// sort after the end in either dimension.
func ParseRange(s string) (RangeRef, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || strings.Contains(to, ":") {
		return RangeRef{}, invalidRef("Invalid range reference: %q. Expected format like 'A1:B10'", s)
	}
	start, err := ParseCell(from)
	if err != nil {
		return RangeRef{}, err
	}
	end, err := ParseCell(to)
	if err != nil {
		return RangeRef{}, err
	}
	if start.Row > end.Row || start.Col > end.Col {
		return RangeRef{}, invalidRef("Invalid range %q: start cell %s must be above and left of end cell %s",
			s, start, end)
	}
	return RangeRef{Start: start, End: end}, nil
}

func invalidRef(format string, args ...any) error {
	return &OperationError{Kind: ErrInvalidReference, Msg: fmt.Sprintf(format, args...)}
}

func maxColumnName() string {
	name, _ := excelize.ColumnNumberToName(excelize.MaxColumns)
	return name
}
