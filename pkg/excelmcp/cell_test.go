package excelmcp

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

// --- write_cell / read_cell ---

func TestWriteCell_RoundTrip(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	tests := []struct {
		cell  string
		value models.CellValue
		typ   string
	}{
		{"A1", models.Text("hello"), "string"},
		{"B2", models.Text("123"), "string"},
		{"C3", models.Text(""), "string"},
		{"D4", models.Number(10.99), "number"},
		{"E5", models.Number(-42), "number"},
		{"F6", models.Number(1e-7), "number"},
		{"G7", models.Bool(true), "boolean"},
		{"H8", models.Bool(false), "boolean"},
		{"XFD1048576", models.Text("corner"), "string"},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			w, err := svc.WriteCell(ctx, WriteCellRequest{CellTarget: cellTarget(path, "Sheet1", tt.cell), Value: tt.value})
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("Value written to %s", tt.cell), w.Message)

			r, err := svc.ReadCell(ctx, ReadCellRequest{CellTarget: cellTarget(path, "Sheet1", tt.cell)})
			require.NoError(t, err)
			assert.Equal(t, tt.typ, r.Type)
			assert.Equal(t, tt.value, r.Value)
			assert.Nil(t, r.CalculatedValue)
		})
	}
}

func TestWriteCell_NormalizesReference(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")

	res, err := svc.WriteCell(context.Background(), WriteCellRequest{CellTarget: cellTarget(path, "Sheet1", "b10"), Value: models.Number(1)})
	require.NoError(t, err)
	assert.Equal(t, "B10", res.Cell)
	assert.Equal(t, "number", res.Type)
}

func TestWriteCell_NullClears(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()
	target := cellTarget(path, "Sheet1", "A1")

	_, err := svc.WriteCell(ctx, WriteCellRequest{CellTarget: target, Value: models.Formula("=1+1")})
	require.NoError(t, err)
	_, err = svc.WriteCell(ctx, WriteCellRequest{CellTarget: target, Value: models.Empty()})
	require.NoError(t, err)

	r, err := svc.ReadCell(ctx, ReadCellRequest{CellTarget: target})
	require.NoError(t, err)
	assert.True(t, r.Value.IsEmpty())
	assert.Equal(t, "empty", r.Type)
}

func TestWriteCell_ReplacesFormula(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()
	target := cellTarget(path, "Sheet1", "A1")

	_, err := svc.WriteFormula(ctx, WriteFormulaRequest{CellTarget: target, Formula: "=2*3"})
	require.NoError(t, err)
	_, err = svc.WriteCell(ctx, WriteCellRequest{CellTarget: target, Value: models.Number(5)})
	require.NoError(t, err)

	r, err := svc.ReadCell(ctx, ReadCellRequest{CellTarget: target})
	require.NoError(t, err)
	assert.Equal(t, models.Number(5), r.Value)
}

func TestWriteCell_Errors(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	_, err := svc.WriteCell(ctx, WriteCellRequest{CellTarget: cellTarget(path, "Sheet1", "1A"), Value: models.Number(1)})
	assert.ErrorIs(t, err, ErrInvalidReference)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpWriteCell, opErr.Op)

	_, err = svc.WriteCell(ctx, WriteCellRequest{CellTarget: cellTarget(path, "Data", "A1"), Value: models.Number(1)})
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.Equal(t, "Sheet 'Data' not found. Available sheets: ['Sheet1']", err.Error())

	_, err = svc.WriteCell(ctx, WriteCellRequest{CellTarget: cellTarget(path, "Sheet1", "A1"), Value: models.Formula("=CALL(1)")})
	assert.ErrorIs(t, err, ErrFormula)

	_, err = svc.ReadCell(ctx, ReadCellRequest{CellTarget: cellTarget(filepath.Join(dir, "none.xlsx"), "Sheet1", "A1")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrSheetNotFound)
}

// --- write_formula ---

func TestWriteFormula_ReadBack(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	_, err := svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Sheet1"),
		StartCell:   "B2",
		Data:        [][]models.CellValue{{models.Number(4), models.Number(2.5)}},
	})
	require.NoError(t, err)

	w, err := svc.WriteFormula(ctx, WriteFormulaRequest{CellTarget: cellTarget(path, "Sheet1", "D2"), Formula: "=B2*C2"})
	require.NoError(t, err)
	assert.Equal(t, "Formula written to D2", w.Message)
	assert.Equal(t, models.Formula("=B2*C2"), w.Value)
	require.NotNil(t, w.CalculatedValue)
	assert.Equal(t, "10", *w.CalculatedValue)

	r, err := svc.ReadCell(ctx, ReadCellRequest{CellTarget: cellTarget(path, "Sheet1", "D2")})
	require.NoError(t, err)
	assert.Equal(t, "formula", r.Type)
	assert.Equal(t, "=B2*C2", r.Value.Text)
	require.NotNil(t, r.CalculatedValue)
	assert.Equal(t, "10", *r.CalculatedValue)
}

func TestWriteFormula_AddsEquals(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")

	w, err := svc.WriteFormula(context.Background(), WriteFormulaRequest{CellTarget: cellTarget(path, "Sheet1", "A1"), Formula: "SUM(1,2)"})
	require.NoError(t, err)
	assert.Equal(t, "=SUM(1,2)", w.Value.Text)
}

func TestWriteFormula_EvaluationDisabled(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.EvaluateFormulas = ptr(false)
	svc := New(opts)
	path := newWorkbook(t, svc, dir, "t.xlsx")

	w, err := svc.WriteFormula(context.Background(), WriteFormulaRequest{CellTarget: cellTarget(path, "Sheet1", "A1"), Formula: "=1+1"})
	require.NoError(t, err)
	assert.Nil(t, w.CalculatedValue)
}

func TestWriteFormula_Rejected(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")

	for _, formula := range []string{"", "=", "=REGISTER.ID(\"a\",\"b\")", "=EXEC(\"rm\")"} {
		_, err := svc.WriteFormula(context.Background(), WriteFormulaRequest{CellTarget: cellTarget(path, "Sheet1", "A1"), Formula: formula})
		require.Error(t, err, formula)
		assert.Equal(t, "formula_error", Code(err))
	}
}

// --- write_range / read_range ---

func TestRange_RoundTrip(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	data := [][]models.CellValue{
		{models.Text("id"), models.Text("name"), models.Text("active")},
		{models.Number(1), models.Text("alpha"), models.Bool(true)},
		{models.Number(2), models.Text("beta"), models.Bool(false)},
		{models.Number(3.25), models.Text("gamma"), models.Bool(true)},
	}
	w, err := svc.WriteRange(ctx, WriteRangeRequest{SheetTarget: sheetTarget(path, "Sheet1"), StartCell: "c5", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "Data written to range starting at C5", w.Message)
	assert.Equal(t, "C5:E8", w.Range)
	assert.Equal(t, 4, w.Rows)
	assert.Equal(t, 3, w.Cols)

	r, err := svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Sheet1", "C5:E8")})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rows)
	assert.Equal(t, 3, r.Cols)
	assert.Equal(t, data, r.Data)
}

func TestRange_Scenario(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	_, err := svc.CreateSheet(ctx, CreateSheetRequest{SheetTarget: sheetTarget(path, "Data")})
	require.NoError(t, err)
	_, err = svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Data"),
		StartCell:   "A1",
		Data: [][]models.CellValue{
			{models.Text("Product"), models.Text("Price")},
			{models.Text("Widget"), models.Number(10.99)},
		},
	})
	require.NoError(t, err)

	r, err := svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Data", "A1:B2")})
	require.NoError(t, err)
	assert.Equal(t, [][]models.CellValue{
		{models.Text("Product"), models.Text("Price")},
		{models.Text("Widget"), models.Number(10.99)},
	}, r.Data)
}

func TestWriteRange_RaggedAndNull(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	// Pre-fill so both the null clear and the ragged padding are visible.
	_, err := svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Sheet1"),
		StartCell:   "A1",
		Data: [][]models.CellValue{
			{models.Text("x"), models.Text("x"), models.Text("x")},
			{models.Text("x"), models.Text("x"), models.Text("x")},
		},
	})
	require.NoError(t, err)

	w, err := svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Sheet1"),
		StartCell:   "A1",
		Data: [][]models.CellValue{
			{models.Number(1), models.Empty(), models.Number(3)},
			{models.Number(4)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, w.Rows)
	assert.Equal(t, 3, w.Cols)

	r, err := svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Sheet1", "A1:C2")})
	require.NoError(t, err)
	assert.Equal(t, [][]models.CellValue{
		{models.Number(1), models.Empty(), models.Number(3)},
		{models.Number(4), models.Text("x"), models.Text("x")},
	}, r.Data)
}

func TestWriteRange_Invalid(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	_, err := svc.WriteRange(ctx, WriteRangeRequest{SheetTarget: sheetTarget(path, "Sheet1"), StartCell: "A1"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Data cannot be empty")

	_, err = svc.WriteRange(ctx, WriteRangeRequest{SheetTarget: sheetTarget(path, "Sheet1"), StartCell: "A1", Data: [][]models.CellValue{{}, {}}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Sheet1"),
		StartCell:   "XFD1",
		Data:        [][]models.CellValue{{models.Number(1), models.Number(2)}},
	})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Sheet1"),
		StartCell:   "A1",
		Data:        [][]models.CellValue{{models.Formula("=CALL(1)")}},
	})
	assert.ErrorIs(t, err, ErrFormula)
}

func TestReadRange_ReportsFormulaText(t *testing.T) {
	svc, dir := newTestService(t)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	_, err := svc.WriteRange(ctx, WriteRangeRequest{
		SheetTarget: sheetTarget(path, "Sheet1"),
		StartCell:   "A1",
		Data:        [][]models.CellValue{{models.Number(2), models.Formula("=A1*2")}},
	})
	require.NoError(t, err)

	r, err := svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Sheet1", "A1:C1")})
	require.NoError(t, err)
	assert.Equal(t, [][]models.CellValue{{models.Number(2), models.Formula("=A1*2"), models.Empty()}}, r.Data)
}

func TestReadRange_Limits(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.MaxRangeCells = 10
	svc := New(opts)
	path := newWorkbook(t, svc, dir, "t.xlsx")
	ctx := context.Background()

	_, err := svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Sheet1", "A1:B5")})
	assert.NoError(t, err)

	_, err = svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Sheet1", "A1:B6")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "more than the limit of 10")

	_, err = svc.ReadRange(ctx, ReadRangeRequest{RangeTarget: rangeTarget(path, "Sheet1", "B10:A1")})
	assert.ErrorIs(t, err, ErrInvalidReference)
}
