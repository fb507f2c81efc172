package excelmcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newTestService returns a service jailed to a fresh temp dir.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.BaseDir = dir
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(opts), dir
}

// newWorkbook creates name inside dir through the service and returns its path.
func newWorkbook(t *testing.T, svc *Service, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	_, err := svc.CreateWorkbook(context.Background(), CreateWorkbookRequest{FilePath: path})
	require.NoError(t, err)
	return path
}

// openWorkbook opens path directly with excelize for assertions.
func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// cellStyle returns the resolved style of a cell.
func cellStyle(t *testing.T, path, sheet, cell string) *excelize.Style {
	t.Helper()
	f := openWorkbook(t, path)
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	return st
}

func sheetTarget(path, sheet string) SheetTarget {
	return SheetTarget{WorkbookPath: path, SheetName: sheet}
}

func cellTarget(path, sheet, cell string) CellTarget {
	return CellTarget{SheetTarget: sheetTarget(path, sheet), Cell: cell}
}

func rangeTarget(path, sheet, rng string) RangeTarget {
	return RangeTarget{SheetTarget: sheetTarget(path, sheet), RangeRef: rng}
}

func ptr[T any](v T) *T { return &v }
