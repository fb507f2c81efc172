package excelmcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Service performs spreadsheet operations. Each call opens the workbook,
// applies one change or query and releases the file before returning.
// A Service is safe for concurrent use.
type Service struct {
	opts   Options
	locks  *pathLocks
	logger *slog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	return &Service{
		opts:   opts,
		locks:  newPathLocks(),
		logger: opts.logger(),
	}
}

// Options returns the options the service was created with.
func (s *Service) Options() Options {
	return s.opts
}

// withWorkbook opens path, runs fn and, when write is set, saves the
// workbook back in place. The path lock is held for the whole sequence.
func (s *Service) withWorkbook(ctx context.Context, op, path string, write bool, fn func(f *excelize.File) error) error {
	unlock := s.locks.acquire(path, write)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return NewOperationError(op, errInternal, err, "Operation %s cancelled: %v", op, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return ioError(op, path, statErr)
		}
		return NewOperationError(op, ErrValidation, err, "Invalid Excel file %s: %v", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Debug("close workbook", "path", path, "error", cerr)
		}
	}()

	if err := fn(f); err != nil {
		return err
	}
	if !write {
		return nil
	}
	return s.save(op, f, path)
}

// save writes the workbook to a temporary file next to path and renames it
// over the target, so readers never observe a partially written file.
func (s *Service) save(op string, f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioError(op, dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		cleanup()
		return NewOperationError(op, errInternal, err, "Failed to save workbook %s: %v", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return ioError(op, path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return ioError(op, path, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return ioError(op, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return ioError(op, path, err)
	}
	s.logger.Debug("workbook saved", "op", op, "path", path)
	return nil
}

// requireSheet fails with ErrSheetNotFound, listing the sheets that do exist.
func requireSheet(op string, f *excelize.File, name string) error {
	sheets := f.GetSheetList()
	if slices.Contains(sheets, name) {
		return nil
	}
	return NewOperationError(op, ErrSheetNotFound, nil,
		"Sheet '%s' not found. Available sheets: %s", name, formatSheetList(sheets))
}

// findSheet returns the existing sheet whose name matches case-insensitively,
// the way Excel compares sheet names.
func findSheet(f *excelize.File, name string) (string, bool) {
	for _, sheet := range f.GetSheetList() {
		if strings.EqualFold(sheet, name) {
			return sheet, true
		}
	}
	return "", false
}

func sheetIndex(f *excelize.File, name string) int {
	return slices.Index(f.GetSheetList(), name)
}

func formatSheetList(sheets []string) string {
	quoted := make([]string, len(sheets))
	for i, s := range sheets {
		quoted[i] = fmt.Sprintf("'%s'", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func humanOp(op string) string {
	return strings.ReplaceAll(op, "_", " ")
}
