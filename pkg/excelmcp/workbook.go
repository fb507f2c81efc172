package excelmcp

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp/parser"
)

// CreateWorkbook creates a new workbook with a single sheet. It never
// overwrites an existing file.
func (s *Service) CreateWorkbook(ctx context.Context, req CreateWorkbookRequest) (models.WorkbookResult, error) {
	const op = OpCreateWorkbook
	if err := req.Validate(); err != nil {
		return models.WorkbookResult{}, err
	}
	if err := s.checkPath(op, req.FilePath, false); err != nil {
		return models.WorkbookResult{}, err
	}

	unlock := s.locks.acquire(req.FilePath, true)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return models.WorkbookResult{}, NewOperationError(op, errInternal, err, "Operation %s cancelled: %v", op, err)
	}

	if _, err := os.Lstat(req.FilePath); err == nil {
		return models.WorkbookResult{}, NewOperationError(op, ErrAlreadyExists, nil, "File already exists: %s", req.FilePath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return models.WorkbookResult{}, ioError(op, req.FilePath, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if req.SheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, req.SheetName); err != nil {
			return models.WorkbookResult{}, NewOperationError(op, errInternal, err, "Failed to create workbook: %v", err)
		}
	}
	if err := s.save(op, f, req.FilePath); err != nil {
		return models.WorkbookResult{}, err
	}

	return models.WorkbookResult{
		Envelope: models.Succeeded("Workbook created successfully"),
		FilePath: req.FilePath,
	}, nil
}

// WorkbookInfo reports the sheets of a workbook along with per-sheet
// visibility, used range and print areas.
func (s *Service) WorkbookInfo(ctx context.Context, req WorkbookInfoRequest) (models.WorkbookInfo, error) {
	const op = OpWorkbookInfo
	if err := req.Validate(); err != nil {
		return models.WorkbookInfo{}, err
	}
	if err := s.checkPath(op, req.FilePath, true); err != nil {
		return models.WorkbookInfo{}, err
	}

	var info models.WorkbookInfo
	err := s.withWorkbook(ctx, op, req.FilePath, false, func(f *excelize.File) error {
		sheets := f.GetSheetList()
		printAreas := parser.ExtractPrintAreas(f)

		details := make([]models.SheetInfo, 0, len(sheets))
		for i, name := range sheets {
			detail := models.SheetInfo{Name: name, Index: i, Visible: true}
			if visible, err := f.GetSheetVisible(name); err == nil {
				detail.Visible = visible
			}
			// A sheet whose rows cannot be read is reported without a used range.
			if b, ok, err := parser.UsedRange(f, name); err != nil {
				s.logger.Debug("used range", "path", req.FilePath, "sheet", name, "error", err)
			} else if ok {
				detail.UsedRange = b.A1()
				detail.Rows = b.Rows()
				detail.Cols = b.Cols()
			}
			for _, area := range printAreas[name] {
				detail.PrintAreas = append(detail.PrintAreas, area.A1())
			}
			details = append(details, detail)
		}

		info = models.WorkbookInfo{
			Envelope:   models.Succeeded("Workbook information retrieved"),
			FilePath:   req.FilePath,
			Sheets:     sheets,
			SheetCount: len(sheets),
			Details:    details,
		}
		if active := f.GetSheetName(f.GetActiveSheetIndex()); active != "" {
			info.ActiveSheet = active
		}
		return nil
	})
	if err != nil {
		return models.WorkbookInfo{}, err
	}

	stat, err := os.Stat(req.FilePath)
	if err != nil {
		return models.WorkbookInfo{}, ioError(op, req.FilePath, err)
	}
	info.FileSize = stat.Size()
	return info, nil
}

// ListSheets returns the sheet names of a workbook in order.
func (s *Service) ListSheets(ctx context.Context, req ListSheetsRequest) (models.SheetList, error) {
	const op = OpListSheets
	if err := req.Validate(); err != nil {
		return models.SheetList{}, err
	}
	if err := s.checkPath(op, req.FilePath, true); err != nil {
		return models.SheetList{}, err
	}

	var sheets []string
	err := s.withWorkbook(ctx, op, req.FilePath, false, func(f *excelize.File) error {
		sheets = f.GetSheetList()
		return nil
	})
	if err != nil {
		return models.SheetList{}, err
	}
	return models.SheetList{
		Envelope: models.Succeeded("Sheets listed successfully"),
		Sheets:   sheets,
		Count:    len(sheets),
	}, nil
}
