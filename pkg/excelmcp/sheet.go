package excelmcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

// CreateSheet adds a sheet, appending it unless an in-range index is given.
func (s *Service) CreateSheet(ctx context.Context, req CreateSheetRequest) (models.SheetResult, error) {
	const op = OpCreateSheet
	if err := req.Validate(); err != nil {
		return models.SheetResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.SheetResult{}, err
	}

	var index int
	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if existing, ok := findSheet(f, req.SheetName); ok {
			return NewOperationError(op, ErrAlreadyExists, nil, "Sheet '%s' already exists", existing)
		}
		before := f.GetSheetList()
		if _, err := f.NewSheet(req.SheetName); err != nil {
			return NewOperationError(op, errInternal, err, "Failed to create sheet: %v", err)
		}
		if req.Index != nil && *req.Index < len(before) {
			if err := f.MoveSheet(req.SheetName, before[*req.Index]); err != nil {
				return NewOperationError(op, errInternal, err, "Failed to create sheet: %v", err)
			}
		}
		index = sheetIndex(f, req.SheetName)
		return nil
	})
	if err != nil {
		return models.SheetResult{}, err
	}
	return models.SheetResult{
		Envelope:  models.Succeeded(fmt.Sprintf("Sheet '%s' created successfully", req.SheetName)),
		SheetName: req.SheetName,
		Index:     &index,
	}, nil
}

// DeleteSheet removes a sheet. The last remaining sheet cannot be deleted.
func (s *Service) DeleteSheet(ctx context.Context, req DeleteSheetRequest) (models.SheetResult, error) {
	const op = OpDeleteSheet
	if err := req.Validate(); err != nil {
		return models.SheetResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.SheetResult{}, err
	}

	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SheetName); err != nil {
			return err
		}
		if f.SheetCount <= 1 {
			return NewOperationError(op, ErrInvariant, nil, "Cannot delete the last sheet in the workbook")
		}
		if err := f.DeleteSheet(req.SheetName); err != nil {
			return NewOperationError(op, errInternal, err, "Failed to delete sheet: %v", err)
		}
		return nil
	})
	if err != nil {
		return models.SheetResult{}, err
	}
	return models.SheetResult{
		Envelope:  models.Succeeded(fmt.Sprintf("Sheet '%s' deleted successfully", req.SheetName)),
		SheetName: req.SheetName,
	}, nil
}

// RenameSheet renames a sheet. Changing only the letter case of a name is allowed.
func (s *Service) RenameSheet(ctx context.Context, req RenameSheetRequest) (models.SheetResult, error) {
	const op = OpRenameSheet
	if err := req.Validate(); err != nil {
		return models.SheetResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.SheetResult{}, err
	}

	var index int
	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.OldName); err != nil {
			return err
		}
		if req.NewName == req.OldName {
			return NewOperationError(op, ErrAlreadyExists, nil, "Sheet '%s' already exists", req.NewName)
		}
		if existing, ok := findSheet(f, req.NewName); ok && !strings.EqualFold(existing, req.OldName) {
			return NewOperationError(op, ErrAlreadyExists, nil, "Sheet '%s' already exists", existing)
		}
		if err := f.SetSheetName(req.OldName, req.NewName); err != nil {
			return NewOperationError(op, errInternal, err, "Failed to rename sheet: %v", err)
		}
		index = sheetIndex(f, req.NewName)
		return nil
	})
	if err != nil {
		return models.SheetResult{}, err
	}
	return models.SheetResult{
		Envelope:  models.Succeeded(fmt.Sprintf("Sheet renamed from '%s' to '%s'", req.OldName, req.NewName)),
		SheetName: req.NewName,
		Index:     &index,
	}, nil
}

// CopySheet duplicates a sheet's cells and styles into a new sheet appended
// to the workbook.
func (s *Service) CopySheet(ctx context.Context, req CopySheetRequest) (models.SheetResult, error) {
	const op = OpCopySheet
	if err := req.Validate(); err != nil {
		return models.SheetResult{}, err
	}
	if err := s.checkPath(op, req.WorkbookPath, true); err != nil {
		return models.SheetResult{}, err
	}

	var index int
	err := s.withWorkbook(ctx, op, req.WorkbookPath, true, func(f *excelize.File) error {
		if err := requireSheet(op, f, req.SourceSheet); err != nil {
			return err
		}
		if existing, ok := findSheet(f, req.NewName); ok {
			return NewOperationError(op, ErrAlreadyExists, nil, "Sheet '%s' already exists", existing)
		}
		from := sheetIndex(f, req.SourceSheet)
		to, err := f.NewSheet(req.NewName)
		if err != nil {
			return NewOperationError(op, errInternal, err, "Failed to copy sheet: %v", err)
		}
		if err := f.CopySheet(from, to); err != nil {
			return NewOperationError(op, errInternal, err, "Failed to copy sheet: %v", err)
		}
		index = to
		return nil
	})
	if err != nil {
		return models.SheetResult{}, err
	}
	return models.SheetResult{
		Envelope:  models.Succeeded(fmt.Sprintf("Sheet '%s' copied to '%s'", req.SourceSheet, req.NewName)),
		SheetName: req.NewName,
		Index:     &index,
	}, nil
}
