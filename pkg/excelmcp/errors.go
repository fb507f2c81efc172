package excelmcp

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrValidation indicates malformed input. It never reaches the file system.
var ErrValidation = errors.New("validation error")

// ErrInvalidReference indicates a malformed or out-of-bounds cell or range reference.
var ErrInvalidReference = fmt.Errorf("invalid reference: %w", ErrValidation)

// ErrFormula indicates a formula that failed the shape or denylist check.
var ErrFormula = fmt.Errorf("formula rejected: %w", ErrValidation)

// ErrNotFound indicates the workbook (or its parent directory) does not exist.
var ErrNotFound = errors.New("not found")

// ErrSheetNotFound indicates the named sheet is absent from the workbook.
var ErrSheetNotFound = fmt.Errorf("sheet %w", ErrNotFound)

// ErrAlreadyExists indicates a create or rename would collide with an existing file or sheet.
var ErrAlreadyExists = errors.New("already exists")

// ErrPermission indicates the file system denied access, or the path is outside the base directory.
var ErrPermission = errors.New("permission denied")

// ErrInvariant indicates the operation would break a workbook invariant,
// e.g. deleting the last sheet.
var ErrInvariant = errors.New("invariant violation")

// OperationError represents a failed operation.
type OperationError struct {
	Op   string // operation name, e.g. "write_cell"
	Kind error  // one of the sentinel errors above
	Msg  string // human readable, safe to show to the caller
	Err  error  // underlying cause, may be nil
}

func (e *OperationError) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *OperationError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewOperationError creates a new OperationError.
func NewOperationError(op string, kind error, err error, format string, args ...any) *OperationError {
	return &OperationError{
		Op:   op,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

func validationf(op, format string, args ...any) error {
	return NewOperationError(op, ErrValidation, nil, format, args...)
}

// ioError classifies an error returned by the file system or excelize.
func ioError(op, path string, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewOperationError(op, ErrNotFound, err, "File not found: %s", path)
	case errors.Is(err, fs.ErrPermission):
		return NewOperationError(op, ErrPermission, err, "Permission denied: %s", path)
	default:
		return NewOperationError(op, errInternal, err, "Failed to %s: %v", humanOp(op), err)
	}
}

var errInternal = errors.New("internal error")

// Code returns a stable machine-readable code for err. The most specific
// kind wins, so a sheet lookup failure reports sheet_not_found, not not_found.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrFormula):
		return "formula_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrSheetNotFound):
		return "sheet_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrPermission):
		return "permission_denied"
	case errors.Is(err, ErrInvariant):
		return "invariant_violation"
	default:
		return "internal_error"
	}
}
