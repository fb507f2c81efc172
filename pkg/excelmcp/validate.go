package excelmcp

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// WorkbookExt is the only file extension accepted for workbook paths.
const WorkbookExt = ".xlsx"

// MaxFormulaLength is Excel's limit on formula text.
const MaxFormulaLength = 8192

var (
	sheetNameInvalidChars = []string{":", "\\", "/", "?", "*", "[", "]"}
	hexColorRe            = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)
	// unsafeFormulaRe matches calls into external code. Word boundaries keep
	// names like RECALL or EXECUTIVE from tripping the check.
	unsafeFormulaRe = regexp.MustCompile(`(?i)\b(CALL|REGISTER\.ID|REGISTER|EXEC)\s*\(`)
)

// ValidatePath checks the shape of a caller supplied workbook path and
// returns its cleaned form. It does not touch the file system.
func ValidatePath(op, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", validationf(op, "File path cannot be empty")
	}
	if slices.Contains(strings.FieldsFunc(path, isPathSeparator), "..") {
		return "", validationf(op, "Invalid file path %q: relative '..' segments are not allowed", path)
	}
	clean := filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(clean), WorkbookExt) {
		return "", validationf(op, "File must have %s extension: %s", WorkbookExt, path)
	}
	return clean, nil
}

// checkPath verifies a validated path against the file system: the base
// directory jail, the parent directory and, with mustExist, the file itself.
func (s *Service) checkPath(op, path string, mustExist bool) error {
	if err := s.checkBaseDir(op, path); err != nil {
		return err
	}

	parent := filepath.Dir(path)
	if info, err := os.Stat(parent); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewOperationError(op, ErrNotFound, err, "Parent directory does not exist: %s", parent)
		}
		return ioError(op, parent, err)
	} else if !info.IsDir() {
		return validationf(op, "Parent path is not a directory: %s", parent)
	}

	if !mustExist {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return ioError(op, path, err)
	}
	if info.IsDir() {
		return validationf(op, "Path is a directory, not a workbook: %s", path)
	}
	return nil
}

func (s *Service) checkBaseDir(op, path string) error {
	if s.opts.BaseDir == "" {
		return nil
	}
	base, err := filepath.Abs(s.opts.BaseDir)
	if err != nil {
		return ioError(op, s.opts.BaseDir, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ioError(op, path, err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return NewOperationError(op, ErrPermission, err, "Path %s is outside the allowed directory %s", path, base)
	}
	return nil
}

func isPathSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// ValidateSheetName checks Excel's sheet naming rules.
func ValidateSheetName(op, name string) error {
	if name == "" {
		return validationf(op, "Sheet name cannot be empty")
	}
	if utf8.RuneCountInString(name) > excelize.MaxSheetNameLength {
		return validationf(op, "Sheet name cannot exceed %d characters", excelize.MaxSheetNameLength)
	}
	for _, ch := range sheetNameInvalidChars {
		if strings.Contains(name, ch) {
			return validationf(op, "Sheet name cannot contain '%s'", ch)
		}
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return validationf(op, "Sheet name cannot start or end with an apostrophe")
	}
	return nil
}

// ValidateFormula returns the formula with a leading '='.
func ValidateFormula(op, formula string) (string, error) {
	f := strings.TrimSpace(formula)
	if f == "" || f == "=" {
		return "", NewOperationError(op, ErrFormula, nil, "Formula cannot be empty")
	}
	if !strings.HasPrefix(f, "=") {
		f = "=" + f
	}
	if utf8.RuneCountInString(f) > MaxFormulaLength {
		return "", NewOperationError(op, ErrFormula, nil, "Formula exceeds %d characters", MaxFormulaLength)
	}
	if m := unsafeFormulaRe.FindStringSubmatch(f); m != nil {
		return "", NewOperationError(op, ErrFormula, nil, "Formula contains prohibited function: %s", strings.ToUpper(m[1]))
	}
	return f, nil
}

// ValidateColor accepts "FF0000" or "#ff0000" and returns "FF0000".
func ValidateColor(op, color string) (string, error) {
	c := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if !hexColorRe.MatchString(c) {
		return "", validationf(op, "Invalid hex color: %s. Expected format like 'FF0000' or '#FF0000'", color)
	}
	return strings.ToUpper(c), nil
}

func oneOf(op, field, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return validationf(op, "Invalid %s %q. Must be one of: %s", field, value, strings.Join(allowed, ", "))
}
