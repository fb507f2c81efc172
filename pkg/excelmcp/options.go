// Package excelmcp implements validated spreadsheet operations on .xlsx files.
package excelmcp

import "log/slog"

// DefaultMaxRangeCells caps the number of cells a single range operation may touch.
const DefaultMaxRangeCells = 100_000

// Options configures a Service.
type Options struct {
	// BaseDir, when set, jails every workbook path inside this directory.
	BaseDir string
	// MaxRangeCells caps the cells touched by write_range, read_range and
	// the format operations. Zero means DefaultMaxRangeCells.
	MaxRangeCells int
	// EvaluateFormulas specifies whether formula cells report a best-effort
	// calculated value. If nil, defaults to true.
	EvaluateFormulas *bool
	// Logger receives debug output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns default service options.
func DefaultOptions() Options {
	return Options{
		MaxRangeCells: DefaultMaxRangeCells,
	}
}

// ShouldEvaluateFormulas returns whether formula results are calculated on read and write.
func (o Options) ShouldEvaluateFormulas() bool {
	if o.EvaluateFormulas != nil {
		return *o.EvaluateFormulas
	}
	return true
}

func (o Options) maxRangeCells() int {
	if o.MaxRangeCells <= 0 {
		return DefaultMaxRangeCells
	}
	return o.MaxRangeCells
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
