// Package config resolves server settings from a .env file, EXCEL_MCP_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const envPrefix = "EXCEL_MCP_"

var (
	transports = []string{TransportStdio, TransportHTTP}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds the resolved server settings.
type Config struct {
	Transport        string
	Addr             string
	BaseDir          string
	LogLevel         string
	LogFormat        string
	MaxRangeCells    int
	EvaluateFormulas bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Transport:        TransportStdio,
		Addr:             "127.0.0.1:8080",
		LogLevel:         "info",
		LogFormat:        "text",
		MaxRangeCells:    excelmcp.DefaultMaxRangeCells,
		EvaluateFormulas: true,
	}
}

// Load reads envFile (a missing file is not an error) and then the process
// environment on top of the defaults. Variables already set in the
// environment are not overridden by the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var err error
	setString(&cfg.Transport, "TRANSPORT")
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.BaseDir, "BASE_DIR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	if v, ok := lookup("MAX_RANGE_CELLS"); ok {
		if cfg.MaxRangeCells, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("%sMAX_RANGE_CELLS: %w", envPrefix, err)
		}
	}
	if v, ok := lookup("EVALUATE_FORMULAS"); ok {
		if cfg.EvaluateFormulas, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("%sEVALUATE_FORMULAS: %w", envPrefix, err)
		}
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// RegisterFlags adds one flag per setting to fs. Defaults shown in help are
// those of cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg Config) {
	fs.String("transport", cfg.Transport, "Transport: stdio or http (env: EXCEL_MCP_TRANSPORT)")
	fs.String("addr", cfg.Addr, "Listen address for the http transport (env: EXCEL_MCP_ADDR)")
	fs.String("base-dir", cfg.BaseDir, "Restrict workbook paths to this directory (env: EXCEL_MCP_BASE_DIR)")
	fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error (env: EXCEL_MCP_LOG_LEVEL)")
	fs.String("log-format", cfg.LogFormat, "Log format: text or json (env: EXCEL_MCP_LOG_FORMAT)")
	fs.Int("max-range-cells", cfg.MaxRangeCells, "Maximum cells per range operation (env: EXCEL_MCP_MAX_RANGE_CELLS)")
	fs.Bool("evaluate-formulas", cfg.EvaluateFormulas, "Report calculated values for formulas (env: EXCEL_MCP_EVALUATE_FORMULAS)")
}

// ApplyFlags copies every flag the user set explicitly into cfg.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "transport":
			c.Transport, err = fs.GetString(f.Name)
		case "addr":
			c.Addr, err = fs.GetString(f.Name)
		case "base-dir":
			c.BaseDir, err = fs.GetString(f.Name)
		case "log-level":
			c.LogLevel, err = fs.GetString(f.Name)
		case "log-format":
			c.LogFormat, err = fs.GetString(f.Name)
		case "max-range-cells":
			c.MaxRangeCells, err = fs.GetInt(f.Name)
		case "evaluate-formulas":
			c.EvaluateFormulas, err = fs.GetBool(f.Name)
		}
	})
	return err
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !slices.Contains(transports, c.Transport) {
		return fmt.Errorf("invalid transport %q: must be one of %s", c.Transport, strings.Join(transports, ", "))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level %q: must be one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("invalid log format %q: must be one of %s", c.LogFormat, strings.Join(logFormats, ", "))
	}
	if c.MaxRangeCells <= 0 {
		return fmt.Errorf("max range cells must be positive, got %d", c.MaxRangeCells)
	}
	if c.Transport == TransportHTTP && c.Addr == "" {
		return errors.New("addr is required for the http transport")
	}
	if c.BaseDir != "" {
		info, err := os.Stat(c.BaseDir)
		if err != nil {
			return fmt.Errorf("base dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("base dir %s is not a directory", c.BaseDir)
		}
	}
	return nil
}

// ServiceOptions converts the settings into excelmcp options.
func (c Config) ServiceOptions(logger *slog.Logger) excelmcp.Options {
	eval := c.EvaluateFormulas
	return excelmcp.Options{
		BaseDir:          c.BaseDir,
		MaxRangeCells:    c.MaxRangeCells,
		EvaluateFormulas: &eval,
		Logger:           logger,
	}
}

// NewLogger builds the process logger. w is normally stderr, since stdout
// carries the stdio transport.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
