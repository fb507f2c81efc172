package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mort-lab/excel-mcp/internal/config"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp/registry"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	envFile string
	cfg     config.Config
	logger  *slog.Logger
	reg     *registry.Registry
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "excel-mcp",
		Short:             "Spreadsheet tools for AI agents over the Model Context Protocol",
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Load settings from this file if it exists")
	config.RegisterFlags(root.PersistentFlags(), config.Default())

	root.AddCommand(
		newServeCmd(a),
		newToolsCmd(a),
		newCallCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves the configuration (file, then env, then flags) and builds
// the service and registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	a.reg = registry.New(excelmcp.New(cfg.ServiceOptions(a.logger)), a.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Overrides the root hook: printing the version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

func jsonPrint(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
