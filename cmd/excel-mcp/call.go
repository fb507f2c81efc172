package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <operation> [json-args]",
		Short: "Run one operation and print its JSON response",
		Long: `Run one operation and print its JSON response.

Arguments are a JSON object, given inline or read from stdin when the second
argument is "-". The exit code is 1 when the operation fails.`,
		Example: `  excel-mcp call create_workbook '{"file_path":"report.xlsx"}'
  echo '{"file_path":"report.xlsx"}' | excel-mcp call list_sheets -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp models.Response
			callArgs, err := readCallArgs(cmd.InOrStdin(), args[1:])
			if err != nil {
				resp = models.Failed("validation_error", err.Error())
			} else {
				resp = a.reg.Dispatch(cmd.Context(), args[0], callArgs)
			}
			if err := jsonPrint(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.OK() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

func readCallArgs(stdin io.Reader, rest []string) (map[string]any, error) {
	raw := "{}"
	if len(rest) > 0 {
		raw = rest[0]
	}
	if raw == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("Failed to read arguments from stdin: %w", err)
		}
		raw = string(b)
	}
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}

	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("Arguments must be a JSON object: %v", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
