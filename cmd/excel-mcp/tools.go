package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/registry"
)

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ReadOnly    bool           `json:"read_only"`
	Destructive bool           `json:"destructive"`
	InputSchema map[string]any `json:"input_schema"`
}

func newToolsCmd(a *app) *cobra.Command {
	var namesOnly bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available operations and their input schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools := a.reg.Tools()
			if namesOnly {
				for _, t := range tools {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), t.Name); err != nil {
						return err
					}
				}
				return nil
			}
			out := make([]toolInfo, 0, len(tools))
			for _, t := range tools {
				out = append(out, toolInfo{
					Name:        t.Name,
					Description: t.Description,
					ReadOnly:    t.ReadOnly,
					Destructive: t.Destructive,
					InputSchema: registry.InputSchema(t),
				})
			}
			return jsonPrint(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&namesOnly, "names", false, "Print only the operation names")
	return cmd
}
