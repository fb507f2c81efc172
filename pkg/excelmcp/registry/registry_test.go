package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

func newTestRegistry(t *testing.T) (*Registry, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	opts := excelmcp.DefaultOptions()
	opts.BaseDir = dir
	opts.Logger = logger
	return New(excelmcp.New(opts), logger), dir, &logs
}

// call dispatches and returns the response decoded as a generic JSON object.
func call(t *testing.T, r *Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(r.Dispatch(context.Background(), name, args))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func requireSuccess(t *testing.T, resp map[string]any) {
	t.Helper()
	require.Equal(t, true, resp["success"], "message: %v", resp["message"])
}

func TestRegistry_ToolsInStableOrder(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	var names []string
	for _, tool := range r.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"create_workbook", "get_workbook_info", "list_sheets",
		"create_sheet", "delete_sheet", "rename_sheet", "copy_sheet",
		"write_cell", "read_cell", "write_range", "read_range", "write_formula",
		"format_font", "format_fill", "format_border", "format_alignment", "format_number",
	}, names)

	for _, name := range names {
		tool, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, tool.Description, name)
		assert.NotNil(t, tool.handler, name)
	}
	_, ok := r.Lookup("drop_table")
	assert.False(t, ok)
}

func TestInputSchema(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	tool, _ := r.Lookup("format_font")
	schema := InputSchema(tool)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"workbook_path", "sheet_name", "range_ref"}, schema["required"])

	props := schema["properties"].(map[string]any)
	size := props["font_size"].(map[string]any)
	assert.Equal(t, "number", size["type"])
	assert.Equal(t, 8.0, size["minimum"])
	assert.Equal(t, 72.0, size["maximum"])
	assert.Equal(t, []string{"single", "double", "none"}, props["underline"].(map[string]any)["enum"])

	tool, _ = r.Lookup("write_cell")
	value := InputSchema(tool)["properties"].(map[string]any)["value"].(map[string]any)
	assert.Equal(t, []string{"string", "number", "boolean", "null"}, value["type"])

	// Every schema must be serializable for tools/list.
	for _, tool := range r.Tools() {
		_, err := json.Marshal(InputSchema(tool))
		require.NoError(t, err, tool.Name)
	}
}

func TestDispatch_UnknownOperation(t *testing.T) {
	r, _, logs := newTestRegistry(t)

	resp := call(t, r, "drop_table", nil)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "unknown_operation", resp["error"])
	assert.Equal(t, "Unknown operation: drop_table", resp["message"])
	assert.Contains(t, logs.String(), `"tool":"drop_table"`)
}

func TestDispatch_ArgumentErrors(t *testing.T) {
	r, dir, _ := newTestRegistry(t)
	path := filepath.Join(dir, "t.xlsx")
	requireSuccess(t, call(t, r, "create_workbook", map[string]any{"file_path": path}))

	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		message string
	}{
		{"missing", "read_cell", map[string]any{"workbook_path": path, "sheet_name": "Sheet1"}, "Missing required parameter: cell"},
		{"null required", "list_sheets", map[string]any{"file_path": nil}, "Missing required parameter: file_path"},
		{"wrong type", "create_sheet", map[string]any{"workbook_path": path, "sheet_name": "S", "index": "two"}, "Invalid value for parameter 'index': got string"},
		{"fractional index", "create_sheet", map[string]any{"workbook_path": path, "sheet_name": "S", "index": 1.5}, "Invalid value for parameter 'index'"},
		{"unknown key", "list_sheets", map[string]any{"file_path": path, "verbose": true}, "Unknown parameter: verbose"},
		{"composite value", "write_cell", map[string]any{"workbook_path": path, "sheet_name": "Sheet1", "cell": "A1", "value": []any{1}}, "Invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, r, tt.tool, tt.args)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, "validation_error", resp["error"])
			assert.True(t, strings.HasPrefix(resp["message"].(string), tt.message), resp["message"])
		})
	}

	// None of the rejected calls touched the workbook.
	resp := call(t, r, "list_sheets", map[string]any{"file_path": path})
	assert.Equal(t, []any{"Sheet1"}, resp["sheets"])
}

func TestDispatch_NullValueClearsCell(t *testing.T) {
	r, dir, _ := newTestRegistry(t)
	path := filepath.Join(dir, "t.xlsx")
	requireSuccess(t, call(t, r, "create_workbook", map[string]any{"file_path": path}))

	target := map[string]any{"workbook_path": path, "sheet_name": "Sheet1", "cell": "A1"}
	with := func(k string, v any) map[string]any {
		out := map[string]any{k: v}
		for key, val := range target {
			out[key] = val
		}
		return out
	}

	requireSuccess(t, call(t, r, "write_cell", with("value", "x")))
	requireSuccess(t, call(t, r, "write_cell", with("value", nil)))

	resp := call(t, r, "read_cell", target)
	requireSuccess(t, resp)
	assert.Nil(t, resp["value"])
}

func TestDispatch_WriteRangeNullClearsCell(t *testing.T) {
	r, dir, _ := newTestRegistry(t)
	path := filepath.Join(dir, "t.xlsx")
	requireSuccess(t, call(t, r, "create_workbook", map[string]any{"file_path": path}))

	requireSuccess(t, call(t, r, "write_cell", map[string]any{
		"workbook_path": path, "sheet_name": "Sheet1", "cell": "A1", "value": "old",
	}))
	requireSuccess(t, call(t, r, "write_range", map[string]any{
		"workbook_path": path, "sheet_name": "Sheet1", "start_cell": "A1",
		"data": []any{[]any{nil, 1}},
	}))

	resp := call(t, r, "read_cell", map[string]any{"workbook_path": path, "sheet_name": "Sheet1", "cell": "A1"})
	requireSuccess(t, resp)
	assert.Nil(t, resp["value"])
	assert.Equal(t, "empty", resp["type"])

	resp = call(t, r, "read_cell", map[string]any{"workbook_path": path, "sheet_name": "Sheet1", "cell": "B1"})
	assert.Equal(t, 1.0, resp["value"])
}

func TestDispatch_ServiceErrorCodes(t *testing.T) {
	r, dir, logs := newTestRegistry(t)
	path := filepath.Join(dir, "t.xlsx")

	resp := call(t, r, "list_sheets", map[string]any{"file_path": path})
	assert.Equal(t, "not_found", resp["error"])

	requireSuccess(t, call(t, r, "create_workbook", map[string]any{"file_path": path}))
	resp = call(t, r, "create_workbook", map[string]any{"file_path": path})
	assert.Equal(t, "already_exists", resp["error"])

	resp = call(t, r, "delete_sheet", map[string]any{"workbook_path": path, "sheet_name": "Sheet1"})
	assert.Equal(t, "invariant_violation", resp["error"])

	resp = call(t, r, "read_range", map[string]any{"workbook_path": path, "sheet_name": "Sheet1", "range_ref": "A0:B2"})
	assert.Equal(t, "invalid_reference", resp["error"])

	resp = call(t, r, "write_formula", map[string]any{"workbook_path": path, "sheet_name": "Sheet1", "cell": "A1", "formula": "=CALL(\"kernel32\",\"x\")"})
	assert.Equal(t, "formula_error", resp["error"])

	resp = call(t, r, "read_cell", map[string]any{"workbook_path": path, "sheet_name": "Nope", "cell": "A1"})
	assert.Equal(t, "sheet_not_found", resp["error"])

	assert.Contains(t, logs.String(), `"code":"invariant_violation"`)
	assert.Contains(t, logs.String(), `"request_id"`)
}

// The sales-report flow: create, fill a table, add a total formula, format the header.
func TestDispatch_Scenario(t *testing.T) {
	r, dir, _ := newTestRegistry(t)
	path := filepath.Join(dir, "report.xlsx")

	requireSuccess(t, call(t, r, "create_workbook", map[string]any{"file_path": path, "sheet_name": "Sales"}))
	requireSuccess(t, call(t, r, "write_range", map[string]any{
		"workbook_path": path,
		"sheet_name":    "Sales",
		"start_cell":    "A1",
		"data": []any{
			[]any{"Product", "Price", "Qty"},
			[]any{"Widget", 10.5, 4},
			[]any{"Gadget", 2, 10},
		},
	}))
	resp := call(t, r, "write_formula", map[string]any{
		"workbook_path": path, "sheet_name": "Sales", "cell": "D2", "formula": "=B2*C2",
	})
	requireSuccess(t, resp)
	assert.Equal(t, "=B2*C2", resp["value"])

	resp = call(t, r, "format_font", map[string]any{
		"workbook_path": path, "sheet_name": "Sales", "range_ref": "A1:C1", "bold": true,
	})
	requireSuccess(t, resp)
	assert.Equal(t, 3.0, resp["cells"])

	requireSuccess(t, call(t, r, "format_border", map[string]any{
		"workbook_path": path, "sheet_name": "Sales", "range_ref": "A1:C3", "sides": []any{"bottom", "top"},
	}))

	resp = call(t, r, "read_range", map[string]any{"workbook_path": path, "sheet_name": "Sales", "range_ref": "A1:C2"})
	requireSuccess(t, resp)
	assert.Equal(t, []any{
		[]any{"Product", "Price", "Qty"},
		[]any{"Widget", 10.5, 4.0},
	}, resp["data"])
}

func TestDispatch_TypedResponse(t *testing.T) {
	r, dir, _ := newTestRegistry(t)
	path := filepath.Join(dir, "t.xlsx")

	resp := r.Dispatch(context.Background(), "create_workbook", map[string]any{"file_path": path})
	require.True(t, resp.OK())
	wb, ok := resp.(models.WorkbookResult)
	require.True(t, ok)
	assert.Equal(t, "Workbook created successfully", wb.Message)

	resp = r.Dispatch(context.Background(), "list_sheets", map[string]any{})
	assert.False(t, resp.OK())
	assert.IsType(t, models.Failure{}, resp)
}
