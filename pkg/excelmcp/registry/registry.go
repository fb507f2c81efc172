// Package registry maps operation names to typed service handlers so that
// every transport (MCP, CLI) dispatches the same way.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

// CodeUnknownOperation is the failure code for a name with no registered tool.
const CodeUnknownOperation = "unknown_operation"

const codeInternal = "internal_error"

// Parameter types understood by InputSchema and the MCP adapter.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	// TypeScalar accepts a string, number, boolean or null.
	TypeScalar = "scalar"
)

// Param describes one named argument of a tool.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
	Default     any
	Min, Max    *float64
	// Items is the JSON schema of array elements.
	Items map[string]any
}

type handler func(ctx context.Context, args map[string]any) (models.Response, error)

// Tool is a registered operation.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	ReadOnly    bool
	Destructive bool

	handler handler
}

// Registry holds the operations in a stable order.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
	logger *slog.Logger
}

// New builds a registry exposing every operation of svc.
func New(svc *excelmcp.Service, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{byName: make(map[string]*Tool), logger: logger}
	for _, t := range definitions(svc) {
		r.tools = append(r.tools, t)
		r.byName[t.Name] = t
	}
	return r
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	out := make([]*Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Dispatch runs the named operation. Failures are reported in the returned
// envelope, never as a Go error.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (resp models.Response) {
	start := time.Now()
	logger := r.logger.With("request_id", uuid.NewString(), "tool", name)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("operation panicked", "panic", rec)
			resp = models.Failed(codeInternal, fmt.Sprintf("Internal error: %v", rec))
		}
	}()

	t, ok := r.Lookup(name)
	if !ok {
		logger.Warn("unknown operation")
		return models.Failed(CodeUnknownOperation, fmt.Sprintf("Unknown operation: %s", name))
	}

	res, err := t.call(ctx, args)
	duration := time.Since(start)
	if err != nil {
		code := excelmcp.Code(err)
		level := slog.LevelInfo
		if code == codeInternal {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "operation failed", "code", code, "error", err, "duration", duration)
		return models.Failed(code, err.Error())
	}
	logger.Info("operation succeeded", "duration", duration)
	return res
}

func (t *Tool) call(ctx context.Context, args map[string]any) (models.Response, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := t.checkRequired(args); err != nil {
		return nil, err
	}
	return t.handler(ctx, args)
}

// InputSchema returns the JSON schema describing the tool's arguments.
func InputSchema(t *Tool) map[string]any {
	props := make(map[string]any, len(t.Params))
	required := []string{}
	for _, p := range t.Params {
		props[p.Name] = p.Schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// Schema returns the JSON schema of a single parameter.
func (p Param) Schema() map[string]any {
	s := map[string]any{}
	if p.Type == TypeScalar {
		s["type"] = []string{"string", "number", "boolean", "null"}
	} else {
		s["type"] = p.Type
	}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if p.Default != nil {
		s["default"] = p.Default
	}
	if p.Min != nil {
		s["minimum"] = *p.Min
	}
	if p.Max != nil {
		s["maximum"] = *p.Max
	}
	if p.Items != nil {
		s["items"] = p.Items
	}
	return s
}
