package mcpserver

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/registry"
)

// Tool converts a registry tool into its MCP definition.
func Tool(t *registry.Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.Description),
		mcp.WithTitleAnnotation(title(t.Name)),
		mcp.WithReadOnlyHintAnnotation(t.ReadOnly),
		mcp.WithDestructiveHintAnnotation(t.Destructive),
		mcp.WithIdempotentHintAnnotation(t.ReadOnly || strings.HasPrefix(t.Name, "format_")),
		mcp.WithOpenWorldHintAnnotation(false),
	}
	for _, p := range t.Params {
		opts = append(opts, param(p))
	}
	return mcp.NewTool(t.Name, opts...)
}

func param(p registry.Param) mcp.ToolOption {
	var props []mcp.PropertyOption
	if p.Description != "" {
		props = append(props, mcp.Description(p.Description))
	}
	if p.Required {
		props = append(props, mcp.Required())
	}
	if len(p.Enum) > 0 {
		props = append(props, mcp.Enum(p.Enum...))
	}
	if p.Min != nil {
		props = append(props, mcp.Min(*p.Min))
	}
	if p.Max != nil {
		props = append(props, mcp.Max(*p.Max))
	}

	switch p.Type {
	case registry.TypeString:
		if d, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(d))
		}
		return mcp.WithString(p.Name, props...)
	case registry.TypeNumber:
		if d, ok := p.Default.(float64); ok {
			props = append(props, mcp.DefaultNumber(d))
		}
		return mcp.WithNumber(p.Name, props...)
	case registry.TypeInteger:
		return mcp.WithNumber(p.Name, append(props, schemaType("integer"))...)
	case registry.TypeBoolean:
		if d, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(d))
		}
		return mcp.WithBoolean(p.Name, props...)
	case registry.TypeArray:
		if p.Items != nil {
			props = append(props, mcp.Items(p.Items))
		}
		return mcp.WithArray(p.Name, props...)
	default:
		return rawParam(p)
	}
}

func schemaType(typ string) mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = typ
	}
}

// rawParam installs the registry's own schema for types mcp-go has no
// builder for, such as the string/number/boolean/null cell value.
func rawParam(p registry.Param) mcp.ToolOption {
	return func(t *mcp.Tool) {
		t.InputSchema.Properties[p.Name] = p.Schema()
		if p.Required {
			t.InputSchema.Required = append(t.InputSchema.Required, p.Name)
		}
	}
}

// title turns "format_font" into "Format font".
func title(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
