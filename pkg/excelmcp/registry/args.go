package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp"
	"github.com/mort-lab/excel-mcp/pkg/excelmcp/models"
)

// bind adapts a typed service method to the untyped handler signature.
func bind[Req any, Res models.Response](op string, call func(context.Context, Req) (Res, error)) handler {
	return func(ctx context.Context, args map[string]any) (models.Response, error) {
		var req Req
		if err := decodeArgs(op, args, &req); err != nil {
			return nil, err
		}
		res, err := call(ctx, req)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

// checkRequired rejects absent required parameters. A scalar parameter may
// be present with a null value; any other required parameter may not.
func (t *Tool) checkRequired(args map[string]any) error {
	for _, p := range t.Params {
		if !p.Required {
			continue
		}
		v, ok := args[p.Name]
		if !ok || (v == nil && p.Type != TypeScalar) {
			return excelmcp.NewOperationError(t.Name, excelmcp.ErrValidation, nil,
				"Missing required parameter: %s", p.Name)
		}
	}
	return nil
}

// decodeArgs converts the argument map into a request struct through its
// JSON tags. Unknown keys and mistyped values are validation errors.
func decodeArgs(op string, args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return excelmcp.NewOperationError(op, excelmcp.ErrValidation, err, "Invalid arguments: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return argError(op, err)
	}
	return nil
}

func argError(op string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "arguments"
		}
		return excelmcp.NewOperationError(op, excelmcp.ErrValidation, err,
			"Invalid value for parameter '%s': got %s", field, typeErr.Value)
	}
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return excelmcp.NewOperationError(op, excelmcp.ErrValidation, err,
			"Unknown parameter: %s", strings.Trim(name, `"`))
	}
	return excelmcp.NewOperationError(op, excelmcp.ErrValidation, err, "Invalid arguments: %v", err)
}
