// Package models defines the values and results exchanged with callers.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind tags the variant held by a CellValue.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
	KindFormula
)

// String returns the name reported to callers as a cell's "type".
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindFormula:
		return "formula"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CellValue is a scalar stored in a cell. Only the field matching Kind is meaningful.
type CellValue struct {
	Kind Kind
	// Text holds the string for KindText and the "=..." source for KindFormula.
	Text   string
	Number float64
	Bool   bool
}

// Empty returns the blank value.
func Empty() CellValue { return CellValue{} }

// Text returns a string value.
func Text(s string) CellValue { return CellValue{Kind: KindText, Text: s} }

// Number returns a numeric value.
func Number(f float64) CellValue { return CellValue{Kind: KindNumber, Number: f} }

// Bool returns a boolean value.
func Bool(b bool) CellValue { return CellValue{Kind: KindBool, Bool: b} }

// Formula returns a formula value. A leading '=' is added when missing.
func Formula(src string) CellValue {
	if !strings.HasPrefix(src, "=") {
		src = "=" + src
	}
	return CellValue{Kind: KindFormula, Text: src}
}

// IsEmpty reports whether the value is blank.
func (v CellValue) IsEmpty() bool { return v.Kind == KindEmpty }

// Interface returns the value as a plain Go scalar (nil, string, float64 or bool).
func (v CellValue) Interface() any {
	switch v.Kind {
	case KindText, KindFormula:
		return v.Text
	case KindNumber:
		return v.Number
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

func (v CellValue) String() string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return fmt.Sprint(v.Number)
	case KindBool:
		return fmt.Sprint(v.Bool)
	default:
		return v.Text
	}
}

// MarshalJSON encodes the value as a bare JSON scalar.
func (v CellValue) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber && (math.IsNaN(v.Number) || math.IsInf(v.Number, 0)) {
		return nil, fmt.Errorf("cell value %v is not representable in JSON", v.Number)
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar. Strings that start with '=' become formulas.
func (v *CellValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	cv, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = cv
	return nil
}

// FromAny converts a decoded JSON scalar (or a Go scalar) into a CellValue.
// Arrays and objects are rejected.
func FromAny(raw any) (CellValue, error) {
	switch x := raw.(type) {
	case nil:
		return Empty(), nil
	case CellValue:
		return x, nil
	case string:
		if strings.HasPrefix(x, "=") && len(x) > 1 {
			return Formula(x), nil
		}
		return Text(x), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return CellValue{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return Number(f), nil
	default:
		return CellValue{}, fmt.Errorf("unsupported cell value of type %T: expected string, number, boolean or null", raw)
	}
}
