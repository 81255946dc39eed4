package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/statement"
)

func showStatement() *statement.Statement { return statement.Show() }

// parseFieldDef parses "name:type" or "name:type:index" into a
// catalog.FieldDef, where type is int32, int64, or string.
func parseFieldDef(spec string) (catalog.FieldDef, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 {
		return catalog.FieldDef{}, fmt.Errorf("invalid --field %q, want name:type[:index]", spec)
	}
	ft, ok := catalog.ParseFieldType(parts[1])
	if !ok {
		return catalog.FieldDef{}, fmt.Errorf("invalid --field %q: unknown type %q", spec, parts[1])
	}
	indexed := len(parts) >= 3 && parts[2] == "index"
	return catalog.FieldDef{Name: parts[0], Type: ft, Indexed: indexed}, nil
}

// parseValue parses a literal string into a typed Value per fieldType.
func parseValue(fieldType catalog.FieldType, literal string) (catalog.Value, error) {
	switch fieldType {
	case catalog.TypeInt32:
		v, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return catalog.Value{}, fmt.Errorf("invalid int32 literal %q: %w", literal, err)
		}
		return catalog.Int32Value(int32(v)), nil
	case catalog.TypeInt64:
		v, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return catalog.Value{}, fmt.Errorf("invalid int64 literal %q: %w", literal, err)
		}
		return catalog.Int64Value(v), nil
	case catalog.TypeString:
		return catalog.StringValue(literal), nil
	default:
		return catalog.Value{}, fmt.Errorf("unknown field type")
	}
}

// parseWhere parses "field:op:literal" (op one of =, <, >) against
// fieldType, returning a single-comparison catalog.Where.
func parseWhere(fieldType func(name string) (catalog.FieldType, bool), expr string) (*catalog.Where, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid --where %q, want field:op:literal", expr)
	}
	ft, ok := fieldType(parts[0])
	if !ok {
		return nil, fmt.Errorf("invalid --where %q: unknown field %q", expr, parts[0])
	}
	v, err := parseValue(ft, parts[2])
	if err != nil {
		return nil, err
	}
	switch parts[1] {
	case "=":
		return catalog.Equals(parts[0], v), nil
	case "<":
		return catalog.LessThan(parts[0], v), nil
	case ">":
		return catalog.GreaterThan(parts[0], v), nil
	default:
		return nil, fmt.Errorf("invalid --where %q: unknown operator %q", expr, parts[1])
	}
}

func formatValue(v catalog.Value) string {
	switch v.Type {
	case catalog.TypeInt32:
		return strconv.FormatInt(int64(v.Int32), 10)
	case catalog.TypeInt64:
		return strconv.FormatInt(v.Int64, 10)
	case catalog.TypeString:
		return v.Str
	default:
		return ""
	}
}
