package schemafile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

var refNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var primitives = map[string]schema.Kind{
	"string": schema.KindString,
	"int":    schema.KindInt,
	"float":  schema.KindFloat,
	"bool":   schema.KindBool,
	"any":    schema.KindAny,
}

// ParseType parses a type expression, the same notation schema.Type.String
// renders:
//
//	string | int | float | bool | any
//	list<T> | map<T>
//	int|bool          union of primitives
//	T?                nullable
//	Address           reference to a registered schema
func ParseType(expr string) (schema.Type, error) {
	t, err := parseType(strings.TrimSpace(expr))
	if err != nil {
		return schema.Type{}, fmt.Errorf("%w %q: %w", ErrInvalidType, expr, err)
	}
	return t, nil
}

func parseType(expr string) (schema.Type, error) {
	if expr == "" {
		return schema.Type{}, fmt.Errorf("empty type")
	}

	if base, ok := strings.CutSuffix(expr, "?"); ok {
		t, err := parseType(strings.TrimSpace(base))
		if err != nil {
			return schema.Type{}, err
		}
		return schema.Nullable(t), nil
	}

	for _, container := range []string{"list", "map"} {
		inner, ok := strings.CutPrefix(expr, container+"<")
		if !ok {
			continue
		}
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return schema.Type{}, fmt.Errorf("missing closing > in %q", expr)
		}
		elem, err := parseType(strings.TrimSpace(inner))
		if err != nil {
			return schema.Type{}, err
		}
		if container == "list" {
			return schema.ListOf(elem), nil
		}
		return schema.MapOf(elem), nil
	}

	if strings.Contains(expr, "|") {
		parts := strings.Split(expr, "|")
		kinds := make([]schema.Kind, 0, len(parts))
		for _, part := range parts {
			k, ok := primitives[strings.TrimSpace(part)]
			if !ok || k == schema.KindAny {
				return schema.Type{}, fmt.Errorf("union variant %q is not a primitive", strings.TrimSpace(part))
			}
			kinds = append(kinds, k)
		}
		return schema.Union(kinds...), nil
	}

	if k, ok := primitives[expr]; ok {
		switch k {
		case schema.KindString:
			return schema.String(), nil
		case schema.KindInt:
			return schema.Int(), nil
		case schema.KindFloat:
			return schema.Float(), nil
		case schema.KindBool:
			return schema.Bool(), nil
		}
		return schema.Any(), nil
	}

	if !refNameRegex.MatchString(expr) {
		return schema.Type{}, fmt.Errorf("%q is not a schema name", expr)
	}
	return schema.Ref(expr), nil
}
