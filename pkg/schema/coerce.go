package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// Coerce normalizes raw into the representation declared by t:
// string, int64, float64, bool, []any, map[string]any or *Model.
// Nested objects are validated with their schema. On failure the returned
// error is a ValidationErrors report with paths relative to raw.
func Coerce(t Type, raw any) (any, error) {
	if t.unbound() {
		return nil, ErrUnresolvedRef
	}
	v, errs := coerceValue(t, raw, nil)
	if len(errs) > 0 {
		return nil, errs
	}
	v, errs = nest(t, v, nil)
	if len(errs) > 0 {
		return nil, errs
	}
	return v, nil
}

// coerceValue converts raw to the shape of t without validating nested
// objects; string-keyed maps destined for objects are returned as-is.
func coerceValue(t Type, raw any, path Path) (any, ValidationErrors) {
	if raw == nil {
		if t.IsNullable() {
			return nil, nil
		}
		return nil, ValidationErrors{typeMismatch(path, t, raw)}
	}

	switch t.kind {
	case KindAny:
		return raw, nil

	case KindString, KindInt, KindFloat, KindBool:
		if v, ok := convertScalar(t.kind, raw); ok {
			return v, nil
		}

	case KindUnion:
		for _, k := range t.variants {
			if v, ok := exactScalar(k, raw); ok {
				return v, nil
			}
		}
		for _, k := range t.variants {
			if v, ok := convertScalar(k, raw); ok {
				return v, nil
			}
		}

	case KindList:
		items, ok := asList(raw)
		if !ok {
			break
		}
		out := make([]any, len(items))
		var errs ValidationErrors
		for i, item := range items {
			v, itemErrs := coerceValue(*t.elem, item, path.Index(i))
			errs.Merge(itemErrs)
			out[i] = v
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil

	case KindMap:
		entries, ok := asMap(raw)
		if !ok {
			break
		}
		out := make(map[string]any, len(entries))
		var errs ValidationErrors
		for _, key := range sortedKeys(entries) {
			v, entryErrs := coerceValue(*t.elem, entries[key], path.Child(key))
			errs.Merge(entryErrs)
			out[key] = v
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil

	case KindObject:
		if m, ok := raw.(*Model); ok {
			if m.schema.name == t.RefName() {
				return m, nil
			}
			break
		}
		if entries, ok := asMap(raw); ok {
			return entries, nil
		}
	}

	return nil, ValidationErrors{typeMismatch(path, t, raw)}
}

// exactScalar accepts raw only when it already is a value of kind k.
// json.Number counts as exact for numeric kinds when it parses strictly.
func exactScalar(k Kind, raw any) (any, bool) {
	switch k {
	case KindString:
		s, ok := raw.(string)
		return s, ok
	case KindBool:
		b, ok := raw.(bool)
		return b, ok
	case KindInt:
		if n, ok := raw.(json.Number); ok {
			i, err := strconv.ParseInt(string(n), 10, 64)
			return i, err == nil
		}
		if i, ok := toInt64(raw); ok {
			return i, true
		}
	case KindFloat:
		switch x := raw.(type) {
		case float64:
			return x, true
		case float32:
			return float64(x), true
		case json.Number:
			f, err := strconv.ParseFloat(string(x), 64)
			return f, err == nil
		}
	}
	return nil, false
}

// Integers up to maxExactInt in magnitude convert to float64 exactly.
const maxExactInt = 1 << 53

// convertScalar extends exactScalar with the lossless conversions:
// int to float and strict string to number. Float to int is never implicit.
func convertScalar(k Kind, raw any) (any, bool) {
	if v, ok := exactScalar(k, raw); ok {
		return v, true
	}
	switch k {
	case KindInt:
		if s, ok := raw.(string); ok {
			i, err := strconv.ParseInt(s, 10, 64)
			return i, err == nil
		}
	case KindFloat:
		if i, ok := toInt64(raw); ok {
			if i > maxExactInt || i < -maxExactInt {
				return nil, false
			}
			return float64(i), true
		}
		if s, ok := raw.(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			return f, err == nil
		}
	}
	return nil, false
}

func toInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintToInt64(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintToInt64(x)
	}
	return 0, false
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// toFloat reads any Go numeric as float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	if u, ok := v.(uint); ok {
		return float64(u), true
	}
	return 0, false
}

// asList reads any slice or array as []any. Strings are not sequences here.
func asList(raw any) ([]any, bool) {
	if items, ok := raw.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// asMap reads any string-keyed map as map[string]any.
func asMap(raw any) (map[string]any, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
