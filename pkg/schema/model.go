package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Model is a validated record. It is read-only once Validate returns;
// after-hooks may update declared fields with Set while the model is being
// constructed.
type Model struct {
	schema *Schema
	values map[string]any
	frozen bool
}

func (m *Model) Schema() *Schema { return m.schema }

// Get returns the value of a declared field. Lists and maps are returned as
// shallow copies so the model cannot be modified through them.
func (m *Model) Get(name string) (any, bool) {
	v, ok := m.values[name]
	if !ok {
		return nil, false
	}
	return detach(v), true
}

// Has reports whether the field holds a non-nil value.
func (m *Model) Has(name string) bool {
	return m.values[name] != nil
}

func (m *Model) String(name string) string {
	s, _ := m.values[name].(string)
	return s
}

func (m *Model) Int(name string) int64 {
	i, _ := toInt64(m.values[name])
	return i
}

func (m *Model) Float(name string) float64 {
	f, _ := toFloat(m.values[name])
	return f
}

func (m *Model) Bool(name string) bool {
	b, _ := m.values[name].(bool)
	return b
}

// List returns a copy of a list field. Defaults produced by a factory are
// converted from their concrete slice type.
func (m *Model) List(name string) []any {
	items, ok := asList(m.values[name])
	if !ok {
		return nil
	}
	return slices.Clone(items)
}

func (m *Model) Map(name string) map[string]any {
	entries, ok := asMap(m.values[name])
	if !ok {
		return nil
	}
	return maps.Clone(entries)
}

// Model returns a nested model field, or nil.
func (m *Model) Model(name string) *Model {
	nested, _ := m.values[name].(*Model)
	return nested
}

// Models returns the nested models of a list-of-objects field.
func (m *Model) Models(name string) []*Model {
	items, ok := asList(m.values[name])
	if !ok {
		return nil
	}
	out := make([]*Model, 0, len(items))
	for _, item := range items {
		if nested, ok := item.(*Model); ok {
			out = append(out, nested)
		}
	}
	return out
}

// Set updates a declared field from inside an after-hook. The value is
// coerced and validated against the field type, but not against its
// constraints or hooks. Undeclared fields fail with ErrUnknownField.
func (m *Model) Set(name string, value any) error {
	if m.frozen {
		return fmt.Errorf("%w: cannot set %q", ErrModelFrozen, name)
	}
	f, ok := m.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q is not declared in schema %q", ErrUnknownField, name, m.schema.name)
	}
	path := Path{name}
	v, errs := coerceValue(f.typ, value, path)
	if len(errs) == 0 {
		v, errs = nest(f.typ, v, path)
	}
	if len(errs) > 0 {
		return errs
	}
	m.values[name] = v
	return nil
}

// ToMap returns a deep copy of the model as plain maps and slices, with
// fields in no particular order.
func (m *Model) ToMap() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = plain(v)
	}
	return out
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// Decode copies the model into dst, typically a pointer to a struct with
// json tags.
func (m *Model) Decode(dst any) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func plain(v any) any {
	switch x := v.(type) {
	case *Model:
		return x.ToMap()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = plain(item)
		}
		return out
	}
	if items, ok := asList(v); ok {
		return plain(items)
	}
	if entries, ok := asMap(v); ok {
		return plain(entries)
	}
	return v
}

func detach(v any) any {
	switch x := v.(type) {
	case []any:
		return slices.Clone(x)
	case map[string]any:
		return maps.Clone(x)
	}
	return v
}
