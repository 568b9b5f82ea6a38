package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Kind is the tag of a Type.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
	KindObject
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	default:
		return "any"
	}
}

func (k Kind) primitive() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool:
		return true
	}
	return false
}

// Type declares the shape a field value must have after coercion.
// Values are immutable; every constructor returns a fresh Type.
type Type struct {
	kind     Kind
	elem     *Type
	schema   *Schema
	ref      string
	variants []Kind
	nullable bool
}

func String() Type { return Type{kind: KindString} }
func Int() Type    { return Type{kind: KindInt} }
func Float() Type  { return Type{kind: KindFloat} }
func Bool() Type   { return Type{kind: KindBool} }

// Any accepts every value, including nil, without coercion.
func Any() Type { return Type{kind: KindAny} }

// ListOf declares an ordered sequence whose elements have type elem.
func ListOf(elem Type) Type {
	return Type{kind: KindList, elem: &elem}
}

// MapOf declares a string-keyed mapping whose values have type elem.
func MapOf(elem Type) Type {
	return Type{kind: KindMap, elem: &elem}
}

// Object declares a nested record validated by s.
func Object(s *Schema) Type {
	if s == nil {
		panic("schema: Object requires a non-nil schema")
	}
	return Type{kind: KindObject, schema: s}
}

// Ref declares a nested record by registry name. It is bound when the
// enclosing schema is registered.
func Ref(name string) Type {
	if strings.TrimSpace(name) == "" {
		panic("schema: Ref requires a schema name")
	}
	return Type{kind: KindObject, ref: name}
}

// Union declares a value that may be any of the given primitive kinds.
// Coercion tries an exact match in declared order first, then a lossless
// conversion in declared order.
func Union(kinds ...Kind) Type {
	if len(kinds) == 0 {
		panic("schema: Union requires at least one kind")
	}
	for _, k := range kinds {
		if !k.primitive() {
			panic(fmt.Sprintf("schema: Union supports primitive kinds only, got %s", k))
		}
	}
	return Type{kind: KindUnion, variants: slices.Clone(kinds)}
}

// Nullable returns t extended to accept an explicit nil.
func Nullable(t Type) Type {
	t.nullable = true
	return t
}

func (t Type) Kind() Kind { return t.kind }

func (t Type) IsNullable() bool { return t.nullable || t.kind == KindAny }

// Elem returns the element type of lists and maps.
func (t Type) Elem() (Type, bool) {
	if t.elem == nil {
		return Type{}, false
	}
	return *t.elem, true
}

// Schema returns the nested schema of an object type, or nil for an unbound Ref.
func (t Type) Schema() *Schema { return t.schema }

// RefName returns the referenced schema name of an object type.
func (t Type) RefName() string {
	if t.schema != nil {
		return t.schema.name
	}
	return t.ref
}

func (t Type) Variants() []Kind { return slices.Clone(t.variants) }

func (t Type) String() string {
	var s string
	switch t.kind {
	case KindList:
		s = "list<" + t.elem.String() + ">"
	case KindMap:
		s = "map<" + t.elem.String() + ">"
	case KindObject:
		s = t.RefName()
	case KindUnion:
		parts := make([]string, len(t.variants))
		for i, k := range t.variants {
			parts[i] = k.String()
		}
		s = strings.Join(parts, "|")
	default:
		s = t.kind.String()
	}
	if t.nullable && t.kind != KindAny {
		s += "?"
	}
	return s
}

// admits reports whether values of kind k can occur in t.
func (t Type) admits(k Kind) bool {
	switch t.kind {
	case KindAny:
		return true
	case KindUnion:
		return slices.Contains(t.variants, k)
	default:
		return t.kind == k
	}
}

// nested reports whether t contains an object type at any depth.
func (t Type) nested() bool {
	switch t.kind {
	case KindObject:
		return true
	case KindList, KindMap:
		return t.elem.nested()
	}
	return false
}

// unbound reports whether t contains a Ref that has not been bound to a schema.
func (t Type) unbound() bool {
	switch t.kind {
	case KindObject:
		if t.schema == nil {
			return true
		}
		return t.schema.unbound
	case KindList, KindMap:
		return t.elem.unbound()
	}
	return false
}

// describeValue names the runtime shape of v in the vocabulary of Type.String.
func describeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case json.Number:
		return "number"
	case *Model:
		return x.schema.name
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map:
		return "map"
	}
	return fmt.Sprintf("%T", v)
}
