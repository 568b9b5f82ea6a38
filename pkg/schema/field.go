package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// FieldHook transforms or rejects a field value after its constraints pass.
// A non-nil error is reported as HookRejected with the error text.
type FieldHook func(value any) (any, error)

// FieldDescriptor is the immutable declaration of one field.
type FieldDescriptor struct {
	name            string
	typ             Type
	hasDefault      bool
	defaultValue    any
	factory         func() any
	validateDefault bool
	constraints     []Constraint
	hooks           []FieldHook
	description     string
	examples        []any
}

// FieldOption configures a field. Constraints are field options too.
type FieldOption interface {
	applyField(*FieldDescriptor)
}

type fieldOptionFunc func(*FieldDescriptor)

func (fn fieldOptionFunc) applyField(f *FieldDescriptor) { fn(f) }

// Default sets a scalar default copied into every instance that omits the field.
// Panics for non-scalar values, which must go through DefaultFunc so no two
// instances ever share a mutable container.
func Default(v any) FieldOption {
	if !isScalar(v) {
		panic(fmt.Sprintf("schema: Default requires a scalar value, got %T; use DefaultFunc", v))
	}
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.hasDefault = true
		f.defaultValue = v
		f.factory = nil
	})
}

// DefaultFunc sets a zero-argument producer invoked once per validation
// that omits the field.
func DefaultFunc(fn func() any) FieldOption {
	if fn == nil {
		panic("schema: DefaultFunc requires a function")
	}
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.hasDefault = true
		f.defaultValue = nil
		f.factory = fn
	})
}

// Optional makes the field nullable with a nil default.
func Optional() FieldOption {
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.typ = Nullable(f.typ)
		f.hasDefault = true
		f.defaultValue = nil
		f.factory = nil
	})
}

// ValidateDefault runs defaults through coercion, constraints, hooks and
// nested validation as if the caller had supplied them.
func ValidateDefault() FieldOption {
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.validateDefault = true
	})
}

// Describe attaches a human-readable description surfaced by Schema.Describe.
func Describe(text string) FieldOption {
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.description = text
	})
}

// Examples attaches example values surfaced by Schema.Describe.
func Examples(values ...any) FieldOption {
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.examples = append(f.examples, values...)
	})
}

// HookAny appends an untyped field hook.
func HookAny(fn FieldHook) FieldOption {
	if fn == nil {
		panic("schema: HookAny requires a function")
	}
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.hooks = append(f.hooks, fn)
	})
}

// Hook appends a typed field hook. Coerced values carry the representation
// of their Type, so int fields arrive as int64 and float fields as float64.
// A value of another type is rejected.
func Hook[T any](fn func(T) (T, error)) FieldOption {
	if fn == nil {
		panic("schema: Hook requires a function")
	}
	return HookAny(func(value any) (any, error) {
		typed, ok := value.(T)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", reflect.TypeFor[T](), describeValue(value))
		}
		return fn(typed)
	})
}

func (f *FieldDescriptor) Name() string     { return f.name }
func (f *FieldDescriptor) Type() Type       { return f.typ }
func (f *FieldDescriptor) HasDefault() bool { return f.hasDefault }

// Required reports whether omitting the field is a MissingRequired error.
func (f *FieldDescriptor) Required() bool { return !f.hasDefault }

func (f *FieldDescriptor) Constraints() []Constraint { return slices.Clone(f.constraints) }
func (f *FieldDescriptor) Description() string      { return f.description }
func (f *FieldDescriptor) Examples() []any          { return slices.Clone(f.examples) }

// DefaultValue returns the scalar default. Factories are not invoked.
func (f *FieldDescriptor) DefaultValue() (any, bool) {
	if !f.hasDefault || f.factory != nil {
		return nil, false
	}
	return f.defaultValue, true
}

// produceDefault returns a fresh default for one validation call.
func (f *FieldDescriptor) produceDefault() any {
	if f.factory != nil {
		return f.factory()
	}
	return f.defaultValue
}

// check verifies the declaration and normalizes a scalar default to the
// representation of the field type.
func (f *FieldDescriptor) check() error {
	if f.name == "" {
		return fmt.Errorf("%w: field name is empty", ErrInvalidSchema)
	}
	for _, c := range f.constraints {
		if !c.supports(f.typ) {
			return fmt.Errorf("%w: %s on field %q of type %s", ErrInvalidConstraint, c.Name(), f.name, f.typ)
		}
	}
	if f.hasDefault && f.factory == nil {
		v, errs := coerceValue(f.typ, f.defaultValue, nil)
		if len(errs) > 0 {
			return fmt.Errorf("%w: field %q: %s", ErrInvalidDefault, f.name, errs[0].Message)
		}
		f.defaultValue = v
	}
	return nil
}

func (f *FieldDescriptor) clone() *FieldDescriptor {
	c := *f
	c.constraints = slices.Clone(f.constraints)
	c.hooks = slices.Clone(f.hooks)
	c.examples = slices.Clone(f.examples)
	return &c
}

func isScalar(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(json.Number); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
