package schemafile

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/modelcheck/pkg/formats"
	"github.com/dmitrymomot/modelcheck/pkg/sanitizer"
	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

// Option supplies Go behaviour referenced by name from a document.
type Option func(*catalog)

type catalog struct {
	before map[string]schema.BeforeHook
	after  map[string]schema.AfterHook
	checks map[string]schema.Constraint
}

// WithBeforeHook makes a before-hook available as `before: [{hook: name}]`.
func WithBeforeHook(name string, h schema.BeforeHook) Option {
	return func(c *catalog) { c.before[name] = h }
}

// WithAfterHook makes an after-hook available as `after: [name]`.
func WithAfterHook(name string, h schema.AfterHook) Option {
	return func(c *catalog) { c.after[name] = h }
}

// WithCheck makes a constraint available as `checks: [name]` on any field.
func WithCheck(name string, c schema.Constraint) Option {
	return func(cat *catalog) { cat.checks[name] = c }
}

// Build compiles every schema of the document. References between schemas
// stay unbound until the schemas are registered together.
func (d *Document) Build(opts ...Option) ([]*schema.Schema, error) {
	cat := &catalog{
		before: make(map[string]schema.BeforeHook),
		after:  make(map[string]schema.AfterHook),
		checks: make(map[string]schema.Constraint),
	}
	for _, opt := range opts {
		opt(cat)
	}

	out := make([]*schema.Schema, 0, len(d.Schemas))
	var errs []error
	for _, spec := range d.Schemas {
		s, err := cat.build(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, s)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Register builds the document and registers its schemas as one batch.
func (d *Document) Register(reg *schema.Registry, opts ...Option) ([]string, error) {
	schemas, err := d.Build(opts...)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(schemas...); err != nil {
		return nil, err
	}
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name()
	}
	return names, nil
}

func (c *catalog) build(spec SchemaSpec) (*schema.Schema, error) {
	wrap := func(err error) error {
		return fmt.Errorf("schema %q: %w", spec.Name, err)
	}

	opts := []schema.Option{schema.Summary(spec.Summary)}
	for _, b := range spec.Before {
		hook, err := c.beforeHook(b)
		if err != nil {
			return nil, wrap(err)
		}
		opts = append(opts, schema.Before(hook))
	}
	for _, f := range spec.Fields {
		opt, err := c.field(f)
		if err != nil {
			return nil, wrap(err)
		}
		opts = append(opts, opt)
	}
	for _, name := range spec.After {
		hook, ok := c.after[name]
		if !ok {
			return nil, wrap(fmt.Errorf("%w: after hook %q", ErrUnknownName, name))
		}
		opts = append(opts, schema.After(hook))
	}

	s, err := schema.New(spec.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return s, nil
}

func (c *catalog) beforeHook(b BeforeSpec) (schema.BeforeHook, error) {
	switch {
	case b.Hook != "" && b.Transform != "":
		return nil, fmt.Errorf("%w: before entry sets both hook and transform", ErrInvalidDocument)
	case b.Hook != "":
		h, ok := c.before[b.Hook]
		if !ok {
			return nil, fmt.Errorf("%w: before hook %q", ErrUnknownName, b.Hook)
		}
		return h, nil
	case b.Transform != "":
		fn, ok := sanitizer.Lookup(b.Transform)
		if !ok {
			return nil, fmt.Errorf("%w: transform %q", ErrUnknownName, b.Transform)
		}
		if len(b.Fields) == 0 {
			return nil, fmt.Errorf("%w: transform %q lists no fields", ErrInvalidDocument, b.Transform)
		}
		return sanitizer.Fields(fn, b.Fields...), nil
	}
	return nil, fmt.Errorf("%w: empty before entry", ErrInvalidDocument)
}

func (c *catalog) field(f FieldSpec) (schema.Option, error) {
	wrap := func(err error) error {
		return fmt.Errorf("field %q: %w", f.Name, err)
	}

	t, err := ParseType(f.Type)
	if err != nil {
		return nil, wrap(err)
	}

	var opts []schema.FieldOption
	if f.Optional {
		opts = append(opts, schema.Optional())
	}
	if f.Default != nil {
		opt, err := defaultOption(f.Default)
		if err != nil {
			return nil, wrap(err)
		}
		opts = append(opts, opt)
	}
	if f.ValidateDefault {
		opts = append(opts, schema.ValidateDefault())
	}

	if f.MinLength != nil {
		opts = append(opts, schema.MinLen(*f.MinLength))
	}
	if f.MaxLength != nil {
		opts = append(opts, schema.MaxLen(*f.MaxLength))
	}
	if f.Gt != nil || f.Ge != nil || f.Lt != nil || f.Le != nil {
		lower, upper, err := bounds(f)
		if err != nil {
			return nil, wrap(err)
		}
		opts = append(opts, schema.Range(lower, upper))
	}
	if f.Pattern != "" {
		pc, err := pattern(f.Pattern)
		if err != nil {
			return nil, wrap(err)
		}
		opts = append(opts, pc)
	}
	if f.Format != "" {
		fc, ok := formats.Lookup(f.Format)
		if !ok {
			return nil, wrap(fmt.Errorf("%w: format %q", ErrUnknownName, f.Format))
		}
		opts = append(opts, fc)
	}
	if len(f.OneOf) > 0 {
		opts = append(opts, formats.OneOf(f.OneOf...))
	}
	for _, name := range f.Checks {
		check, ok := c.checks[name]
		if !ok {
			return nil, wrap(fmt.Errorf("%w: check %q", ErrUnknownName, name))
		}
		opts = append(opts, check)
	}

	if len(f.Transform) > 0 {
		fns := make([]func(string) string, 0, len(f.Transform))
		for _, name := range f.Transform {
			fn, ok := sanitizer.Lookup(name)
			if !ok {
				return nil, wrap(fmt.Errorf("%w: transform %q", ErrUnknownName, name))
			}
			fns = append(fns, fn)
		}
		opts = append(opts, sanitizer.Hook(fns...))
	}

	if f.Description != "" {
		opts = append(opts, schema.Describe(f.Description))
	}
	if len(f.Examples) > 0 {
		opts = append(opts, schema.Examples(f.Examples...))
	}
	return schema.Field(f.Name, t, opts...), nil
}

func bounds(f FieldSpec) (schema.Bound, schema.Bound, error) {
	var lower, upper schema.Bound
	switch {
	case f.Gt != nil && f.Ge != nil:
		return lower, upper, fmt.Errorf("%w: gt and ge are exclusive", ErrInvalidDocument)
	case f.Gt != nil:
		lower = schema.Exclusive(*f.Gt)
	case f.Ge != nil:
		lower = schema.Inclusive(*f.Ge)
	}
	switch {
	case f.Lt != nil && f.Le != nil:
		return lower, upper, fmt.Errorf("%w: lt and le are exclusive", ErrInvalidDocument)
	case f.Lt != nil:
		upper = schema.Exclusive(*f.Lt)
	case f.Le != nil:
		upper = schema.Inclusive(*f.Le)
	}
	return lower, upper, nil
}

// pattern converts the panic of an invalid expression into an error.
func pattern(expr string) (c schema.Constraint, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pattern %q: %v", ErrInvalidDocument, expr, r)
		}
	}()
	return schema.Pattern(expr), nil
}

// defaultOption turns a document default into a scalar default, or a
// factory returning a fresh deep copy for lists and maps.
func defaultOption(node *yaml.Node) (schema.FieldOption, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: default: %w", ErrInvalidDocument, err)
	}
	switch v.(type) {
	case []any, map[string]any:
		return schema.DefaultFunc(func() any { return deepCopy(v) }), nil
	case nil, string, int, float64, bool:
		return schema.Default(v), nil
	}
	return nil, fmt.Errorf("%w: unsupported default %T, quote it as a string", ErrInvalidDocument, v)
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case []any:
		out := slices.Clone(x)
		for i, item := range out {
			out[i] = deepCopy(item)
		}
		return out
	case map[string]any:
		out := maps.Clone(x)
		for k, item := range out {
			out[k] = deepCopy(item)
		}
		return out
	}
	return v
}
