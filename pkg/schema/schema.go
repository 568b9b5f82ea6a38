package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// BeforeHook rewrites or rejects the raw input before any field is processed.
// Returning a nil map keeps the current input. A rejection aborts validation.
type BeforeHook func(raw map[string]any) (map[string]any, error)

// AfterHook checks cross-field invariants on a constructed model and may
// update declared fields through Model.Set.
type AfterHook func(m *Model) error

// Schema is the immutable description of a record: ordered fields plus
// model-level hooks. A Schema is safe for concurrent use by any number of
// validations.
type Schema struct {
	name    string
	summary string
	fields  []*FieldDescriptor
	index   map[string]int
	before  []BeforeHook
	after   []AfterHook
	unbound bool
}

// Option configures a schema under construction.
type Option func(*builder)

type builder struct {
	schema   *Schema
	deferred []func()
	errs     []error
}

// New builds a schema. Field order is declaration order.
func New(name string, opts ...Option) (*Schema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: schema name is empty", ErrInvalidSchema)
	}

	b := &builder{schema: &Schema{name: name, index: make(map[string]int)}}
	for _, opt := range opts {
		opt(b)
	}
	// ForFields options apply after every field is declared.
	for _, fn := range b.deferred {
		fn()
	}

	s := b.schema
	for _, f := range s.fields {
		if err := f.check(); err != nil {
			b.errs = append(b.errs, err)
		}
		if f.typ.unbound() {
			s.unbound = true
		}
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("schema %q: %w", name, errors.Join(b.errs...))
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for package-level schema
// declarations.
func MustNew(name string, opts ...Option) *Schema {
	s, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field declares a field of type t.
func Field(name string, t Type, opts ...FieldOption) Option {
	return func(b *builder) {
		if _, exists := b.schema.index[name]; exists {
			b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateField, name))
			return
		}
		f := &FieldDescriptor{name: name, typ: t}
		for _, opt := range opts {
			opt.applyField(f)
		}
		b.schema.index[name] = len(b.schema.fields)
		b.schema.fields = append(b.schema.fields, f)
	}
}

// ForFields applies the same options to several declared fields, after
// their own options. Useful for one hook shared by many fields.
func ForFields(names []string, opts ...FieldOption) Option {
	return func(b *builder) {
		b.deferred = append(b.deferred, func() {
			for _, name := range names {
				i, ok := b.schema.index[name]
				if !ok {
					b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrUnknownField, name))
					continue
				}
				for _, opt := range opts {
					opt.applyField(b.schema.fields[i])
				}
			}
		})
	}
}

// Before appends model-level hooks run on the raw input in declared order.
func Before(hooks ...BeforeHook) Option {
	for _, h := range hooks {
		if h == nil {
			panic("schema: nil before hook")
		}
	}
	return func(b *builder) {
		b.schema.before = append(b.schema.before, hooks...)
	}
}

// After appends model-level hooks run on the constructed model in declared order.
func After(hooks ...AfterHook) Option {
	for _, h := range hooks {
		if h == nil {
			panic("schema: nil after hook")
		}
	}
	return func(b *builder) {
		b.schema.after = append(b.schema.after, hooks...)
	}
}

// Summary attaches a description of the record surfaced by Describe.
func Summary(text string) Option {
	return func(b *builder) {
		b.schema.summary = text
	}
}

func (s *Schema) Name() string { return s.name }

// Fields returns the field descriptors in declaration order.
func (s *Schema) Fields() []*FieldDescriptor { return slices.Clone(s.fields) }

// Field looks up a field descriptor by name.
func (s *Schema) Field(name string) (*FieldDescriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Validate runs the model pipeline on raw. It returns exactly one of a
// validated *Model or an error. Data problems are reported as
// ValidationErrors; a schema with unbound references returns ErrUnresolvedRef.
// raw is never modified.
func (s *Schema) Validate(raw map[string]any) (*Model, error) {
	if s.unbound {
		return nil, fmt.Errorf("%w: schema %q must be registered before validation", ErrUnresolvedRef, s.name)
	}
	m, errs := s.validate(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	return m, nil
}

// rebind returns a copy of s whose field types are replaced by bind.
func (s *Schema) rebind(bind func(Type) Type) *Schema {
	c := &Schema{
		name:    s.name,
		summary: s.summary,
		fields:  make([]*FieldDescriptor, len(s.fields)),
		index:   s.index,
		before:  s.before,
		after:   s.after,
	}
	for i, f := range s.fields {
		nf := f.clone()
		nf.typ = bind(f.typ)
		c.fields[i] = nf
	}
	return c
}
