package schema

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/modelcheck/pkg/logger"
)

// Registry holds schemas by name. Registration binds Ref types to registered
// schemas; the stored schemas are immutable and validated without locks.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	logger  *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration and rejection events.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas: make(map[string]*Schema),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a batch of schemas atomically. References may point to
// schemas in the same batch or already registered. The batch is rejected
// as a whole on duplicate names, unresolved references or cycles.
func (r *Registry) Register(schemas ...*Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]*Schema, len(schemas))
	order := make([]string, 0, len(schemas))
	for _, s := range schemas {
		if s == nil {
			return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
		}
		if _, exists := r.schemas[s.name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateSchema, s.name)
		}
		if _, exists := pending[s.name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateSchema, s.name)
		}
		pending[s.name] = s
		order = append(order, s.name)
	}

	b := &binder{
		registered: r.schemas,
		pending:    pending,
		color:      make(map[*Schema]int),
		bound:      make(map[*Schema]*Schema),
	}
	resolved := make(map[string]*Schema, len(order))
	for _, name := range order {
		s, err := b.bind(pending[name])
		if err != nil {
			return err
		}
		resolved[name] = s
	}

	for _, name := range order {
		r.schemas[name] = resolved[name]
		r.logger.Debug("schema registered",
			logger.Schema(name),
			slog.Int("fields", len(resolved[name].fields)),
		)
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(schemas ...*Schema) {
	if err := r.Register(schemas...); err != nil {
		panic(err)
	}
}

// Lookup returns the bound schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, error) {
	r.mu.RLock()
	s, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}
	return s, nil
}

// Names lists registered schema names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate looks up the schema and validates raw against it.
func (r *Registry) Validate(name string, raw map[string]any) (*Model, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	m, err := s.Validate(raw)
	if errs := ExtractValidationErrors(err); errs != nil {
		r.logger.Debug("validation rejected",
			logger.Schema(name),
			logger.ErrorCount(len(errs)),
			logger.Errors(errs.errorList()...),
		)
	}
	return m, err
}

// Describe returns the description of a registered schema.
func (r *Registry) Describe(name string) (Description, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return Description{}, err
	}
	return s.Describe(), nil
}

const (
	white = iota
	gray
	black
)

// binder resolves references depth-first, colouring schemas to detect cycles.
type binder struct {
	registered map[string]*Schema
	pending    map[string]*Schema
	color      map[*Schema]int
	bound      map[*Schema]*Schema
	stack      []string
}

func (b *binder) bind(s *Schema) (*Schema, error) {
	switch b.color[s] {
	case black:
		return b.bound[s], nil
	case gray:
		start := slices.Index(b.stack, s.name)
		cycle := append(slices.Clone(b.stack[start:]), s.name)
		return nil, fmt.Errorf("%w: %s", ErrCyclicSchema, strings.Join(cycle, " -> "))
	}

	b.color[s] = gray
	b.stack = append(b.stack, s.name)

	var bindErr error
	out := s.rebind(func(t Type) Type {
		bt, err := b.bindType(t)
		if err != nil && bindErr == nil {
			bindErr = err
		}
		return bt
	})
	if bindErr != nil {
		return nil, bindErr
	}

	b.stack = b.stack[:len(b.stack)-1]
	b.color[s] = black
	b.bound[s] = out
	return out, nil
}

func (b *binder) bindType(t Type) (Type, error) {
	switch t.kind {
	case KindList, KindMap:
		elem, err := b.bindType(*t.elem)
		if err != nil {
			return t, err
		}
		t.elem = &elem
		return t, nil

	case KindObject:
		target := t.schema
		if target == nil {
			if s, ok := b.pending[t.ref]; ok {
				target = s
			} else if s, ok := b.registered[t.ref]; ok {
				// Registered schemas are already bound and acyclic.
				t.schema = s
				return t, nil
			} else {
				return t, fmt.Errorf("%w: %q referenced from %q", ErrUnresolvedRef, t.ref, b.stack[len(b.stack)-1])
			}
		}
		bound, err := b.bind(target)
		if err != nil {
			return t, err
		}
		t.schema = bound
		t.ref = ""
		return t, nil
	}
	return t, nil
}
