package schema

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ConstraintKind tags the variant of a Constraint.
type ConstraintKind string

const (
	ConstraintMinLength ConstraintKind = "min_length"
	ConstraintMaxLength ConstraintKind = "max_length"
	ConstraintRange     ConstraintKind = "range"
	ConstraintPattern   ConstraintKind = "pattern"
	ConstraintPredicate ConstraintKind = "predicate"
)

// Bound is one side of a numeric range. The zero value is unbounded.
type Bound struct {
	Value     float64
	Exclusive bool
	set       bool
}

func Inclusive(v float64) Bound { return Bound{Value: v, set: true} }
func Exclusive(v float64) Bound { return Bound{Value: v, Exclusive: true, set: true} }

func (b Bound) IsSet() bool { return b.set }

// Constraint is an atomic, stateless predicate over a single value.
// Constraints are values; WithMessage returns a modified copy.
type Constraint struct {
	kind     ConstraintKind
	name     string
	length   int
	lower    Bound
	upper    Bound
	pattern  string
	re       *regexp.Regexp
	check    func(any) error
	template string
}

// Violation describes why a value failed a constraint.
type Violation struct {
	// Constraint is the constraint kind, or the predicate name for custom checks.
	Constraint string
	// Key is the translation suffix, e.g. "min_length" or "gt".
	Key     string
	Message string
	Params  map[string]any
	// Custom is set when the message comes from WithMessage.
	Custom bool
}

func (v *Violation) Error() string { return v.Message }

// MinLen requires at least n characters for strings or n elements for
// lists and maps.
func MinLen(n int) Constraint {
	return Constraint{kind: ConstraintMinLength, length: n}
}

// MaxLen allows at most n characters for strings or n elements for lists and maps.
func MaxLen(n int) Constraint {
	return Constraint{kind: ConstraintMaxLength, length: n}
}

// Len requires exactly n characters or elements.
func Len(n int) FieldOption {
	return fieldOptionFunc(func(f *FieldDescriptor) {
		f.constraints = append(f.constraints, MinLen(n), MaxLen(n))
	})
}

// Range bounds a numeric value on either side. Use the zero Bound for an open side.
func Range(lower, upper Bound) Constraint {
	return Constraint{kind: ConstraintRange, lower: lower, upper: upper}
}

func Gt(v float64) Constraint { return Range(Exclusive(v), Bound{}) }
func Ge(v float64) Constraint { return Range(Inclusive(v), Bound{}) }
func Lt(v float64) Constraint { return Range(Bound{}, Exclusive(v)) }
func Le(v float64) Constraint { return Range(Bound{}, Inclusive(v)) }

// Between requires min <= value <= max.
func Between(min, max float64) Constraint {
	return Range(Inclusive(min), Inclusive(max))
}

func Positive() Constraint    { return Gt(0) }
func NonNegative() Constraint { return Ge(0) }

// Pattern requires the whole string to match expr. Panics if expr does not compile.
func Pattern(expr string) Constraint {
	return Constraint{
		kind:    ConstraintPattern,
		pattern: expr,
		re:      regexp.MustCompile(`^(?:` + expr + `)$`),
	}
}

// Check wraps a caller-supplied predicate. A non-nil error from fn is a
// violation whose message is the error text.
func Check(name string, fn func(value any) error) Constraint {
	if fn == nil {
		panic("schema: Check requires a predicate")
	}
	return Constraint{kind: ConstraintPredicate, name: name, check: fn}
}

// CheckFunc is Check for predicates over a concrete type. Values of another
// type are violations.
func CheckFunc[T any](name string, fn func(T) error) Constraint {
	if fn == nil {
		panic("schema: CheckFunc requires a predicate")
	}
	return Check(name, func(value any) error {
		typed, ok := value.(T)
		if !ok {
			return fmt.Errorf("expected %s, got %s", reflect.TypeFor[T](), describeValue(value))
		}
		return fn(typed)
	})
}

// WithMessage overrides the failure message. The template may reference
// parameters as %{name}: field-independent keys such as min, max, length,
// gt, ge, lt, le, value, pattern and error.
func (c Constraint) WithMessage(template string) Constraint {
	c.template = template
	return c
}

func (c Constraint) Kind() ConstraintKind { return c.kind }

// Name returns the predicate name for custom checks and the kind otherwise.
func (c Constraint) Name() string {
	if c.kind == ConstraintPredicate && c.name != "" {
		return c.name
	}
	return string(c.kind)
}

// Params returns the declared parameters of the constraint.
func (c Constraint) Params() map[string]any {
	switch c.kind {
	case ConstraintMinLength:
		return map[string]any{"min": c.length}
	case ConstraintMaxLength:
		return map[string]any{"max": c.length}
	case ConstraintRange:
		params := map[string]any{}
		if c.lower.set {
			params[c.lower.op(true)] = c.lower.Value
		}
		if c.upper.set {
			params[c.upper.op(false)] = c.upper.Value
		}
		return params
	case ConstraintPattern:
		return map[string]any{"pattern": c.pattern}
	}
	return map[string]any{"name": c.name}
}

func (c Constraint) applyField(f *FieldDescriptor) {
	f.constraints = append(f.constraints, c)
}

// Evaluate checks value against the constraint. It returns nil or a *Violation.
func (c Constraint) Evaluate(value any) error {
	if v := c.evaluate(value); v != nil {
		return v
	}
	return nil
}

func (c Constraint) evaluate(value any) *Violation {
	switch c.kind {
	case ConstraintMinLength, ConstraintMaxLength:
		return c.evaluateLength(value)
	case ConstraintRange:
		return c.evaluateRange(value)
	case ConstraintPattern:
		s, ok := value.(string)
		if !ok {
			return c.violation("pattern", "expected string, got %{value}", map[string]any{
				"pattern": c.pattern,
				"value":   describeValue(value),
			})
		}
		if !c.re.MatchString(s) {
			return c.violation("pattern", "must match pattern %{pattern}", map[string]any{
				"pattern": c.pattern,
				"value":   s,
			})
		}
	case ConstraintPredicate:
		if err := c.check(value); err != nil {
			return c.violation(c.Name(), err.Error(), map[string]any{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (c Constraint) evaluateLength(value any) *Violation {
	n, unit, ok := measure(value)
	key := string(c.kind)
	if !ok {
		return c.violation(key, "cannot measure length of %{value}", map[string]any{
			"value": describeValue(value),
		})
	}

	if c.kind == ConstraintMinLength && n < c.length {
		return c.violation(key, "must have at least %{min} "+unit+" (got %{length})", map[string]any{
			"min":    c.length,
			"length": n,
		})
	}
	if c.kind == ConstraintMaxLength && n > c.length {
		return c.violation(key, "must have at most %{max} "+unit+" (got %{length})", map[string]any{
			"max":    c.length,
			"length": n,
		})
	}
	return nil
}

func (c Constraint) evaluateRange(value any) *Violation {
	f, ok := toFloat(value)
	if !ok {
		return c.violation("number", "expected a number, got %{value}", map[string]any{
			"value": describeValue(value),
		})
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return c.violation("finite", "must be a finite number", map[string]any{
			"value": value,
		})
	}

	if c.lower.set {
		if order := compareBound(value, f, c.lower.Value); order < 0 || (c.lower.Exclusive && order == 0) {
			op := c.lower.op(true)
			return c.violation(op, "must be "+opText[op]+" %{"+op+"} (got %{value})", map[string]any{
				op:      c.lower.Value,
				"value": value,
			})
		}
	}
	if c.upper.set {
		if order := compareBound(value, f, c.upper.Value); order > 0 || (c.upper.Exclusive && order == 0) {
			op := c.upper.op(false)
			return c.violation(op, "must be "+opText[op]+" %{"+op+"} (got %{value})", map[string]any{
				op:      c.upper.Value,
				"value": value,
			})
		}
	}
	return nil
}

// compareBound orders value against bound. Integers meet integral bounds
// in int64 so values beyond 2^53 are not rounded first.
func compareBound(value any, f, bound float64) int {
	if i, ok := toInt64(value); ok && bound == math.Trunc(bound) && math.Abs(bound) < 1<<63 {
		return cmp.Compare(i, int64(bound))
	}
	return cmp.Compare(f, bound)
}

var opText = map[string]string{
	"gt": "greater than",
	"ge": "greater than or equal to",
	"lt": "less than",
	"le": "less than or equal to",
}

func (b Bound) op(lower bool) string {
	switch {
	case lower && b.Exclusive:
		return "gt"
	case lower:
		return "ge"
	case b.Exclusive:
		return "lt"
	default:
		return "le"
	}
}

func (c Constraint) violation(key, message string, params map[string]any) *Violation {
	if c.template != "" {
		message = c.template
	}
	return &Violation{
		Constraint: c.Name(),
		Key:        key,
		Message:    render(message, params),
		Params:     maps.Clone(params),
		Custom:     c.template != "",
	}
}

// applies reports whether the constraint measures values like v. Fields of
// kind Any or Union skip constraints that do not apply to the concrete value.
func (c Constraint) applies(v any) bool {
	switch c.kind {
	case ConstraintMinLength, ConstraintMaxLength:
		_, _, ok := measure(v)
		return ok
	case ConstraintRange:
		_, ok := toFloat(v)
		return ok
	case ConstraintPattern:
		_, ok := v.(string)
		return ok
	}
	return true
}

// supports reports whether the constraint can ever apply to values of t.
func (c Constraint) supports(t Type) bool {
	switch c.kind {
	case ConstraintMinLength, ConstraintMaxLength:
		return t.admits(KindString) || t.admits(KindList) || t.admits(KindMap)
	case ConstraintRange:
		return t.admits(KindInt) || t.admits(KindFloat)
	case ConstraintPattern:
		return t.admits(KindString)
	}
	return true
}

// measure returns the length of strings (in characters), sequences and maps.
func measure(v any) (int, string, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), "characters", true
	}
	if v == nil {
		return 0, "", false
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), "items", true
	}
	return 0, "", false
}

// render replaces %{key} placeholders with the formatted parameter values.
func render(template string, params map[string]any) string {
	if !strings.Contains(template, "%{") {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "%{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
