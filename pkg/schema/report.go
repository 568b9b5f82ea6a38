package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ErrorKind classifies a single validation failure.
type ErrorKind string

const (
	MissingRequired     ErrorKind = "missing_required"
	TypeMismatch        ErrorKind = "type_mismatch"
	ConstraintViolation ErrorKind = "constraint_violation"
	HookRejected        ErrorKind = "hook_rejected"
)

// Path locates a value inside the validated input. Container indices are
// stored as decimal strings, map keys as-is. An empty path addresses the
// whole record.
type Path []string

// Child returns a new path extended with name. The receiver is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Index returns a new path extended with a container index.
func (p Path) Index(i int) Path {
	return p.Child(strconv.Itoa(i))
}

// String renders the path with dots, e.g. "items.0.price".
func (p Path) String() string {
	return strings.Join(p, ".")
}

// ValidationError represents a single validation failure with translation support.
type ValidationError struct {
	Path       Path
	Kind       ErrorKind
	Constraint string
	Message    string
	// TranslationKey is empty when the message was set by the schema author
	// and must not be replaced.
	TranslationKey    string
	TranslationValues map[string]any
}

// Field returns the dotted path of the error. Whole-record errors return "".
func (e ValidationError) Field() string {
	return e.Path.String()
}

func (e ValidationError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is the complete report of one validation attempt.
// An empty report means the input was accepted.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, err.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve *ValidationErrors) Add(err ValidationError) {
	*ve = append(*ve, err)
}

// Merge appends every error of other, preserving order.
func (ve *ValidationErrors) Merge(other ValidationErrors) {
	*ve = append(*ve, other...)
}

// Has reports whether any error is located at the dotted field path.
func (ve ValidationErrors) errorList() []error {
	out := make([]error, len(ve))
	for i, e := range ve {
		out[i] = e
	}
	return out
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field() == field {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for the dotted field path.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field() == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

func (ve ValidationErrors) GetErrors(field string) []ValidationError {
	var errs []ValidationError
	for _, err := range ve {
		if err.Field() == field {
			errs = append(errs, err)
		}
	}
	return errs
}

// ByKind filters the report down to one error kind.
func (ve ValidationErrors) ByKind(kind ErrorKind) ValidationErrors {
	var out ValidationErrors
	for _, err := range ve {
		if err.Kind == kind {
			out = append(out, err)
		}
	}
	return out
}

// Fields lists the distinct dotted paths in first-seen order.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		f := err.Field()
		if !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	return fields
}

func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// withPrefix returns a copy of the report with prefix prepended to every path.
func (ve ValidationErrors) withPrefix(prefix Path) ValidationErrors {
	if len(prefix) == 0 {
		return ve
	}
	out := make(ValidationErrors, len(ve))
	for i, err := range ve {
		err.Path = append(slices.Clone(prefix), err.Path...)
		if _, ok := err.TranslationValues["field"]; ok {
			err.TranslationValues = maps.Clone(err.TranslationValues)
			err.TranslationValues["field"] = err.Path.String()
		}
		out[i] = err
	}
	return out
}

// Record is the wire form of a ValidationError.
type Record struct {
	Path       []string `json:"path" yaml:"path"`
	Kind       string   `json:"kind" yaml:"kind"`
	Constraint string   `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Message    string   `json:"message" yaml:"message"`
}

// Records converts the report into its serializable form. Paths are never nil
// so whole-record errors encode as an empty list.
func (ve ValidationErrors) Records() []Record {
	out := make([]Record, 0, len(ve))
	for _, err := range ve {
		path := make([]string, len(err.Path))
		copy(path, err.Path)
		out = append(out, Record{
			Path:       path,
			Kind:       string(err.Kind),
			Constraint: err.Constraint,
			Message:    err.Message,
		})
	}
	return out
}

// ExtractValidationErrors extracts ValidationErrors from an error.
func ExtractValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var validationErr ValidationErrors
	if errors.As(err, &validationErr) {
		return validationErr
	}

	return nil
}

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var validationErr ValidationErrors
	return errors.As(err, &validationErr)
}

func missingRequired(path Path) ValidationError {
	return ValidationError{
		Path:           path,
		Kind:           MissingRequired,
		Message:        "field is required",
		TranslationKey: "validation.required",
		TranslationValues: map[string]any{
			"field": path.String(),
		},
	}
}

func typeMismatch(path Path, t Type, got any) ValidationError {
	return ValidationError{
		Path:           path,
		Kind:           TypeMismatch,
		Message:        fmt.Sprintf("expected %s, got %s", t, describeValue(got)),
		TranslationKey: "validation.type",
		TranslationValues: map[string]any{
			"field":    path.String(),
			"expected": t.String(),
			"got":      describeValue(got),
		},
	}
}

// hookRejected builds a rejection. An empty path marks a whole-record invariant.
func hookRejected(path Path, err error) ValidationError {
	ve := ValidationError{
		Path:              path,
		Kind:              HookRejected,
		Message:           err.Error(),
		TranslationKey:    "validation.rejected",
		TranslationValues: map[string]any{},
	}
	if len(path) > 0 {
		ve.TranslationValues["field"] = path.String()
	}
	return ve
}

func constraintViolated(path Path, v *Violation) ValidationError {
	values := make(map[string]any, len(v.Params)+1)
	for k, p := range v.Params {
		values[k] = p
	}
	values["field"] = path.String()
	key := "validation." + v.Key
	if v.Custom {
		key = ""
	}
	return ValidationError{
		Path:              path,
		Kind:              ConstraintViolation,
		Constraint:        v.Constraint,
		Message:           v.Message,
		TranslationKey:    key,
		TranslationValues: values,
	}
}
