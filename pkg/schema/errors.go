package schema

import "errors"

// Configuration errors returned while building or registering schemas.
// Data problems are never reported through these; they surface as ValidationErrors.
var (
	// ErrInvalidSchema is returned when a schema declaration is malformed.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrDuplicateField is returned when two fields share a name within one schema.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrInvalidConstraint is returned when a constraint cannot apply to the field type.
	ErrInvalidConstraint = errors.New("constraint does not apply to field type")

	// ErrInvalidDefault is returned when a scalar default does not match the field type.
	ErrInvalidDefault = errors.New("default does not match field type")

	// ErrUnknownField is returned when an option or an after-hook names an undeclared field.
	ErrUnknownField = errors.New("unknown field")

	// ErrDuplicateSchema is returned when a schema name is registered twice.
	ErrDuplicateSchema = errors.New("schema already registered")

	// ErrUnresolvedRef is returned when a schema reference cannot be bound.
	ErrUnresolvedRef = errors.New("unresolved schema reference")

	// ErrCyclicSchema is returned when nested schemas reference each other in a cycle.
	ErrCyclicSchema = errors.New("cyclic schema graph")

	// ErrSchemaNotFound is returned by registry lookups for unknown names.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrModelFrozen is returned by Model.Set outside of after-hooks.
	ErrModelFrozen = errors.New("model is frozen")
)
