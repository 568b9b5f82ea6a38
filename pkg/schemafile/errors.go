package schemafile

import "errors"

var (
	// ErrInvalidDocument is returned when a document cannot be decoded or
	// declares something the schema package cannot express.
	ErrInvalidDocument = errors.New("invalid schema document")

	// ErrInvalidType is returned for malformed type expressions.
	ErrInvalidType = errors.New("invalid type expression")

	// ErrUnknownName is returned when a document names a format, transform,
	// check or hook that is not available.
	ErrUnknownName = errors.New("unknown name")
)
