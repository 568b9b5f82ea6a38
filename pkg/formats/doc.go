// Package formats provides string format constraints for schema fields:
// email, URL, UUID, phone, IP, slug and enumerations.
//
// Each constructor returns a schema.Constraint that applies to string
// fields and reports violations under its format name:
//
//	schema.Field("email", schema.String(), formats.Email())
//	schema.Field("id", schema.String(), formats.UUID())
//	schema.Field("status", schema.String(), formats.OneOf("draft", "published"))
//
// Lookup resolves formats by name for schemas declared in YAML.
package formats
