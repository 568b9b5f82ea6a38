// Package sanitizer provides string transforms for cleaning user input before
// or after validation, and adapters that plug them into schemas.
//
// Transforms are plain func(string) string values that can be combined with
// Apply and Compose:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.RemoveExtraWhitespace, sanitizer.ToLower)
//	clean("  Mixed CASE   Input\n") // "mixed case input"
//
// # Schemas
//
// Fields turns a transform into a before-hook that rewrites raw fields before
// coercion and constraints see them:
//
//	schema.MustNew("Product",
//	    schema.Field("name", schema.String(), schema.MinLen(1)),
//	    schema.Before(sanitizer.Fields(sanitizer.Trim, "name")),
//	)
//
// Hook turns transforms into a field hook that runs after the field's
// constraints pass. Lookup resolves transforms by name for schemas declared
// in YAML.
//
// Unicode-aware transforms (Title, NFC) use golang.org/x/text. All helpers
// are stateless and safe for concurrent use.
package sanitizer
