// Package schema is a declarative record validation engine. A Schema
// describes a record's fields, their types, constraints, defaults and
// cross-field invariants; Validate turns raw structured data into either a
// validated Model or a ValidationErrors report listing every violation.
//
// # Architecture
//
// Validation of one input runs through a fixed pipeline:
//
//   - Model pipeline: before-hooks rewrite or reject the raw input, then
//     every field runs through the field pipeline, then the Model is
//     constructed and after-hooks check cross-field invariants.
//   - Field pipeline, per field in declaration order: default resolution,
//     coercion, every constraint, field hooks, nested schema recursion.
//   - Constraints (MinLen, MaxLen, Range and friends, Pattern, Check) are
//     pure predicates over a single value.
//   - Coercion normalizes raw values under strict, non-lossy rules: strings
//     parse into numbers only when the whole string is a number, and floats
//     never become ints.
//
// Errors are aggregated, never thrown mid-pipeline. One invalid field does
// not stop the others; after-hooks run only when every field is valid, so a
// report contains either field problems or a single whole-record rejection.
//
// Schemas are immutable once built and safe for concurrent validations. A
// Registry stores schemas by name, binds Ref types and rejects cyclic
// schema graphs at registration time.
//
// # Usage
//
//	book := schema.MustNew("Book",
//	    schema.Field("title", schema.String(), schema.MinLen(3)),
//	    schema.Field("pages", schema.Int(), schema.Positive()),
//	    schema.Field("price", schema.Float(), schema.Between(10, 1000)),
//	)
//
//	m, err := book.Validate(map[string]any{"title": "Dune", "pages": 412, "price": "9.5"})
//	if errs := schema.ExtractValidationErrors(err); errs != nil {
//	    for _, rec := range errs.Records() {
//	        fmt.Println(rec.Path, rec.Kind, rec.Message)
//	    }
//	}
//
// # Values
//
// Coerced values use one representation per type: string, int64, float64,
// bool, []any, map[string]any and *Model for nested records. Defaults are
// used as-is; non-scalar defaults must come from DefaultFunc so each
// validation gets a fresh instance.
package schema
