// Package schemafile declares schemas as YAML (or JSON) documents.
//
//	schemas:
//	  - name: Address
//	    fields:
//	      - {name: street, type: string}
//	      - {name: zip, type: string, pattern: '\d{6}'}
//	  - name: User
//	    before:
//	      - {transform: trim, fields: [name]}
//	    fields:
//	      - {name: name, type: string, min_length: 2}
//	      - {name: email, type: string, format: email, default: user@example.com}
//	      - {name: address, type: Address?, optional: true}
//	      - {name: tags, type: list<string>, default: []}
//
// Types use the notation of schema.Type.String. Constraints map to the
// schema package constructors; format, one_of and transform resolve through
// the formats and sanitizer packages. Behaviour that only Go can express
// (after-hooks, custom checks) is referenced by name and supplied with
// WithAfterHook, WithBeforeHook and WithCheck.
package schemafile
