package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a set of schema declarations. JSON documents are accepted too,
// since JSON is valid YAML.
type Document struct {
	Schemas []SchemaSpec `yaml:"schemas"`
}

// SchemaSpec declares one schema. Fields keep their document order.
type SchemaSpec struct {
	Name    string       `yaml:"name"`
	Summary string       `yaml:"summary"`
	Before  []BeforeSpec `yaml:"before"`
	Fields  []FieldSpec  `yaml:"fields"`
	After   []string     `yaml:"after"`
}

// BeforeSpec is either a named sanitizer transform applied to raw fields,
// or a before-hook supplied by the caller with WithBeforeHook.
type BeforeSpec struct {
	Transform string   `yaml:"transform"`
	Fields    []string `yaml:"fields"`
	Hook      string   `yaml:"hook"`
}

// FieldSpec declares one field.
//
//	- name: price
//	  type: float
//	  ge: 10
//	  le: 1000
//	  description: Price in USD
type FieldSpec struct {
	Name            string     `yaml:"name"`
	Type            string     `yaml:"type"`
	Optional        bool       `yaml:"optional"`
	Default         *yaml.Node `yaml:"default"`
	ValidateDefault bool       `yaml:"validate_default"`

	MinLength *int     `yaml:"min_length"`
	MaxLength *int     `yaml:"max_length"`
	Gt        *float64 `yaml:"gt"`
	Ge        *float64 `yaml:"ge"`
	Lt        *float64 `yaml:"lt"`
	Le        *float64 `yaml:"le"`
	Pattern   string   `yaml:"pattern"`
	Format    string   `yaml:"format"`
	OneOf     []string `yaml:"one_of"`
	Checks    []string `yaml:"checks"`
	Transform []string `yaml:"transform"`

	Description string `yaml:"description"`
	Examples    []any  `yaml:"examples"`
}

// Parse decodes a document. Unknown keys are rejected so typos in
// constraint names do not silently drop a rule.
func Parse(data []byte) (*Document, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes a document from r.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if len(doc.Schemas) == 0 {
		return nil, fmt.Errorf("%w: no schemas declared", ErrInvalidDocument)
	}
	return &doc, nil
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
