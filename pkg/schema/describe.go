package schema

// Description is the serializable metadata of a schema.
type Description struct {
	Name    string             `json:"name" yaml:"name"`
	Summary string             `json:"summary,omitempty" yaml:"summary,omitempty"`
	Fields  []FieldDescription `json:"fields" yaml:"fields"`
	Before  int                `json:"before_hooks,omitempty" yaml:"before_hooks,omitempty"`
	After   int                `json:"after_hooks,omitempty" yaml:"after_hooks,omitempty"`
}

type FieldDescription struct {
	Name        string                  `json:"name" yaml:"name"`
	Type        string                  `json:"type" yaml:"type"`
	Required    bool                    `json:"required" yaml:"required"`
	Default     any                     `json:"default,omitempty" yaml:"default,omitempty"`
	Factory     bool                    `json:"default_factory,omitempty" yaml:"default_factory,omitempty"`
	Constraints []ConstraintDescription `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Hooks       int                     `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Examples    []any                   `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type ConstraintDescription struct {
	Kind   string         `json:"kind" yaml:"kind"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Describe returns the schema metadata in declaration order.
func (s *Schema) Describe() Description {
	d := Description{
		Name:    s.name,
		Summary: s.summary,
		Fields:  make([]FieldDescription, 0, len(s.fields)),
		Before:  len(s.before),
		After:   len(s.after),
	}
	for _, f := range s.fields {
		fd := FieldDescription{
			Name:        f.name,
			Type:        f.typ.String(),
			Required:    f.Required(),
			Factory:     f.factory != nil,
			Hooks:       len(f.hooks),
			Description: f.description,
			Examples:    f.Examples(),
		}
		if v, ok := f.DefaultValue(); ok {
			fd.Default = v
		}
		for _, c := range f.constraints {
			fd.Constraints = append(fd.Constraints, ConstraintDescription{
				Kind:   c.Name(),
				Params: c.Params(),
			})
		}
		d.Fields = append(d.Fields, fd)
	}
	return d
}
