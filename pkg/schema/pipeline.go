package schema

import "maps"

// validate runs the model pipeline:
// before-hooks, field pipeline, construction, after-hooks.
// Paths in the returned report are relative to this schema.
func (s *Schema) validate(raw map[string]any) (*Model, ValidationErrors) {
	input := maps.Clone(raw)
	if input == nil {
		input = make(map[string]any)
	}

	for _, hook := range s.before {
		next, err := hook(input)
		if err != nil {
			return nil, ValidationErrors{hookRejected(nil, err)}
		}
		if next != nil {
			input = next
		}
	}

	values := make(map[string]any, len(s.fields))
	var report ValidationErrors
	for _, f := range s.fields {
		v, errs := f.run(input)
		if len(errs) > 0 {
			report.Merge(errs)
			continue
		}
		values[f.name] = v
	}
	// After-hooks never observe partially invalid data.
	if len(report) > 0 {
		return nil, report
	}

	m := &Model{schema: s, values: values}
	for _, hook := range s.after {
		if err := hook(m); err != nil {
			return nil, ValidationErrors{hookRejected(nil, err)}
		}
	}
	m.frozen = true
	return m, nil
}

// run is the field pipeline: default, coerce, constrain, hooks, nested.
func (f *FieldDescriptor) run(input map[string]any) (any, ValidationErrors) {
	path := Path{f.name}

	raw, present := input[f.name]
	if !present {
		if !f.hasDefault {
			return nil, ValidationErrors{missingRequired(path)}
		}
		v := f.produceDefault()
		if !f.validateDefault {
			return v, nil
		}
		raw = v
	}

	v, errs := coerceValue(f.typ, raw, path)
	if len(errs) > 0 {
		return nil, errs
	}
	if v == nil {
		return nil, nil
	}

	// Every constraint runs so the report lists all of them.
	for _, c := range f.constraints {
		if !c.applies(v) {
			continue
		}
		if violation := c.evaluate(v); violation != nil {
			errs.Add(constraintViolated(path, violation))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	for _, hook := range f.hooks {
		next, err := hook(v)
		if err != nil {
			return nil, ValidationErrors{hookRejected(path, err)}
		}
		v = next
	}

	return nest(f.typ, v, path)
}

// nest validates nested objects inside v depth-first, replacing their raw
// maps with models. Errors carry paths prefixed with path.
func nest(t Type, v any, path Path) (any, ValidationErrors) {
	if v == nil || !t.nested() {
		return v, nil
	}

	switch t.kind {
	case KindObject:
		if m, ok := v.(*Model); ok && m.schema.name == t.RefName() {
			return m, nil
		}
		entries, ok := asMap(v)
		if !ok {
			return nil, ValidationErrors{typeMismatch(path, t, v)}
		}
		m, errs := t.schema.validate(entries)
		if len(errs) > 0 {
			return nil, errs.withPrefix(path)
		}
		return m, nil

	case KindList:
		items, ok := asList(v)
		if !ok {
			return nil, ValidationErrors{typeMismatch(path, t, v)}
		}
		out := make([]any, len(items))
		var errs ValidationErrors
		for i, item := range items {
			nv, itemErrs := nest(*t.elem, item, path.Index(i))
			errs.Merge(itemErrs)
			out[i] = nv
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil

	case KindMap:
		entries, ok := asMap(v)
		if !ok {
			return nil, ValidationErrors{typeMismatch(path, t, v)}
		}
		out := make(map[string]any, len(entries))
		var errs ValidationErrors
		for _, key := range sortedKeys(entries) {
			nv, entryErrs := nest(*t.elem, entries[key], path.Child(key))
			errs.Merge(entryErrs)
			out[key] = nv
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil
	}
	return v, nil
}
