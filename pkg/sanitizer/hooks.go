package sanitizer

import (
	"sort"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

// Fields returns a before-hook applying transform to the named raw fields.
// Fields that are absent or not strings are left alone so coercion can
// report them.
func Fields(transform func(string) string, names ...string) schema.BeforeHook {
	return func(raw map[string]any) (map[string]any, error) {
		for _, name := range names {
			if s, ok := raw[name].(string); ok {
				raw[name] = transform(s)
			}
		}
		return raw, nil
	}
}

// Hook returns a field option running the transforms, in order, on the
// coerced string value after its constraints pass.
func Hook(transforms ...func(string) string) schema.FieldOption {
	clean := Compose(transforms...)
	return schema.Hook(func(s string) (string, error) {
		return clean(s), nil
	})
}

var named = map[string]func(string) string{
	"trim":            Trim,
	"lower":           ToLower,
	"upper":           ToUpper,
	"title":           Title,
	"nfc":             NFC,
	"collapse_spaces": RemoveExtraWhitespace,
	"single_line":     SingleLine,
	"strip_html":      StripHTML,
	"strip_control":   RemoveControlChars,
	"digits":          KeepDigits,
	"normalize_email": NormalizeEmail,
	"kebab":           ToKebabCase,
	"snake":           ToSnakeCase,
}

// Lookup returns a string transform by name.
func Lookup(name string) (func(string) string, bool) {
	fn, ok := named[name]
	return fn, ok
}

// Names lists the transforms known to Lookup.
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

