package i18n

import "github.com/dmitrymomot/modelcheck/pkg/schema"

// Localize returns a copy of errs whose messages are rendered from the
// translation of each error's TranslationKey in lang. Errors without a
// key or a translation keep their message, as do hook rejections, whose
// message is the hook's own error text.
func (t *Translator) Localize(lang string, errs schema.ValidationErrors) schema.ValidationErrors {
	if errs == nil {
		return nil
	}
	out := make(schema.ValidationErrors, len(errs))
	for i, e := range errs {
		if e.Kind != schema.HookRejected && e.TranslationKey != "" {
			if msg, ok := t.T(lang, e.TranslationKey, e.TranslationValues); ok {
				e.Message = msg
			}
		}
		out[i] = e
	}
	return out
}
