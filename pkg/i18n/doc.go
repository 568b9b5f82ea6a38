// Package i18n translates validation reports.
//
// Translations are YAML files named after their language, holding a key
// tree whose leaves are templates with %{name} placeholders:
//
//	validation:
//	  ge: "must be greater than or equal to %{ge} (got %{value})"
//
// Default loads the built-in English and German messages for every
// TranslationKey the schema package emits. Load reads additional catalogs
// from any fs.FS. Middleware negotiates the Accept-Language header with
// golang.org/x/text/language and Localize rewrites report messages:
//
//	errs = tr.Localize(i18n.GetLocale(ctx), errs)
package i18n
