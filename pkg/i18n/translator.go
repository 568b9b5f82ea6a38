package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/modelcheck/pkg/logger"
)

// DefaultLanguage is used when negotiation finds no better match.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var builtin embed.FS

// Translator resolves dotted keys such as "validation.ge" to message
// templates per language. It is immutable after construction.
type Translator struct {
	translations map[string]map[string]any
	langs        []string
	order        []string
	matcher      language.Matcher
	defaultLang  string
	logger       *slog.Logger
}

type Option func(*Translator)

// WithDefaultLanguage sets the language returned by Match when nothing in
// the header is supported. It must be one of the loaded languages.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) { t.defaultLang = strings.ToLower(lang) }
}

// WithLogger logs lookups of missing keys at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTranslator builds a translator from language -> nested key map.
func NewTranslator(translations map[string]map[string]any, opts ...Option) (*Translator, error) {
	if len(translations) == 0 {
		return nil, ErrNoTranslations
	}
	t := &Translator{
		translations: make(map[string]map[string]any, len(translations)),
		defaultLang:  DefaultLanguage,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	for lang, keys := range translations {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: language %q: %w", ErrInvalidTranslations, lang, err)
		}
		t.translations[tag.String()] = keys
	}
	for lang := range t.translations {
		t.langs = append(t.langs, lang)
	}
	slices.Sort(t.langs)

	if _, ok := t.translations[t.defaultLang]; !ok {
		return nil, fmt.Errorf("%w: default language %q has no translations", ErrInvalidTranslations, t.defaultLang)
	}

	// The default language goes first so the matcher falls back to it.
	t.order = append(t.order, t.defaultLang)
	for _, lang := range t.langs {
		if lang != t.defaultLang {
			t.order = append(t.order, lang)
		}
	}
	tags := make([]language.Tag, len(t.order))
	for i, lang := range t.order {
		tags[i] = language.MustParse(lang)
	}
	t.matcher = language.NewMatcher(tags)
	return t, nil
}

// Load reads every *.yaml / *.yml file of fsys. Each file maps a language to
// its key tree; files may contribute to the same language.
func Load(fsys fs.FS, opts ...Option) (*Translator, error) {
	all := make(map[string]map[string]any)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		lang := strings.TrimSuffix(path.Base(p), path.Ext(p))
		var keys map[string]any
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidTranslations, p, err)
		}
		if all[lang] == nil {
			all[lang] = make(map[string]any)
		}
		merge(all[lang], keys)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewTranslator(all, opts...)
}

// Default returns a translator over the built-in English and German
// validation messages.
func Default(opts ...Option) *Translator {
	sub, err := fs.Sub(builtin, "locales")
	if err != nil {
		panic(err)
	}
	t, err := Load(sub, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Languages lists the loaded languages in sorted order.
func (t *Translator) Languages() []string { return slices.Clone(t.langs) }

// Match negotiates an Accept-Language header value against the loaded
// languages.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.defaultLang
	}
	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return t.defaultLang
	}
	return t.order[idx]
}

// T renders the template stored under key for lang, substituting %{name}
// placeholders from params. ok is false when no template exists.
func (t *Translator) T(lang, key string, params map[string]any) (msg string, ok bool) {
	keys, found := t.translations[lang]
	if !found {
		keys = t.translations[t.defaultLang]
	}
	tmpl, ok := lookup(keys, key)
	if !ok {
		t.logger.Debug("missing translation", slog.String("lang", lang), slog.String("key", key))
		return "", false
	}
	return render(tmpl, params), true
}

func lookup(m map[string]any, key string) (string, bool) {
	current := m
	parts := strings.Split(key, ".")
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			s, ok := v.(string)
			return s, ok
		}
		if current, ok = v.(map[string]any); !ok {
			return "", false
		}
	}
	return "", false
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, isMap := v.(map[string]any)
		existing, hasMap := dst[k].(map[string]any)
		if isMap && hasMap {
			merge(existing, sub)
			continue
		}
		dst[k] = v
	}
}

var placeholder = regexp.MustCompile(`%\{([^}]+)\}`)

// render keeps placeholders without a parameter as they are.
func render(tmpl string, params map[string]any) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		if v, ok := params[match[2:len(match)-1]]; ok {
			return fmt.Sprint(v)
		}
		return match
	})
}
