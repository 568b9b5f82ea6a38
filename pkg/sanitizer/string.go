package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	dotRegex        = regexp.MustCompile(`\.+`)
)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

func ToLower(s string) string {
	return strings.ToLower(s)
}

func ToUpper(s string) string {
	return strings.ToUpper(s)
}

// Title upper-cases the first letter of every word using Unicode word
// boundaries, e.g. "o'neil is here" becomes "O'neil Is Here".
func Title(s string) string {
	// Casers keep state between calls and are not safe for concurrent use.
	return cases.Title(language.Und).String(s)
}

// NFC normalizes s to Unicode canonical composition so that visually equal
// strings compare and measure equally.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// RemoveExtraWhitespace collapses runs of whitespace into one space and trims.
func RemoveExtraWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// SingleLine replaces line breaks with spaces and collapses whitespace.
func SingleLine(s string) string {
	return RemoveExtraWhitespace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

// RemoveControlChars drops control characters except newlines and tabs.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// StripHTML removes tags and unescapes entities.
func StripHTML(s string) string {
	return html.UnescapeString(htmlTagRegex.ReplaceAllString(s, ""))
}

func KeepDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// MaxLength returns a transform truncating strings to n characters.
func MaxLength(n int) func(string) string {
	return func(s string) string {
		if n <= 0 {
			return ""
		}
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n])
	}
}

// NormalizeEmail trims and lower-cases an address and collapses repeated
// dots in the local part. Strings without exactly one @ are only trimmed
// and lower-cased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}
	local = strings.Trim(dotRegex.ReplaceAllString(local, "."), ".")
	return local + "@" + domain
}

// ToKebabCase lower-cases s and joins its alphanumeric runs with hyphens.
func ToKebabCase(s string) string {
	return joinWords(s, '-')
}

// ToSnakeCase lower-cases s and joins its alphanumeric runs with underscores.
func ToSnakeCase(s string) string {
	return joinWords(s, '_')
}

func joinWords(s string, sep rune) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteRune(sep)
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
