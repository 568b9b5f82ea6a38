package formats

import (
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

var (
	// E.164 with optional leading plus.
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	alphanumericRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	slugRegex         = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Email accepts a bare RFC 5322 address whose domain has at least one dot.
// Display-name forms such as "Ann <ann@example.com>" are rejected.
func Email() schema.Constraint {
	return schema.CheckFunc("email", func(value string) error {
		if !isEmail(value) {
			return errors.New("must be a valid email address")
		}
		return nil
	})
}

func isEmail(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}

	local, domain, ok := strings.Cut(addr.Address, "@")
	if !ok || local == "" {
		return false
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	for part := range strings.SplitSeq(domain, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// URL accepts absolute URLs with a scheme and a host.
func URL() schema.Constraint {
	return schema.CheckFunc("url", func(value string) error {
		if _, ok := parseURL(value); !ok {
			return errors.New("must be a valid URL")
		}
		return nil
	})
}

// URLWithScheme is URL restricted to the given schemes.
func URLWithScheme(schemes ...string) schema.Constraint {
	msg := fmt.Sprintf("must be a valid URL with scheme: %s", strings.Join(schemes, ", "))
	return schema.CheckFunc("url_scheme", func(value string) error {
		u, ok := parseURL(value)
		if !ok || !slices.Contains(schemes, u.Scheme) {
			return errors.New(msg)
		}
		return nil
	})
}

func parseURL(value string) (*url.URL, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}
	u, err := url.ParseRequestURI(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// UUID accepts the canonical 36-character hyphenated form.
func UUID() schema.Constraint {
	return schema.CheckFunc("uuid", func(value string) error {
		if !isUUID(value) {
			return errors.New("must be a valid UUID")
		}
		return nil
	})
}

// NonNilUUID is UUID that also rejects the all-zero UUID.
func NonNilUUID() schema.Constraint {
	return schema.CheckFunc("uuid_not_nil", func(value string) error {
		if !isUUID(value) {
			return errors.New("must be a valid UUID")
		}
		if uuid.MustParse(value) == uuid.Nil {
			return errors.New("UUID cannot be nil")
		}
		return nil
	})
}

func isUUID(value string) bool {
	// Cheap shape check before parsing; uuid.Parse also accepts urn and braced forms.
	if len(value) != 36 {
		return false
	}
	if value[8] != '-' || value[13] != '-' || value[18] != '-' || value[23] != '-' {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// Phone accepts international numbers in E.164 form. Spaces and dashes are
// ignored.
func Phone() schema.Constraint {
	return schema.CheckFunc("phone", func(value string) error {
		cleaned := strings.NewReplacer(" ", "", "-", "").Replace(value)
		if len(cleaned) < 7 || !phoneRegex.MatchString(cleaned) {
			return errors.New("must be a valid phone number in international format")
		}
		return nil
	})
}

func IP() schema.Constraint {
	return schema.CheckFunc("ip", func(value string) error {
		if net.ParseIP(value) == nil {
			return errors.New("must be a valid IP address")
		}
		return nil
	})
}

func IPv4() schema.Constraint {
	return schema.CheckFunc("ipv4", func(value string) error {
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() == nil || strings.Contains(value, ":") {
			return errors.New("must be a valid IPv4 address")
		}
		return nil
	})
}

func IPv6() schema.Constraint {
	return schema.CheckFunc("ipv6", func(value string) error {
		if net.ParseIP(value) == nil || !strings.Contains(value, ":") {
			return errors.New("must be a valid IPv6 address")
		}
		return nil
	})
}

func Alphanumeric() schema.Constraint {
	return schema.CheckFunc("alphanumeric", func(value string) error {
		if !alphanumericRegex.MatchString(value) {
			return errors.New("must contain only letters and numbers")
		}
		return nil
	})
}

// Slug accepts lowercase URL-safe slugs without leading, trailing or
// repeated hyphens.
func Slug() schema.Constraint {
	return schema.CheckFunc("slug", func(value string) error {
		if !slugRegex.MatchString(value) {
			return errors.New("must be a valid slug (lowercase letters, numbers, and hyphens only)")
		}
		return nil
	})
}

// OneOf accepts exactly one of the given strings.
func OneOf(options ...string) schema.Constraint {
	msg := fmt.Sprintf("must be one of: %s", strings.Join(options, ", "))
	return schema.CheckFunc("one_of", func(value string) error {
		if !slices.Contains(options, value) {
			return errors.New(msg)
		}
		return nil
	})
}

// OneOfFold is OneOf with case-insensitive comparison.
func OneOfFold(options ...string) schema.Constraint {
	msg := fmt.Sprintf("must be one of: %s", strings.Join(options, ", "))
	return schema.CheckFunc("one_of", func(value string) error {
		for _, opt := range options {
			if strings.EqualFold(opt, value) {
				return nil
			}
		}
		return errors.New(msg)
	})
}

var named = map[string]func() schema.Constraint{
	"email":        Email,
	"url":          URL,
	"uuid":         UUID,
	"uuid_not_nil": NonNilUUID,
	"phone":        Phone,
	"ip":           IP,
	"ipv4":         IPv4,
	"ipv6":         IPv6,
	"alphanumeric": Alphanumeric,
	"slug":         Slug,
}

// Lookup returns the named format constraint, for schemas declared as data.
func Lookup(name string) (schema.Constraint, bool) {
	fn, ok := named[name]
	if !ok {
		return schema.Constraint{}, false
	}
	return fn(), true
}

// Names lists the formats known to Lookup.
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
