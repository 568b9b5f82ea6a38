package i18n

import "errors"

var (
	ErrNoTranslations      = errors.New("i18n: no translations loaded")
	ErrInvalidTranslations = errors.New("i18n: invalid translations")
)
