package shared

import "strings"

// Locale is a supported site language
type Locale string

const (
	LocaleCS Locale = "cs"
	LocaleDE Locale = "de"
	LocaleEN Locale = "en"

	DefaultLocale = LocaleCS
)

// SupportedLocales lists site languages in display order
var SupportedLocales = []Locale{LocaleCS, LocaleDE, LocaleEN}

// IsValid reports whether the locale is supported
func (l Locale) IsValid() bool {
	switch l {
	case LocaleCS, LocaleDE, LocaleEN:
		return true
	}
	return false
}

func (l Locale) String() string {
	return string(l)
}

// ParseLocale normalizes s ("DE", "de-AT", " cs ") to a supported locale
func ParseLocale(s string) (Locale, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	l := Locale(s)
	if !l.IsValid() {
		return "", NewDomainError("INVALID_LOCALE", "Unsupported locale: "+s)
	}
	return l, nil
}

// LocaleOrDefault parses s and falls back to DefaultLocale
func LocaleOrDefault(s string) Locale {
	l, err := ParseLocale(s)
	if err != nil {
		return DefaultLocale
	}
	return l
}
