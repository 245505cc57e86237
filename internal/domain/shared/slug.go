package shared

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	specialLetters = strings.NewReplacer("ß", "ss", "ł", "l", "đ", "d", "æ", "ae", "ø", "o")
)

// Slugify converts a title into a URL slug: "Tvorba webů Brno" -> "tvorba-webu-brno"
func Slugify(s string) string {
	s = specialLetters.Replace(strings.ToLower(s))
	// transformers are stateful, so each call builds its own chain
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValidSlug reports whether s is already a well-formed slug
func IsValidSlug(s string) bool {
	return len(s) <= 120 && slugPattern.MatchString(s)
}

// NormalizeSlug returns slug if well-formed, otherwise the slugified fallback
func NormalizeSlug(slug, fallback string) (string, error) {
	if slug == "" {
		slug = Slugify(fallback)
	}
	if !IsValidSlug(slug) {
		return "", NewDomainError("INVALID_SLUG", "Slug must contain only lowercase letters, digits and hyphens")
	}
	return slug, nil
}
