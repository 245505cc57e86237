package content

import (
	"regexp"
	"strings"

	"github.com/webstudio/backend/internal/domain/shared"
)

var blockKeyPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// Block is an editable text snippet addressed by a dotted key, e.g. home.hero.title
type Block struct {
	shared.Entity
	Key    string
	Locale shared.Locale
	Value  string
}

// NewBlock validates key and locale
func NewBlock(key string, locale shared.Locale, value string) (*Block, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if len(key) > 150 || !blockKeyPattern.MatchString(key) {
		return nil, shared.NewDomainError("INVALID_KEY", "Block key must be dotted lowercase segments")
	}
	if !locale.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCALE", "Unsupported locale")
	}
	return &Block{
		Entity: shared.NewEntity(),
		Key:    key,
		Locale: locale,
		Value:  value,
	}, nil
}
