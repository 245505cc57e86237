// Package i18n holds the site dictionary and locale-aware formatting.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/webstudio/backend/internal/domain/shared"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Args fills {name} placeholders
type Args map[string]any

// Bundle is a read-only set of flattened dictionaries, one per locale
type Bundle struct {
	dicts    map[shared.Locale]map[string]string
	fallback shared.Locale
	matcher  language.Matcher
	tags     []shared.Locale
}

var supportedTags = []language.Tag{language.Czech, language.German, language.English}

// Load reads the embedded dictionaries
func Load() (*Bundle, error) {
	return LoadFS(localeFS, "locales")
}

// MustLoad is Load that panics; the embedded files are part of the binary
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFS reads <locale>.yaml for every supported locale from dir
func LoadFS(fsys fs.FS, dir string) (*Bundle, error) {
	b := &Bundle{
		dicts:    make(map[shared.Locale]map[string]string, len(shared.SupportedLocales)),
		fallback: shared.DefaultLocale,
		matcher:  language.NewMatcher(supportedTags),
		tags:     []shared.Locale{shared.LocaleCS, shared.LocaleDE, shared.LocaleEN},
	}
	for _, loc := range shared.SupportedLocales {
		data, err := fs.ReadFile(fsys, path.Join(dir, string(loc)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", loc, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s dictionary: %w", loc, err)
		}
		flat := make(map[string]string)
		flatten("", raw, flat)
		b.dicts[loc] = flat
	}
	return b, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// T looks key up in locale, then in the default locale, and finally returns the key itself
func (b *Bundle) T(locale shared.Locale, key string, args ...Args) string {
	msg, ok := b.lookup(locale, key)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fill(msg, args[0])
}

// Has reports whether key exists in locale or the fallback
func (b *Bundle) Has(locale shared.Locale, key string) bool {
	_, ok := b.lookup(locale, key)
	return ok
}

func (b *Bundle) lookup(locale shared.Locale, key string) (string, bool) {
	if d, ok := b.dicts[locale]; ok {
		if msg, ok := d[key]; ok {
			return msg, true
		}
	}
	msg, ok := b.dicts[b.fallback][key]
	return msg, ok
}

// Keys lists the keys of a locale that start with prefix, sorted
func (b *Bundle) Keys(locale shared.Locale, prefix string) []string {
	keys := make([]string, 0)
	for k := range b.dicts[locale] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Negotiate picks the best supported locale for an Accept-Language header
func (b *Bundle) Negotiate(acceptLanguage string) shared.Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	return b.tags[idx]
}

// Tag returns the BCP 47 tag of a locale
func Tag(locale shared.Locale) language.Tag {
	switch locale {
	case shared.LocaleDE:
		return language.German
	case shared.LocaleEN:
		return language.English
	default:
		return language.Czech
	}
}

func fill(msg string, args Args) string {
	if len(args) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
