// Package i18n is a two-level translation table: locale -> key -> text.
// The lookup chain is requested locale, then the default locale, then
// the literal key. A miss is never fatal.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Translator resolves message keys against the loaded locale catalogs.
type Translator struct {
	catalogs      map[string]map[string]string
	defaultLocale string
	log           zerolog.Logger
}

// New builds a Translator from in-memory catalogs. Used directly by
// tests; production code goes through Load.
func New(catalogs map[string]map[string]string, defaultLocale string, logger zerolog.Logger) *Translator {
	return &Translator{
		catalogs:      catalogs,
		defaultLocale: defaultLocale,
		log:           logger.With().Str("component", "i18n").Logger(),
	}
}

// Load reads every *.yaml file in dir as a locale catalog. The file
// basename is the locale tag (en.yaml -> "en").
func Load(dir, defaultLocale string, logger zerolog.Logger) (*Translator, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locales directory %s: %w", dir, err)
	}

	catalogs := make(map[string]map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", name, err)
		}
		catalog := make(map[string]string)
		if err := yaml.Unmarshal(raw, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", name, err)
		}
		locale := strings.TrimSuffix(name, ".yaml")
		catalogs[locale] = catalog
	}

	if _, ok := catalogs[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog in %s", defaultLocale, dir)
	}

	return New(catalogs, defaultLocale, logger), nil
}

// T returns the text for key in the given locale, falling back to the
// default locale and finally to the key itself.
func (t *Translator) T(locale, key string) string {
	if catalog, ok := t.catalogs[locale]; ok {
		if text, ok := catalog[key]; ok {
			return text
		}
	}
	if locale != t.defaultLocale {
		if catalog, ok := t.catalogs[t.defaultLocale]; ok {
			if text, ok := catalog[key]; ok {
				t.log.Warn().Str("key", key).Str("locale", locale).Msg("missing translation, used default locale")
				return text
			}
		}
	}
	t.log.Warn().Str("key", key).Str("locale", locale).Msg("missing translation at all levels")
	return key
}

// Locales returns the loaded locale tags.
func (t *Translator) Locales() []string {
	tags := make([]string, 0, len(t.catalogs))
	for tag := range t.catalogs {
		tags = append(tags, tag)
	}
	return tags
}

// Render substitutes {name}-style placeholders in text.
func Render(text string, args map[string]string) string {
	for k, v := range args {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}
