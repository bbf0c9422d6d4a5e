// Package i18n loads the block's language packs from embedded YAML files.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lang/*.yaml
var langFS embed.FS

// DefaultLanguage is used when a requested pack does not exist.
const DefaultLanguage = "en"

// Catalog resolves string identifiers to display text.
type Catalog struct {
	language string
	strings  map[string]string
}

// Load reads the pack for language, falling back to the default pack.
func Load(language string) (*Catalog, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = DefaultLanguage
	}

	data, err := langFS.ReadFile("lang/" + language + ".yaml")
	if err != nil {
		if language == DefaultLanguage {
			return nil, fmt.Errorf("failed to read language pack %q: %w", language, err)
		}
		return Load(DefaultLanguage)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse language pack %q: %w", language, err)
	}

	return &Catalog{language: language, strings: values}, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad(language string) *Catalog {
	c, err := Load(language)
	if err != nil {
		panic(err)
	}
	return c
}

// Language returns the loaded pack's code.
func (c *Catalog) Language() string {
	return c.language
}

// GetString returns the text for key, or "[[key]]" when it is undefined.
func (c *Catalog) GetString(key string) string {
	if value, ok := c.strings[key]; ok {
		return value
	}
	return "[[" + key + "]]"
}

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.strings[key]
	return ok
}

// Keys returns every defined key, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.strings))
	for k := range c.strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
