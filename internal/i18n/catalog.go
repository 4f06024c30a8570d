package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	"finanalytics/pkg/contracts/domain"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Vars are the placeholder substitutions applied by Text
type Vars map[string]string

// Catalog holds the flattened message tables for every supported language
type Catalog struct {
	messages map[domain.Language]map[string]string
	lists    map[domain.Language]map[string][]string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded locale files.
// It panics if the embedded files are malformed since that is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCatalog
}

// Load parses the embedded locale files
func Load() (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	c := &Catalog{
		messages: make(map[domain.Language]map[string]string),
		lists:    make(map[domain.Language]map[string][]string),
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		lang := domain.Language(strings.TrimSuffix(name, ".yaml"))
		if err := c.add(lang, data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	if _, ok := c.messages[domain.LanguageEnglish]; !ok {
		return nil, fmt.Errorf("english locale missing")
	}
	return c, nil
}

// Parse builds a single-language catalog from raw YAML. Used for overrides and tests.
func Parse(lang domain.Language, data []byte) (*Catalog, error) {
	c := &Catalog{
		messages: make(map[domain.Language]map[string]string),
		lists:    make(map[domain.Language]map[string][]string),
	}
	if err := c.add(lang, data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) add(lang domain.Language, data []byte) error {
	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	msgs := make(map[string]string)
	lists := make(map[string][]string)
	if err := flatten("", raw, msgs, lists); err != nil {
		return err
	}
	c.messages[lang] = msgs
	c.lists[lang] = lists
	return nil
}

func flatten(prefix string, node map[interface{}]interface{}, msgs map[string]string, lists map[string][]string) error {
	for k, v := range node {
		key := fmt.Sprint(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		switch val := v.(type) {
		case map[interface{}]interface{}:
			if err := flatten(key, val, msgs, lists); err != nil {
				return err
			}
		case []interface{}:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, fmt.Sprint(item))
			}
			lists[key] = items
		case string:
			msgs[key] = val
		case nil:
			msgs[key] = ""
		default:
			msgs[key] = fmt.Sprint(val)
		}
	}
	return nil
}

// Has reports whether key exists in the given language or in English
func (c *Catalog) Has(lang domain.Language, key string) bool {
	if _, ok := c.messages[lang][key]; ok {
		return true
	}
	_, ok := c.messages[domain.LanguageEnglish][key]
	return ok
}

// Text returns the message for key with vars substituted.
// Missing keys fall back to English, then to the key itself.
func (c *Catalog) Text(lang domain.Language, key string, vars Vars) string {
	msg, ok := c.messages[lang][key]
	if !ok {
		msg, ok = c.messages[domain.LanguageEnglish][key]
	}
	if !ok {
		return key
	}
	if len(vars) == 0 {
		return msg
	}

	// Sorted so replacement is deterministic when one value contains another placeholder
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(vars))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", vars[name])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// List returns a list message, falling back to English
func (c *Catalog) List(lang domain.Language, key string) []string {
	if items, ok := c.lists[lang][key]; ok {
		return append([]string(nil), items...)
	}
	return append([]string(nil), c.lists[domain.LanguageEnglish][key]...)
}

// Languages returns the loaded languages in sorted order
func (c *Catalog) Languages() []domain.Language {
	langs := make([]domain.Language, 0, len(c.messages))
	for l := range c.messages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Keys returns the sorted message keys of a language
func (c *Catalog) Keys(lang domain.Language) []string {
	keys := make([]string, 0, len(c.messages[lang]))
	for k := range c.messages[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
