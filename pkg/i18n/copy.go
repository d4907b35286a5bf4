package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Copy holds page copy per language and resolves keys with fallback to the
// default language and then to the key itself.
type Copy struct {
	translations map[string]map[string]any
	defaultLang  string
	logger       *slog.Logger
	logMissing   bool
}

// Option configures a Copy.
type Option func(*Copy)

// WithDefaultLanguage sets the fallback language. Default is "en".
func WithDefaultLanguage(lang string) Option {
	return func(c *Copy) {
		if lang != "" {
			c.defaultLang = lang
		}
	}
}

// WithLogger sets the logger used to report missing keys.
func WithLogger(l *slog.Logger) Option {
	return func(c *Copy) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMissingKeysLogging logs keys missing from the requested language at debug level.
func WithMissingKeysLogging(enabled bool) Option {
	return func(c *Copy) { c.logMissing = enabled }
}

// LoadCopy loads the embedded locales.
func LoadCopy(opts ...Option) (*Copy, error) {
	return NewCopy(localesFS, "locales", opts...)
}

// MustLoadCopy is like LoadCopy but panics on error.
func MustLoadCopy(opts ...Option) *Copy {
	c, err := LoadCopy(opts...)
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	return c
}

// NewCopy reads every .yaml or .yml file in dir. Each file holds one or more
// top-level language codes mapping to nested key trees; files are merged.
func NewCopy(fsys fs.FS, dir string, opts ...Option) (*Copy, error) {
	c := &Copy{
		defaultLang: DefaultLanguage,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadDirectory, err)
	}

	all := make(map[string]map[string]any)
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Join(ErrFailedToReadFile, err)
		}
		parsed, err := parseYAML(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		for lang, tree := range parsed {
			if all[lang] == nil {
				all[lang] = make(map[string]any)
			}
			maps.Copy(all[lang], tree)
		}
	}
	if len(all) == 0 {
		return nil, ErrNoTranslations
	}
	if _, ok := all[c.defaultLang]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotSupported, c.defaultLang)
	}

	c.translations = all
	return c, nil
}

func parseYAML(content []byte) (map[string]map[string]any, error) {
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, errors.Join(ErrFailedToParseYAML, err)
	}
	result := make(map[string]map[string]any, len(data))
	for lang, val := range data {
		tree, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: language %q must map to keys, got %T", ErrFailedToParseYAML, lang, val)
		}
		result[strings.ToLower(lang)] = tree
	}
	return result, nil
}

// Languages returns the languages present in the loaded copy.
func (c *Copy) Languages() []string {
	return slices.Sorted(maps.Keys(c.translations))
}

// Has reports whether lang defines key, without fallback.
func (c *Copy) Has(lang, key string) bool {
	_, ok := c.lookup(lang, key)
	return ok
}

// T returns the copy for key in lang. Args are name/value pairs substituted
// into %{name} placeholders:
//
//	c.T("fr", "plan.trial", "days", "7")
func (c *Copy) T(lang, key string, args ...string) string {
	if s, ok := c.lookup(lang, key); ok {
		return substitute(s, args)
	}
	if c.logMissing {
		c.logger.Debug("copy key missing", slog.String("lang", lang), slog.String("key", key))
	}
	if s, ok := c.lookup(c.defaultLang, key); ok {
		return substitute(s, args)
	}
	return key
}

// Strings resolves several keys at once.
func (c *Copy) Strings(lang string, keys ...string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = c.T(lang, k)
	}
	return out
}

// lookup walks dot-separated key parts through nested maps.
func (c *Copy) lookup(lang, key string) (string, bool) {
	node, ok := c.translations[lang]
	if !ok || key == "" {
		return "", false
	}
	parts := strings.Split(key, ".")
	for i, part := range parts {
		val, ok := node[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			s, ok := val.(string)
			return s, ok
		}
		if node, ok = val.(map[string]any); !ok {
			return "", false
		}
	}
	return "", false
}

func substitute(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "%{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
