package locale

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
)

// Bundle maps dotted string keys to locale-specific UI strings. Tables are
// loaded once per locale at startup (or snapshot rebuild) and are read-only
// afterwards; only the fallback counters mutate.
type Bundle struct {
	log           *logger.Logger
	defaultLocale string
	tables        map[string]map[string]string

	mu        sync.Mutex
	fallbacks map[string]uint64
}

func NewBundle(log *logger.Logger, defaultLocale string) *Bundle {
	return &Bundle{
		log:           log.With("component", "LocaleBundle"),
		defaultLocale: defaultLocale,
		tables:        make(map[string]map[string]string),
		fallbacks:     make(map[string]uint64),
	}
}

// Load parses one locale's JSON object. Nested objects flatten to dotted
// keys ("nav.challenges.title"); scalar values stringify.
func (b *Bundle) Load(locale string, raw []byte) error {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("locale %s: %w", locale, err)
	}
	table := make(map[string]string)
	flatten("", root, table)
	b.tables[locale] = table
	return nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(key, t, out)
		case string:
			out[key] = t
		default:
			out[key] = fmt.Sprint(t)
		}
	}
}

// DefaultLocale returns the locale used for fallback resolution.
func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Locales returns the loaded locale codes.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.tables))
	for code := range b.tables {
		out = append(out, code)
	}
	return out
}

// Resolve returns the localized string for key, falling back to the default
// locale when the requested locale lacks it (recording one fallback event).
// It fails only when the key is absent from the default locale as well.
func (b *Bundle) Resolve(key, locale string) (string, error) {
	if table, ok := b.tables[locale]; ok {
		if s, ok := table[key]; ok {
			return s, nil
		}
	}
	if locale != b.defaultLocale {
		if s, ok := b.tables[b.defaultLocale][key]; ok {
			b.recordFallback(key, locale)
			return s, nil
		}
	}
	return "", fmt.Errorf("locale key %q (%s): %w", key, locale, pkgerrors.ErrNotFound)
}

// Table returns the full flattened table for a locale, keys missing in the
// requested locale filled from the default locale.
func (b *Bundle) Table(locale string) (map[string]string, error) {
	def, ok := b.tables[b.defaultLocale]
	if !ok {
		return nil, fmt.Errorf("default locale %q: %w", b.defaultLocale, pkgerrors.ErrNotFound)
	}
	out := make(map[string]string, len(def))
	for k, v := range def {
		out[k] = v
	}
	if locale == b.defaultLocale {
		return out, nil
	}
	table, ok := b.tables[locale]
	if !ok {
		return nil, fmt.Errorf("locale %q: %w", locale, pkgerrors.ErrNotFound)
	}
	for k, v := range table {
		out[k] = v
	}
	return out, nil
}

// FallbackCount reports how many resolutions fell back to the default
// locale for the given requested locale.
func (b *Bundle) FallbackCount(locale string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fallbacks[locale]
}

func (b *Bundle) recordFallback(key, locale string) {
	b.mu.Lock()
	b.fallbacks[locale]++
	b.mu.Unlock()
	b.log.Debug("locale fallback", "key", key, "requested_locale", locale, "fallback_locale", b.defaultLocale)
}
