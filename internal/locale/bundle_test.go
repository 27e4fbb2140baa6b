package locale

import (
	"errors"
	"testing"

	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
)

func newTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b := NewBundle(logger.Nop(), "en")
	if err := b.Load("en", []byte(`{
		"nav": {
			"courses": {"title": "Courses"},
			"challenges": {"title": "Challenges"}
		},
		"progress": {"complete": "Completed", "count": 3}
	}`)); err != nil {
		t.Fatalf("load en: %v", err)
	}
	if err := b.Load("es", []byte(`{
		"nav": {"courses": {"title": "Cursos"}}
	}`)); err != nil {
		t.Fatalf("load es: %v", err)
	}
	return b
}

func TestBundle_Load(t *testing.T) {
	b := newTestBundle(t)

	got, err := b.Resolve("nav.challenges.title", "en")
	if err != nil || got != "Challenges" {
		t.Errorf("nested key = %q, %v", got, err)
	}
	// Non-string scalars stringify.
	got, err = b.Resolve("progress.count", "en")
	if err != nil || got != "3" {
		t.Errorf("scalar key = %q, %v", got, err)
	}

	if err := b.Load("fr", []byte("{not json")); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestBundle_ResolveFallback(t *testing.T) {
	b := newTestBundle(t)

	// Present in the requested locale: no fallback.
	got, err := b.Resolve("nav.courses.title", "es")
	if err != nil || got != "Cursos" {
		t.Fatalf("es key = %q, %v", got, err)
	}
	if n := b.FallbackCount("es"); n != 0 {
		t.Fatalf("fallbacks after direct hit = %d", n)
	}

	// Missing in es, present in en: default value plus exactly one event.
	got, err = b.Resolve("nav.challenges.title", "es")
	if err != nil || got != "Challenges" {
		t.Fatalf("fallback value = %q, %v", got, err)
	}
	if n := b.FallbackCount("es"); n != 1 {
		t.Fatalf("fallbacks after one fallback = %d", n)
	}

	// Missing everywhere: NotFound, and no event recorded.
	if _, err := b.Resolve("nav.missing", "es"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n := b.FallbackCount("es"); n != 1 {
		t.Errorf("failed resolve must not count as fallback, got %d", n)
	}

	// Unknown locale resolves entirely through the default table.
	got, err = b.Resolve("progress.complete", "de")
	if err != nil || got != "Completed" {
		t.Fatalf("unknown-locale value = %q, %v", got, err)
	}
	if n := b.FallbackCount("de"); n != 1 {
		t.Errorf("fallbacks for unknown locale = %d", n)
	}
}

func TestBundle_Table(t *testing.T) {
	b := newTestBundle(t)

	table, err := b.Table("es")
	if err != nil {
		t.Fatalf("Table(es): %v", err)
	}
	if table["nav.courses.title"] != "Cursos" {
		t.Errorf("locale value not overlaid: %q", table["nav.courses.title"])
	}
	if table["nav.challenges.title"] != "Challenges" {
		t.Errorf("default value not filled: %q", table["nav.challenges.title"])
	}
	if len(table) != 4 {
		t.Errorf("table size = %d: %v", len(table), table)
	}

	if _, err := b.Table("de"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("unloaded locale table err = %v", err)
	}
}
