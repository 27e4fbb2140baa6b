package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openchain-academy/academy-backend/internal/content/store"
	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
)

func newTestContentService(t *testing.T) ContentService {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"docs/en/lessons/accounts.md":     "---\ntitle: Accounts\n---\n# Rent\n\na\n",
		"docs/en/lessons/transactions.md": "---\ntitle: Transactions\n---\n# Fees\n\nb\n",
		"docs/es/lessons/accounts.md":     "---\ntitle: Cuentas\n---\n# Rent\n\nc\n",
		"locales/en.json":                 `{"nav": {"title": "Academy"}}`,
		"locales/es.json":                 `{}`,
		"catalog/courses.yaml":            "courses:\n  - id: core\n    title: Core\n    lessons:\n      - lessons/accounts\n",
		"catalog/challenges.yaml":         "challenges:\n  - id: core-done\n    title: Core Done\n    lessons:\n      - lessons/accounts\n",
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	st := store.New(logger.Nop(), root, "en")
	if err := st.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return NewContentService(logger.Nop(), st)
}

func TestContentService_Documents(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	doc, err := svc.GetDocument(ctx, "en", "lessons/accounts")
	if err != nil || doc.Title != "Accounts" {
		t.Fatalf("GetDocument = %+v, %v", doc, err)
	}
	if _, err := svc.GetDocument(ctx, "en", "lessons/nope"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}

	ids, err := svc.ListDocuments(ctx, "en")
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListDocuments(en) = %v, %v", ids, err)
	}
	if ids[0] != "lessons/accounts" || ids[1] != "lessons/transactions" {
		t.Errorf("ids not sorted: %v", ids)
	}
}

func TestContentService_LocaleFallsBackToDefaultGraph(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	// es has its own graph, with fewer documents.
	ids, err := svc.ListDocuments(ctx, "es")
	if err != nil || len(ids) != 1 {
		t.Fatalf("ListDocuments(es) = %v, %v", ids, err)
	}

	// de has no content at all: serve the default locale's documents.
	doc, err := svc.GetDocument(ctx, "de", "lessons/transactions")
	if err != nil || doc.Locale != "en" {
		t.Fatalf("GetDocument(de) = %+v, %v", doc, err)
	}
}

func TestContentService_Catalog(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	courses, err := svc.ListCourses(ctx)
	if err != nil || len(courses) != 1 || courses[0].ID != "core" {
		t.Fatalf("ListCourses = %v, %v", courses, err)
	}
	if _, err := svc.GetCourse(ctx, "nope"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("unknown course err = %v", err)
	}

	ch, err := svc.GetChallenge(ctx, "core-done")
	if err != nil || ch.Title != "Core Done" {
		t.Fatalf("GetChallenge = %+v, %v", ch, err)
	}
}

func TestContentService_Strings(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	// es table is empty: every lookup falls back to en.
	got, err := svc.ResolveString(ctx, "nav.title", "es")
	if err != nil || got != "Academy" {
		t.Fatalf("ResolveString = %q, %v", got, err)
	}
	if _, err := svc.ResolveString(ctx, "nav.missing", "es"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("missing key err = %v", err)
	}

	table, err := svc.LocaleTable(ctx, "es")
	if err != nil || table["nav.title"] != "Academy" {
		t.Fatalf("LocaleTable = %v, %v", table, err)
	}
}
