package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openchain-academy/academy-backend/internal/content"
	"github.com/openchain-academy/academy-backend/internal/locale"
	"github.com/openchain-academy/academy-backend/internal/logger"
)

// Snapshot is one fully-built, immutable view of the content graph: every
// locale's documents, the resolved cross-references, the course/challenge
// catalog and the locale string tables. Readers hold a *Snapshot and never
// observe a partially-built graph; reloads swap in a fresh one.
type Snapshot struct {
	Version  uint64
	Graphs   map[string]*content.Graph
	Locales  *locale.Bundle
	Catalog  *content.Catalog
	Warnings []content.Warning
	BuiltAt  time.Time
}

// Graph returns the content graph for a locale.
func (s *Snapshot) Graph(loc string) (*content.Graph, bool) {
	g, ok := s.Graphs[loc]
	return g, ok
}

// HasDocument reports whether any locale carries the document id. Progress
// is tracked against locale-independent document ids.
func (s *Snapshot) HasDocument(id string) bool {
	for _, g := range s.Graphs {
		if _, ok := g.Document(id); ok {
			return true
		}
	}
	return false
}

// Challenge looks a challenge up in the catalog.
func (s *Snapshot) Challenge(id string) (*content.Challenge, bool) {
	ch, ok := s.Catalog.Challenges[id]
	return ch, ok
}

// Course looks a course up in the catalog.
func (s *Snapshot) Course(id string) (*content.Course, bool) {
	c, ok := s.Catalog.Courses[id]
	return c, ok
}

// Store owns the current content snapshot. All global content state lives
// behind a single atomic pointer; there are no other mutable globals.
type Store struct {
	log           *logger.Logger
	root          string
	defaultLocale string

	mu      sync.Mutex // serializes reloads
	version atomic.Uint64
	cur     atomic.Pointer[Snapshot]
}

func New(log *logger.Logger, root, defaultLocale string) *Store {
	return &Store{
		log:           log.With("component", "ContentStore"),
		root:          root,
		defaultLocale: defaultLocale,
	}
}

// Current returns the live snapshot, or nil before the first Reload.
func (s *Store) Current() *Snapshot {
	return s.cur.Load()
}

// DefaultLocale returns the configured default locale.
func (s *Store) DefaultLocale() string {
	return s.defaultLocale
}

// Reload rebuilds the whole snapshot from disk and swaps it in atomically.
// A failed rebuild leaves the previous snapshot live. Individual malformed
// documents are logged and skipped; they never abort the build.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locales, err := s.listLocales()
	if err != nil {
		return err
	}
	if len(locales) == 0 {
		return fmt.Errorf("no locale directories under %s", filepath.Join(s.root, "docs"))
	}

	var (
		graphMu sync.Mutex
		graphs  = make(map[string]*content.Graph, len(locales))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, loc := range locales {
		g.Go(func() error {
			docs, err := s.loadLocaleDocs(gctx, loc)
			if err != nil {
				return err
			}
			graph := content.Build(loc, docs)
			graphMu.Lock()
			graphs[loc] = graph
			graphMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bundle, err := s.loadLocaleBundle(locales)
	if err != nil {
		return err
	}

	catalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	var warnings []content.Warning
	if defGraph, ok := graphs[s.defaultLocale]; ok {
		warnings = catalog.Validate(defGraph)
	}
	for _, graph := range graphs {
		warnings = append(warnings, graph.Warnings()...)
	}
	for _, w := range warnings {
		s.log.Warn("content warning", "kind", string(w.Kind), "document_id", w.DocumentID, "detail", w.Detail)
	}

	snap := &Snapshot{
		Version:  s.version.Add(1),
		Graphs:   graphs,
		Locales:  bundle,
		Catalog:  catalog,
		Warnings: warnings,
		BuiltAt:  time.Now(),
	}
	s.cur.Store(snap)
	docCount := 0
	for _, graph := range graphs {
		docCount += len(graph.Documents())
	}
	s.log.Info("content snapshot swapped",
		"version", snap.Version,
		"locales", len(graphs),
		"documents", docCount,
		"courses", len(catalog.Courses),
		"challenges", len(catalog.Challenges),
		"warnings", len(warnings),
	)
	return nil
}

func (s *Store) listLocales() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "docs"))
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}
	var locales []string
	for _, e := range entries {
		if e.IsDir() {
			locales = append(locales, e.Name())
		}
	}
	return locales, nil
}

func (s *Store) loadLocaleDocs(ctx context.Context, loc string) ([]*content.Document, error) {
	localeRoot := filepath.Join(s.root, "docs", loc)
	var docs []*content.Document
	err := filepath.WalkDir(localeRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, err := filepath.Rel(localeRoot, path)
		if err != nil {
			return err
		}
		fileID := strings.TrimSuffix(filepath.ToSlash(rel), ".md")
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		parsed, perr := content.Parse(fileID, loc, raw)
		if perr != nil {
			// Malformed document: log, keep the clean parts, move on.
			s.log.Warn("document parse failed", "locale", loc, "file", rel, "error", perr)
		}
		docs = append(docs, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) loadLocaleBundle(locales []string) (*locale.Bundle, error) {
	bundle := locale.NewBundle(s.log, s.defaultLocale)
	for _, loc := range locales {
		path := filepath.Join(s.root, "locales", loc+".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.log.Warn("no locale strings file", "locale", loc, "path", path)
				continue
			}
			return nil, fmt.Errorf("read locale strings: %w", err)
		}
		if err := bundle.Load(loc, raw); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

func (s *Store) loadCatalog() (*content.Catalog, error) {
	read := func(name string) ([]byte, error) {
		raw, err := os.ReadFile(filepath.Join(s.root, "catalog", name))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		return raw, nil
	}
	coursesRaw, err := read("courses.yaml")
	if err != nil {
		return nil, err
	}
	challengesRaw, err := read("challenges.yaml")
	if err != nil {
		return nil, err
	}
	return content.ParseCatalog(coursesRaw, challengesRaw)
}
