package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/openchain-academy/academy-backend/internal/content"
	"github.com/openchain-academy/academy-backend/internal/content/store"
	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
)

// ContentService is the read surface over the current content snapshot.
// Every call works against one atomically-loaded snapshot, so a reload in
// flight never produces a half-updated response.
type ContentService interface {
	GetDocument(ctx context.Context, locale, id string) (*content.Document, error)
	ListDocuments(ctx context.Context, locale string) ([]string, error)
	GetCourse(ctx context.Context, id string) (*content.Course, error)
	ListCourses(ctx context.Context) ([]*content.Course, error)
	GetChallenge(ctx context.Context, id string) (*content.Challenge, error)
	ListChallenges(ctx context.Context) ([]*content.Challenge, error)
	ResolveString(ctx context.Context, key, locale string) (string, error)
	LocaleTable(ctx context.Context, locale string) (map[string]string, error)
	Warnings(ctx context.Context) []content.Warning
}

type contentService struct {
	log   *logger.Logger
	store *store.Store
}

func NewContentService(log *logger.Logger, st *store.Store) ContentService {
	serviceLog := log.With("service", "ContentService")
	return &contentService{log: serviceLog, store: st}
}

func (cs *contentService) snapshot() (*store.Snapshot, error) {
	snap := cs.store.Current()
	if snap == nil {
		return nil, fmt.Errorf("content snapshot not loaded: %w", pkgerrors.ErrNotFound)
	}
	return snap, nil
}

// graph picks the locale's graph, falling back to the default locale when
// the requested locale has no content (the UI still gets a page; locale
// strings fall back independently).
func (cs *contentService) graph(snap *store.Snapshot, locale string) (*content.Graph, error) {
	if g, ok := snap.Graph(locale); ok {
		return g, nil
	}
	if locale != cs.store.DefaultLocale() {
		if g, ok := snap.Graph(cs.store.DefaultLocale()); ok {
			cs.log.Debug("locale has no content, using default", "requested_locale", locale)
			return g, nil
		}
	}
	return nil, fmt.Errorf("locale %q: %w", locale, pkgerrors.ErrNotFound)
}

func (cs *contentService) GetDocument(ctx context.Context, locale, id string) (*content.Document, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	g, err := cs.graph(snap, locale)
	if err != nil {
		return nil, err
	}
	doc, ok := g.Document(id)
	if !ok {
		return nil, fmt.Errorf("document %q (%s): %w", id, locale, pkgerrors.ErrNotFound)
	}
	return doc, nil
}

func (cs *contentService) ListDocuments(ctx context.Context, locale string) ([]string, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	g, err := cs.graph(snap, locale)
	if err != nil {
		return nil, err
	}
	return g.Documents(), nil
}

func (cs *contentService) GetCourse(ctx context.Context, id string) (*content.Course, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	course, ok := snap.Course(id)
	if !ok {
		return nil, fmt.Errorf("course %q: %w", id, pkgerrors.ErrNotFound)
	}
	return course, nil
}

func (cs *contentService) ListCourses(ctx context.Context) ([]*content.Course, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]*content.Course, 0, len(snap.Catalog.Courses))
	for _, c := range snap.Catalog.Courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (cs *contentService) GetChallenge(ctx context.Context, id string) (*content.Challenge, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	ch, ok := snap.Challenge(id)
	if !ok {
		return nil, fmt.Errorf("challenge %q: %w", id, pkgerrors.ErrNotFound)
	}
	return ch, nil
}

func (cs *contentService) ListChallenges(ctx context.Context) ([]*content.Challenge, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]*content.Challenge, 0, len(snap.Catalog.Challenges))
	for _, ch := range snap.Catalog.Challenges {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (cs *contentService) ResolveString(ctx context.Context, key, locale string) (string, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return "", err
	}
	return snap.Locales.Resolve(key, locale)
}

func (cs *contentService) LocaleTable(ctx context.Context, locale string) (map[string]string, error) {
	snap, err := cs.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Locales.Table(locale)
}

func (cs *contentService) Warnings(ctx context.Context) []content.Warning {
	snap, err := cs.snapshot()
	if err != nil {
		return nil
	}
	return snap.Warnings
}
