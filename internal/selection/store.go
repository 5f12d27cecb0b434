package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"seenstudio/internal/apperr"
	"seenstudio/internal/cache"
	applog "seenstudio/internal/log"
	"seenstudio/internal/metrics"
)

type Surface string

const (
	SurfaceHome    Surface = "home"
	SurfaceDesktop Surface = "desktop"
	SurfaceMobile  Surface = "mobile"
)

const (
	HomeCap    = 4
	DesktopCap = 3
	MobileCap  = 4
)

func ParseSurface(s string) (Surface, bool) {
	switch Surface(strings.ToLower(strings.TrimSpace(s))) {
	case SurfaceHome:
		return SurfaceHome, true
	case SurfaceDesktop:
		return SurfaceDesktop, true
	case SurfaceMobile:
		return SurfaceMobile, true
	}
	return "", false
}

// Entry is one selected item; positions run 0..n-1 in display order.
type Entry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Backend persists the selection of each surface.
type Backend interface {
	// List returns the selected ids of surface ordered by position.
	List(ctx context.Context, surface Surface) ([]string, error)
	// Replace stores ids as the full ordered selection in one transaction.
	// It returns a NOT_FOUND apperr when an id does not exist.
	Replace(ctx context.Context, surface Surface, ids []string) error
}

// Store enforces per-surface caps over a Backend and keeps a last-known-good
// copy of each list for reads when the backend fails.
type Store struct {
	name    string
	backend Backend
	caps    map[Surface]int
	cache   cache.ListCache
	metrics *metrics.Metrics
	group   singleflight.Group
}

type Option func(*Store)

func WithCache(c cache.ListCache) Option { return func(s *Store) { s.cache = c } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Store) { s.metrics = m } }

// New builds a store named name (used as the cache key prefix) over backend.
func New(name string, backend Backend, caps map[Surface]int, opts ...Option) *Store {
	s := &Store{name: name, backend: backend, caps: caps}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	return s
}

func (s *Store) Cap(surface Surface) (int, bool) {
	c, ok := s.caps[surface]
	return c, ok
}

func (s *Store) checkSurface(surface Surface) (int, error) {
	c, ok := s.caps[surface]
	if !ok {
		return 0, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown surface %q", surface)).
			WithDetails(map[string]string{"surface": "is not supported here"})
	}
	return c, nil
}

func (s *Store) cacheKey(surface Surface) string { return s.name + ":" + string(surface) }

// IDs returns the selected ids of surface in position order.
func (s *Store) IDs(ctx context.Context, surface Surface) ([]string, error) {
	if _, err := s.checkSurface(surface); err != nil {
		return nil, err
	}
	v, err, _ := s.group.Do(string(surface), func() (any, error) {
		return s.load(ctx, surface)
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

func (s *Store) load(ctx context.Context, surface Surface) ([]string, error) {
	ids, err := s.backend.List(ctx, surface)
	if err == nil {
		if cerr := s.cache.Set(ctx, s.cacheKey(surface), ids); cerr != nil {
			applog.L().Warn().Err(cerr).Str("action", "selection.cache_set").Str("surface", string(surface)).Send()
		}
		return ids, nil
	}

	cached, cerr := s.cache.Get(ctx, s.cacheKey(surface))
	if cerr != nil {
		if !errors.Is(cerr, cache.ErrCacheMiss) {
			applog.L().Warn().Err(cerr).Str("action", "selection.cache_get").Str("surface", string(surface)).Send()
		}
		return nil, apperr.Wrap(apperr.CodeDependency, err, "selection is unavailable")
	}
	applog.L().Warn().Err(err).
		Str("action", "selection.fallback").
		Str("store", s.name).
		Str("surface", string(surface)).
		Int("count", len(cached)).
		Msg("serving last known selection")
	s.metrics.SelectionFallback(string(surface))
	return cached, nil
}

// List returns the selection of surface as entries ordered by position.
func (s *Store) List(ctx context.Context, surface Surface) ([]Entry, error) {
	ids, err := s.IDs(ctx, surface)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = Entry{ID: id, Position: i}
	}
	return out, nil
}

// Replace makes ids the whole selection of surface. The cap counts ids as
// submitted; within it, repeated ids keep their first position. Blank ids are
// rejected. Nothing is stored when either check fails.
func (s *Store) Replace(ctx context.Context, surface Surface, ids []string) (out []Entry, err error) {
	limit, err := s.checkSurface(surface)
	if err != nil {
		return nil, err
	}
	defer func() { s.metrics.SelectionWrite(string(surface), err) }()

	if len(ids) > limit {
		return nil, apperr.New(apperr.CodeTooManySelected,
			fmt.Sprintf("You can only select up to %d items for %s", limit, surface)).
			WithDetails(map[string]int{"max": limit, "got": len(ids)})
	}
	clean, ok := dedupe(ids)
	if !ok {
		return nil, apperr.New(apperr.CodeValidation, "ids must not be blank").
			WithDetails(map[string]string{"ids": "must not contain blank values"})
	}
	if err := s.backend.Replace(ctx, surface, clean); err != nil {
		return nil, err
	}
	s.refresh(ctx, surface, clean)

	out = make([]Entry, len(clean))
	for i, id := range clean {
		out[i] = Entry{ID: id, Position: i}
	}
	return out, nil
}

// Update runs fn, which writes the given surfaces in storage directly, with
// their caps. fn must enforce the caps itself and either apply all of its
// changes or none. The cached lists of the surfaces are refreshed afterwards.
func (s *Store) Update(ctx context.Context, surfaces []Surface, fn func(caps map[Surface]int) error) (err error) {
	caps := make(map[Surface]int, len(surfaces))
	for _, surface := range surfaces {
		limit, err := s.checkSurface(surface)
		if err != nil {
			return err
		}
		caps[surface] = limit
	}
	defer func() {
		for surface := range caps {
			s.metrics.SelectionWrite(string(surface), err)
		}
	}()

	if err := fn(caps); err != nil {
		return err
	}
	for surface := range caps {
		if ids, lerr := s.backend.List(ctx, surface); lerr == nil {
			s.refresh(ctx, surface, ids)
		}
	}
	return nil
}

// Sync reloads every surface from the backend into the cache, e.g. after an
// item was deleted or edited outside Replace and Update.
func (s *Store) Sync(ctx context.Context) {
	for surface := range s.caps {
		if ids, err := s.backend.List(ctx, surface); err == nil {
			s.refresh(ctx, surface, ids)
		}
	}
}

func (s *Store) refresh(ctx context.Context, surface Surface, ids []string) {
	if err := s.cache.Set(ctx, s.cacheKey(surface), ids); err != nil {
		applog.L().Warn().Err(err).Str("action", "selection.cache_set").Str("surface", string(surface)).Send()
	}
}

func dedupe(ids []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, false
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, true
}
