// Package store owns the todo-group document for one session: it loads it
// once from storage, hands out mutable references, and writes it back on Save.
//
// Load never fails. A missing document yields the seed; a corrupt one is
// removed from storage, logged, counted, and replaced by the seed. When the
// backend cannot be read at all the seed is returned uncached and Save
// refuses to write until a later Load succeeds.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todogroups/internal/logging"
	"github.com/Makepad-fr/todogroups/internal/metrics"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/storage"
)

// DefaultKey is the storage key holding the document.
const DefaultKey = "todos"

// ErrUnavailable is returned by Save while the persisted document could not
// be read, so a stand-in seed never overwrites it.
var ErrUnavailable = errors.New("store: persisted groups unavailable")

// Store is the session-scoped cache in front of a storage.Backend.
// It is not safe for concurrent use; callers keep a single writer.
type Store struct {
	backend storage.Backend
	key     string
	log     *log.Logger
	metrics *metrics.Recorder
	seed    func() *model.Collection

	cache   *model.Collection
	readErr error
	reseeds int
}

// Option configures a Store.
type Option func(*Store)

func WithKey(key string) Option { return func(s *Store) { s.key = key } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.log = l } }

func WithMetrics(m *metrics.Recorder) Option { return func(s *Store) { s.metrics = m } }

// WithSeed replaces the default seed document.
func WithSeed(fn func() *model.Collection) Option { return func(s *Store) { s.seed = fn } }

func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		log:     logging.Discard(),
		seed:    model.Seed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the cached collection, initializing it on first use.
// Two calls without an intervening Save return the same pointer, except
// while the backend is failing: then each call retries and returns a fresh seed.
func (s *Store) Load(ctx context.Context) *model.Collection {
	if s.cache != nil {
		return s.cache
	}
	c, err := s.read(ctx)
	s.readErr = err
	if err != nil {
		return c
	}
	s.cache = c
	return s.cache
}

func (s *Store) read(ctx context.Context) (*model.Collection, error) {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return s.seed(), nil
	}
	if err != nil {
		s.log.Error("read persisted groups", "key", s.key, "err", err)
		return s.seed(), err
	}
	c, err := Decode(raw)
	if err == nil {
		return c, nil
	}
	s.reseeds++
	s.metrics.Reseed()
	s.log.Warn("discarding corrupt persisted groups", "key", s.key, "err", err)
	if rmErr := s.backend.Remove(ctx, s.key); rmErr != nil {
		s.log.Error("remove corrupt groups", "key", s.key, "err", rmErr)
	}
	return s.seed(), nil
}

// Save replaces the cache with c and persists it. A nil c re-saves the
// current cache, for callers that mutated references returned by Load.
// The cache is replaced even when the write fails. If the last Load could
// not read the backend, Save writes nothing and returns ErrUnavailable.
func (s *Store) Save(ctx context.Context, c *model.Collection) error {
	if c == nil {
		c = s.Load(ctx)
	}
	if s.readErr != nil {
		err := fmt.Errorf("%w: %w", ErrUnavailable, s.readErr)
		s.metrics.Save(err)
		s.log.Error("refusing to save over unread groups", "key", s.key, "err", s.readErr)
		return err
	}
	s.cache = c
	err := s.write(ctx, c)
	s.metrics.Save(err)
	if err != nil {
		s.log.Error("save groups", "key", s.key, "err", err)
	}
	return err
}

func (s *Store) write(ctx context.Context, c *model.Collection) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	return nil
}

// Reseeds counts corrupt documents discarded during this session.
func (s *Store) Reseeds() int { return s.reseeds }

// Backend returns the storage the store writes to.
func (s *Store) Backend() storage.Backend { return s.backend }
