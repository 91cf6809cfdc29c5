// Package store supplies the vakuf record set: read from the remote document
// store and cached in Redis for a validity window. Failures degrade to an
// empty set and never reach the search core as errors.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/cache"
	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
)

const (
	DefaultValidity  = 30 * 24 * time.Hour
	DefaultOpTimeout = 2 * time.Second
)

type Options struct {
	Logger *slog.Logger
	// nil disables caching
	Cache    cache.Interface
	CacheKey string
	// age after which a cached entry is discarded
	Validity time.Duration
	// bound on each cache call
	OpTimeout time.Duration
	Now       func() time.Time
}

type Store struct {
	log      *slog.Logger
	remote   Fetcher
	cache    cache.Interface
	key      string
	validity time.Duration
	opTO     time.Duration
	now      func() time.Time

	loadMu  sync.Mutex
	records atomic.Pointer[[]model.Record]
	loaded  atomic.Bool
}

func New(remote Fetcher, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Validity <= 0 {
		opts.Validity = DefaultValidity
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultOpTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		log:      opts.Logger,
		remote:   remote,
		cache:    opts.Cache,
		key:      opts.CacheKey,
		validity: opts.Validity,
		opTO:     opts.OpTimeout,
		now:      opts.Now,
	}
	empty := []model.Record{}
	s.records.Store(&empty)
	return s
}

// Records returns the current record set. The slice is shared and must not
// be modified.
func (s *Store) Records() []model.Record {
	return *s.records.Load()
}

func (s *Store) Count() int { return len(s.Records()) }

// Ready reports whether a load has completed, successful or not.
func (s *Store) Ready() bool { return s.loaded.Load() }

// Load serves the record set from the cache while it is fresh and from the
// remote store otherwise. A remote failure on the first load leaves the set
// empty; on later loads the previous set is kept.
func (s *Store) Load(ctx context.Context) []model.Record {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if recs, ok := s.fromCache(ctx); ok {
		return s.publish(recs)
	}
	return s.fetch(ctx)
}

// Reload drops the cached entry and refetches from the remote store.
func (s *Store) Reload(ctx context.Context) []model.Record {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if err := s.Invalidate(ctx); err != nil {
		s.log.Warn("record cache invalidate failed", "err", err)
	}
	return s.fetch(ctx)
}

// Invalidate deletes the cached entry.
func (s *Store) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()
	return s.cache.Del(cctx, s.key)
}

func (s *Store) fromCache(ctx context.Context) ([]model.Record, bool) {
	if s.cache == nil {
		return nil, false
	}
	cctx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	b, err := s.cache.Get(cctx, s.key)
	switch {
	case errors.Is(err, cache.ErrMiss):
		observability.IncRecordStore("cache", "miss")
		return nil, false
	case err != nil:
		observability.IncRecordStore("cache", "error")
		s.log.Warn("record cache read failed", "key", s.key, "err", err)
		return nil, false
	}

	e, err := decodeEntry(b)
	if err != nil {
		observability.IncRecordStore("cache", "error")
		s.log.Warn("record cache entry unreadable", "key", s.key, "err", err)
		s.dropEntry(ctx)
		return nil, false
	}
	if !e.fresh(s.now(), s.validity) {
		observability.IncRecordStore("cache", "expired")
		s.log.Info("record cache entry expired",
			"key", s.key, "age", s.now().Sub(time.UnixMilli(e.Timestamp)).String())
		s.dropEntry(ctx)
		return nil, false
	}
	observability.IncRecordStore("cache", "hit")
	return e.Data, true
}

func (s *Store) dropEntry(ctx context.Context) {
	if err := s.Invalidate(ctx); err != nil {
		s.log.Warn("record cache delete failed", "key", s.key, "err", err)
	}
}

func (s *Store) fetch(ctx context.Context) []model.Record {
	if s.remote == nil {
		observability.IncRecordStore("remote", "error")
		s.log.Error("no document store configured")
		return s.keepOrEmpty()
	}
	recs, err := s.remote.Fetch(ctx)
	if err != nil {
		observability.IncRecordStore("remote", "error")
		s.log.Error("record fetch failed", "err", err)
		return s.keepOrEmpty()
	}
	if recs == nil {
		recs = []model.Record{}
	}
	observability.IncRecordStore("remote", "ok")
	s.writeBack(ctx, recs)
	return s.publish(recs)
}

func (s *Store) writeBack(ctx context.Context, recs []model.Record) {
	if s.cache == nil {
		return
	}
	b, err := encodeEntry(recs, s.now())
	if err != nil {
		s.log.Warn("record cache encode failed", "err", err)
		return
	}
	cctx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()
	if err := s.cache.Set(cctx, s.key, b, s.validity); err != nil {
		s.log.Warn("record cache write failed", "key", s.key, "err", err)
	}
}

func (s *Store) keepOrEmpty() []model.Record {
	if s.loaded.Load() {
		return s.Records()
	}
	return s.publish([]model.Record{})
}

func (s *Store) publish(recs []model.Record) []model.Record {
	s.records.Store(&recs)
	s.loaded.Store(true)
	s.log.Info("records loaded", "count", len(recs))
	return recs
}
