// Package cache is the request cache between the UI and the registry.
//
// Entries are keyed by an opaque string. A result older than the staleness
// window triggers a new load on the next Get. Each key has at most one load
// in flight, and every load is tagged with a generation: a result whose
// generation is no longer current is dropped, so a superseded request can
// never overwrite a newer one.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/abelbrown/marketplace/internal/events"
	"github.com/abelbrown/marketplace/internal/tracing"
)

// Loader produces a fresh value for the cache.
type Loader[T any] func(ctx context.Context) (T, error)

// Snapshot is the observable state of one key.
type Snapshot[T any] struct {
	Key        string
	Loading    bool
	Data       T
	HasData    bool
	Err        error
	FetchedAt  time.Time
	Generation uint64
	// Superseded is set on the snapshot returned by a Load whose result was
	// discarded because a newer generation had started.
	Superseded bool
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
	rec *events.Recorder
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRecorder emits cache.* events to rec.
func WithRecorder(rec *events.Recorder) Option {
	return func(o *options) { o.rec = rec }
}

// Cache holds one Snapshot per key. Safe for concurrent use.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*Snapshot[T]
	load    Loader[T]
	stale   time.Duration
	group   singleflight.Group
	now     func() time.Time
	rec     *events.Recorder
}

// New creates a Cache calling load on misses. A non-positive staleTime
// treats every completed result as stale.
func New[T any](load Loader[T], staleTime time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		entries: make(map[string]*Snapshot[T]),
		load:    load,
		stale:   staleTime,
		now:     o.now,
		rec:     o.rec,
	}
}

// StaleTime is the configured staleness window.
func (c *Cache[T]) StaleTime() time.Duration {
	return c.stale
}

// Get returns the snapshot for key. The bool is true when the caller must
// start Load for the returned generation: the key was never seen, its last
// result is stale, or its last load failed. While a load is in flight Get
// returns the loading snapshot and false.
func (c *Cache[T]) Get(key string) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	switch {
	case !ok:
		e = &Snapshot[T]{Key: key}
		c.entries[key] = e
		c.beginLocked(e)
		c.emit(events.KindCacheMiss, e)
		return *e, true
	case e.Loading:
		c.emit(events.KindCacheHit, e)
		return *e, false
	case e.Err != nil || c.isStaleLocked(e):
		c.beginLocked(e)
		c.emit(events.KindCacheStale, e)
		return *e, true
	default:
		c.emit(events.KindCacheHit, e)
		return *e, false
	}
}

// Refetch starts a new generation for key regardless of staleness. The
// caller must start Load for the returned generation. A load already in
// flight for key is superseded.
func (c *Cache[T]) Refetch(key string) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &Snapshot[T]{Key: key}
		c.entries[key] = e
	}
	c.beginLocked(e)
	c.emit(events.KindCacheRefetch, e)
	return *e
}

// peek returns the snapshot for key without side effects.
func (c *Cache[T]) peek(key string) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot[T]{Key: key}, false
	}
	return *e, true
}

// Load runs the loader for key at generation gen and stores the result if
// gen is still current. Concurrent Loads for the same key and generation
// share one loader call.
func (c *Cache[T]) Load(ctx context.Context, key string, gen uint64) Snapshot[T] {
	ctx, span := tracing.Tracer("marketplace/cache").Start(ctx, "cache.load")
	defer span.End()
	span.SetAttributes(attribute.String("key", key), attribute.Int64("generation", int64(gen)))

	v, err, shared := c.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		return c.load(ctx)
	})
	span.SetAttributes(attribute.Bool("shared", shared))

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.Generation != gen {
		span.SetAttributes(attribute.Bool("superseded", true))
		snap := Snapshot[T]{Key: key, Generation: gen}
		if ok {
			snap = *e
			c.emit(events.KindCacheSuperseded, e)
		}
		snap.Superseded = true
		return snap
	}

	e.Loading = false
	if err != nil {
		span.RecordError(err)
		e.Err = err
		return *e
	}
	e.Data = v.(T)
	e.HasData = true
	e.Err = nil
	e.FetchedAt = c.now()
	return *e
}

// beginLocked marks e as loading under a new generation. Stale data stays
// visible; the previous error is cleared.
func (c *Cache[T]) beginLocked(e *Snapshot[T]) {
	e.Generation++
	e.Loading = true
	e.Err = nil
}

func (c *Cache[T]) isStaleLocked(e *Snapshot[T]) bool {
	if !e.HasData {
		return true
	}
	if c.stale <= 0 {
		return true
	}
	return c.now().Sub(e.FetchedAt) >= c.stale
}

func (c *Cache[T]) emit(kind events.Kind, e *Snapshot[T]) {
	c.rec.Emit(events.Event{Kind: kind, Level: events.LevelDebug, Comp: "cache", Key: e.Key, Gen: e.Generation})
}
