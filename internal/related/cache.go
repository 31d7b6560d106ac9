package related

import (
	"context"
	"sync"
	"time"

	"legal-reader/internal/content"
	"legal-reader/internal/logger"
	"legal-reader/internal/slug"
	"legal-reader/internal/telemetry"
)

const storeTimeout = 2 * time.Second

// Result is a lookup that may still be in progress. Every caller asking for the
// same section shares one Result.
type Result struct {
	done   chan struct{}
	titles []string
	err    error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

// Done is closed once the lookup has succeeded or failed.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the lookup finishes or ctx ends. Giving up on ctx does not
// cancel the lookup itself.
func (r *Result) Wait(ctx context.Context) ([]string, error) {
	select {
	case <-r.done:
		if r.err != nil {
			return nil, r.err
		}
		out := make([]string, len(r.titles))
		copy(out, r.titles)
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Result) resolve(titles []string) {
	r.titles = titles
	close(r.done)
}

func (r *Result) reject(err error) {
	r.err = err
	close(r.done)
}

// Enqueuer accepts jobs for the serial worker.
type Enqueuer interface {
	Enqueue(job *Job)
}

type CacheOption func(*Cache)

// WithStore adds a second-level cache consulted before queueing.
func WithStore(s Store) CacheOption {
	return func(c *Cache) { c.store = s }
}

func WithMetrics(m *telemetry.Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// Cache memoizes related-sections lookups for one document, keyed by the slug
// of the section title. Failed lookups are forgotten so they can be retried;
// successful ones are kept for the life of the cache.
type Cache struct {
	scope   string
	queue   Enqueuer
	store   Store
	metrics *telemetry.Metrics

	mu      sync.Mutex
	entries map[string]*Result
}

func NewCache(scope string, queue Enqueuer, opts ...CacheOption) *Cache {
	c := &Cache{
		scope:   scope,
		queue:   queue,
		entries: make(map[string]*Result),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the shared Result for section, queueing a job on a miss.
func (c *Cache) Lookup(section content.Section, all []content.Section) *Result {
	key := slug.Slugify(section.Title)

	c.mu.Lock()
	if r, ok := c.entries[key]; ok {
		c.mu.Unlock()
		c.metrics.RecordRelatedLookup(c.scope, "hit")
		return r
	}
	r := newResult()
	c.entries[key] = r
	c.mu.Unlock()

	if titles, ok := c.load(key, section, all); ok {
		c.metrics.RecordRelatedLookup(c.scope, "store")
		r.resolve(titles)
		return r
	}

	c.metrics.RecordRelatedLookup(c.scope, "queued")
	job := NewJob(key, section, all,
		func(titles []string) {
			c.save(key, titles)
			r.resolve(titles)
		},
		func(err error) {
			c.forget(key, r)
			r.reject(err)
		},
	)
	c.queue.Enqueue(job)
	return r
}

// GetRelated is Lookup followed by Wait.
func (c *Cache) GetRelated(ctx context.Context, section content.Section, all []content.Section) ([]string, error) {
	return c.Lookup(section, all).Wait(ctx)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) forget(key string, r *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[key] == r {
		delete(c.entries, key)
	}
}

func (c *Cache) load(key string, section content.Section, all []content.Section) ([]string, bool) {
	if c.store == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	titles, ok, err := c.store.Load(ctx, c.scope, key)
	if err != nil {
		logger.Warn("Related store load failed", "document", c.scope, "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return keepCandidates(titles, section, all), true
}

func (c *Cache) save(key string, titles []string) {
	if c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.store.Save(ctx, c.scope, key, titles); err != nil {
		logger.Warn("Related store save failed", "document", c.scope, "key", key, "error", err)
	}
}

// keepCandidates drops stored titles that no longer name another section.
func keepCandidates(titles []string, section content.Section, all []content.Section) []string {
	known := make(map[string]struct{}, len(all))
	for _, s := range all {
		if s.Title != section.Title {
			known[s.Title] = struct{}{}
		}
	}
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := known[t]; ok && len(out) < MaxRelated {
			out = append(out, t)
		}
	}
	return out
}
