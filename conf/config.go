package conf

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/confkit/source/file"
	"github.com/jonwraymond/confkit/store"
)

// MaxSources is the maximum number of sources one Config accepts.
const MaxSources = 64

// DefaultRefreshCapacity bounds the refresh registry unless overridden with
// WithRefreshCapacity.
const DefaultRefreshCapacity = 64

// Config is a layered configuration instance. All methods are safe for
// concurrent use; lookups read an immutable snapshot that Refresh replaces
// wholesale.
type Config struct {
	mu       sync.RWMutex
	snapshot *store.Layered
	sources  []store.Source

	refs    *registry
	group   singleflight.Group
	metrics Metrics
	logger  Logger
}

// Option configures a Config.
type Option func(*Config)

// WithMetrics wires a Metrics implementation (see NewMetrics).
func WithMetrics(m Metrics) Option {
	return func(c *Config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger wires a structured logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRefreshCapacity bounds how many refreshable cells may be registered.
func WithRefreshCapacity(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.refs.capacity = n
		}
	}
}

// New creates an empty Config. Register sources before looking up keys.
func New(opts ...Option) *Config {
	c := &Config{
		snapshot: store.NewLayered(),
		refs:     newRegistry(DefaultRefreshCapacity),
		metrics:  nopMetrics{},
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register appends src to the layer list and rebuilds the merged store
// with the new layer included. Earlier registrations win scalar conflicts.
// The snapshot readers hold is never mutated; a fresh store is built and
// swapped in, so lookups concurrent with Register stay consistent.
func (c *Config) Register(src store.Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sources) >= MaxSources {
		return fmt.Errorf("%w: source limit %d", ErrCapacity, MaxSources)
	}
	fresh := store.NewLayered()
	for _, s := range c.sources {
		if err := fresh.Register(s); err != nil {
			return err
		}
	}
	if err := fresh.Register(src); err != nil {
		return err
	}
	c.sources = append(c.sources, src)
	c.snapshot = fresh
	c.logger.Debug("config source registered", "name", src.Name(), "layer", len(c.sources))
	return nil
}

// RegisterKV registers an in-memory source built from pairs. Keys use the
// raw key grammar ("server.hosts[0]").
func (c *Config) RegisterKV(name string, pairs map[string]any) error {
	m := store.NewMemory(name)
	for k, v := range pairs {
		m.Set(k, v)
	}
	return c.Register(m)
}

// RegisterFile registers a file source, choosing the parser by extension.
func (c *Config) RegisterFile(path string, required bool) error {
	parser, err := file.Detect(path)
	if err != nil {
		return err
	}
	return c.Register(file.New(path, required, parser))
}

// SourceNames returns registered source names in priority order.
func (c *Config) SourceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.SourceNames()
}

// Shadowed names the sources whose scalar write for rawKey was dropped by
// the first-wins layering rule.
func (c *Config) Shadowed(rawKey string) []string {
	res := c.newResolution()
	res.path.Push(rawKey)
	return res.snap.Shadowed(res.path.String())
}

func (c *Config) snapshotNow() *store.Layered {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Unmarshal resolves rawKey into target, which must be a non-nil pointer.
// Pointer targets translate ErrNotFound into nil; every other error kind
// propagates.
func (c *Config) Unmarshal(rawKey string, target any) error {
	start := time.Now()
	err := c.unmarshal(rawKey, target)
	c.metrics.RecordLookup(context.Background(), time.Since(start), err)
	return err
}

func (c *Config) unmarshal(rawKey string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: unmarshal target must be a non-nil pointer", ErrTypeMismatch)
	}
	res := c.newResolution()
	res.path.Push(rawKey)
	return res.decode(rv.Elem(), nil)
}

// Get resolves rawKey as a T.
func Get[T any](c *Config, rawKey string) (T, error) {
	var v T
	err := c.Unmarshal(rawKey, &v)
	return v, err
}

// GetOr resolves rawKey as a T, returning def when the key is absent.
// Errors other than ErrNotFound still propagate.
func GetOr[T any](c *Config, rawKey string, def T) (T, error) {
	var p *T
	if err := c.Unmarshal(rawKey, &p); err != nil {
		var zero T
		return zero, err
	}
	if p == nil {
		return def, nil
	}
	return *p, nil
}

// Refresh polls every source's single-shot change predicate and, if any
// source changed, rebuilds the merged store from scratch, swaps it in and
// re-resolves every bound RefValue in registration order. The first cell
// failure aborts the remaining cells; cells already updated keep their new
// values. Concurrent calls are deduplicated.
func (c *Config) Refresh() (bool, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.reload()
	})
	changed, _ := v.(bool)
	return changed, err
}

func (c *Config) reload() (bool, error) {
	ctx := context.Background()
	c.mu.RLock()
	sources := make([]store.Source, len(c.sources))
	copy(sources, c.sources)
	c.mu.RUnlock()

	changed := false
	for _, s := range sources {
		r, ok := s.(store.Refreshable)
		if !ok {
			continue
		}
		ch, err := r.Changed()
		if err != nil {
			c.metrics.RecordRefresh(ctx, false, err)
			return false, err
		}
		if ch {
			changed = true
		}
	}
	if !changed {
		c.metrics.RecordRefresh(ctx, false, nil)
		return false, nil
	}

	fresh := store.NewLayered()
	for _, s := range sources {
		if err := fresh.Register(s); err != nil {
			c.metrics.RecordRefresh(ctx, true, err)
			return true, err
		}
	}
	c.mu.Lock()
	c.snapshot = fresh
	c.mu.Unlock()

	err := c.refs.refreshAll(c)
	c.metrics.RecordRefresh(ctx, true, err)
	if err == nil {
		c.logger.Info("configuration refreshed", "sources", len(sources))
	}
	return true, err
}
