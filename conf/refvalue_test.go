package conf

import (
	"errors"
	"sync"
	"testing"

	"github.com/jonwraymond/confkit/store"
)

// versionSource is a refreshable in-memory source for refresh tests. Set
// marks it dirty; Changed reports dirtiness once per change.
type versionSource struct {
	mu     sync.Mutex
	name   string
	values map[string]store.Value
	dirty  bool
}

func newVersionSource(name string) *versionSource {
	return &versionSource{name: name, values: make(map[string]store.Value)}
}

func (s *versionSource) Set(rawKey string, v any) {
	s.mu.Lock()
	s.values[rawKey] = store.Of(v)
	s.dirty = true
	s.mu.Unlock()
}

func (s *versionSource) Name() string { return s.name }

func (s *versionSource) Load(sink *store.Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.values {
		sink.SetKV(k, v)
	}
	return nil
}

func (s *versionSource) Changed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty
	s.dirty = false
	return d, nil
}

var _ store.Refreshable = (*versionSource)(nil)

func TestRefreshSingleShot(t *testing.T) {
	src := newVersionSource("dyn")
	src.Set("port", 8080)

	c := New()
	if err := c.Register(src); err != nil {
		t.Fatal(err)
	}

	cell, err := BindRef[int](c, "port")
	if err != nil {
		t.Fatal(err)
	}
	if got := cell.Get(); got != 8080 {
		t.Fatalf("initial = %d", got)
	}

	src.Set("port", 9090)
	changed, err := c.Refresh()
	if err != nil || !changed {
		t.Fatalf("Refresh = (%v, %v), want (true, nil)", changed, err)
	}
	if got := cell.Get(); got != 9090 {
		t.Fatalf("after refresh = %d, want 9090", got)
	}

	// The change predicate is single-shot.
	changed, err = c.Refresh()
	if err != nil || changed {
		t.Fatalf("second Refresh = (%v, %v), want (false, nil)", changed, err)
	}
	if got := cell.Get(); got != 9090 {
		t.Fatalf("value moved without a change: %d", got)
	}
}

func TestRefreshReresolvesPlaceholders(t *testing.T) {
	src := newVersionSource("dyn")
	src.Set("host", "a")
	src.Set("url", "http://${host}/")

	c := New()
	if err := c.Register(src); err != nil {
		t.Fatal(err)
	}
	cell, err := BindRef[string](c, "url")
	if err != nil {
		t.Fatal(err)
	}
	if got := cell.Get(); got != "http://a/" {
		t.Fatalf("initial = %q", got)
	}

	src.Set("host", "b")
	if _, err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := cell.Get(); got != "http://b/" {
		t.Fatalf("after refresh = %q", got)
	}
}

func TestRefValueInStruct(t *testing.T) {
	src := newVersionSource("dyn")
	src.Set("pool.size", 4)

	c := New()
	if err := c.Register(src); err != nil {
		t.Fatal(err)
	}

	var cfg struct {
		Size RefValue[int] `conf:"size"`
	}
	if err := c.Unmarshal("pool", &cfg); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Size.Get(); got != 4 {
		t.Fatalf("size = %d", got)
	}
	if k := cfg.Size.Key(); k != "pool.size" {
		t.Fatalf("bound key = %q", k)
	}

	src.Set("pool.size", 8)
	if _, err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Size.Get(); got != 8 {
		t.Fatalf("after refresh = %d", got)
	}
}

func TestRecursiveBinding(t *testing.T) {
	c := New()
	if err := c.RegisterKV("kv", map[string]any{"x": 1}); err != nil {
		t.Fatal(err)
	}

	if _, err := BindRef[RefValue[int]](c, "x"); !errors.Is(err, ErrRecursiveBinding) {
		t.Fatalf("direct nesting err = %v, want ErrRecursiveBinding", err)
	}

	// Nesting through a wrapping struct fails the same way.
	if _, err := BindRef[struct {
		Inner RefValue[int] `conf:"x"`
	}](c, ""); !errors.Is(err, ErrRecursiveBinding) {
		t.Fatalf("wrapped nesting err = %v, want ErrRecursiveBinding", err)
	}
}

func TestRefreshCapacity(t *testing.T) {
	c := New(WithRefreshCapacity(1))
	if err := c.RegisterKV("kv", map[string]any{"x": 1, "y": 2}); err != nil {
		t.Fatal(err)
	}

	if _, err := BindRef[int](c, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := BindRef[int](c, "y"); !errors.Is(err, ErrCapacity) {
		t.Fatalf("err = %v, want ErrCapacity", err)
	}

	// The overflow cell was not registered: a refresh pass still succeeds.
	if _, err := c.Refresh(); err != nil {
		t.Fatalf("Refresh after overflow: %v", err)
	}
}

func TestRegistryLockedDuringRefresh(t *testing.T) {
	c := New()

	// A refresh pass holds the registry for its whole duration; a bind
	// arriving meanwhile must fail fast instead of queueing behind it.
	c.refs.mu.Lock()
	err := c.refs.add(&RefValue[int]{})
	c.refs.mu.Unlock()
	if !errors.Is(err, ErrLock) {
		t.Fatalf("add under held registry = %v, want ErrLock", err)
	}
	if n := len(c.refs.cells); n != 0 {
		t.Fatalf("rejected cell was registered, cells = %d", n)
	}

	if err := c.refs.add(&RefValue[int]{}); err != nil {
		t.Fatalf("add after release: %v", err)
	}
}

func TestRefreshPartialUpdate(t *testing.T) {
	src := newVersionSource("dyn")
	src.Set("good", 1)
	src.Set("bad", 2)

	c := New()
	if err := c.Register(src); err != nil {
		t.Fatal(err)
	}
	goodCell, err := BindRef[int](c, "good")
	if err != nil {
		t.Fatal(err)
	}
	badCell, err := BindRef[int](c, "bad")
	if err != nil {
		t.Fatal(err)
	}

	src.Set("good", 10)
	src.Set("bad", "not-a-number")
	if _, err := c.Refresh(); err == nil {
		t.Fatal("want refresh failure from the second cell")
	}

	// Cells before the failing one keep their refreshed values; the
	// failing cell keeps its previous value.
	if got := goodCell.Get(); got != 10 {
		t.Fatalf("good = %d, want 10", got)
	}
	if got := badCell.Get(); got != 2 {
		t.Fatalf("bad = %d, want prior value 2", got)
	}
}
