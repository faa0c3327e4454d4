package conf

import (
	"fmt"
	"reflect"
	"sync"
)

// refBindable is how the decoder hands a resolution to a RefValue without
// knowing its type parameter.
type refBindable interface {
	bindInto(r *resolution) error
}

// refreshable is the registry's view of a bound cell.
type refreshable interface {
	refreshWith(c *Config) error
}

// RefValue is a configuration cell that Refresh re-resolves in place.
// Embed it in a struct decoded with Unmarshal, or bind one directly with
// BindRef. The zero value is unbound; reading it yields the zero T.
type RefValue[T any] struct {
	mu  sync.Mutex
	key string
	val T
}

// Get returns a copy of the current value.
func (rv *RefValue[T]) Get() T {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.val
}

// With runs fn against the current value under the cell's lock. Use it
// when T is not cheap to copy.
func (rv *RefValue[T]) With(fn func(v T)) {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	fn(rv.val)
}

// Key returns the canonical key the cell is bound to, or "" when unbound.
func (rv *RefValue[T]) Key() string {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.key
}

func (rv *RefValue[T]) set(key string, v T) {
	rv.mu.Lock()
	rv.key = key
	rv.val = v
	rv.mu.Unlock()
}

// bindInto resolves the cell's initial value and registers it for refresh.
// Cells may not nest: a RefValue inside a value that is itself being bound
// to a RefValue would double-resolve on refresh.
func (rv *RefValue[T]) bindInto(r *resolution) error {
	if r.refFlag {
		return ErrRecursiveBinding
	}
	k := r.path.String()

	sub := &resolution{cfg: r.cfg, snap: r.snap, history: r.history, refFlag: true}
	sub.path.Push(k)
	var v T
	if err := sub.decode(reflect.ValueOf(&v).Elem(), nil); err != nil {
		return err
	}
	rv.set(k, v)
	return r.cfg.refs.add(rv)
}

func (rv *RefValue[T]) refreshWith(c *Config) error {
	rv.mu.Lock()
	k := rv.key
	rv.mu.Unlock()

	res := c.newResolution()
	res.refFlag = true
	res.path.Push(k)
	var v T
	if err := res.decode(reflect.ValueOf(&v).Elem(), nil); err != nil {
		return err
	}
	rv.set(k, v)
	return nil
}

// BindRef resolves rawKey into a new cell and registers it for refresh.
func BindRef[T any](c *Config, rawKey string) (*RefValue[T], error) {
	cell := &RefValue[T]{}
	res := c.newResolution()
	res.path.Push(rawKey)
	if err := cell.bindInto(res); err != nil {
		return nil, err
	}
	return cell, nil
}

// registry holds every bound cell in registration order.
type registry struct {
	mu       sync.Mutex
	capacity int
	cells    []refreshable
}

func newRegistry(capacity int) *registry {
	return &registry{capacity: capacity}
}

func (g *registry) add(cell refreshable) error {
	if !g.mu.TryLock() {
		// A refresh pass holds the registry; binding from inside one is a
		// programming error, not something to wait out.
		return ErrLock
	}
	defer g.mu.Unlock()
	if len(g.cells) >= g.capacity {
		return fmt.Errorf("%w: refresh registry limit %d", ErrCapacity, g.capacity)
	}
	g.cells = append(g.cells, cell)
	return nil
}

// refreshAll re-resolves cells in registration order. The first failure
// aborts the remaining cells; earlier cells keep their refreshed values.
func (g *registry) refreshAll(c *Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, cell := range g.cells {
		if err := cell.refreshWith(c); err != nil {
			return err
		}
	}
	return nil
}
