package store

import (
	"sort"

	"github.com/jonwraymond/confkit/key"
)

// node describes one canonical key: an optional scalar plus the children
// known to exist directly beneath it. Nodes exist for intermediate prefixes
// even when they carry no scalar.
type node struct {
	value    *Value
	children map[string]struct{}
	maxIndex int // highest seen index + 1; 0 means no index children
}

// Layered is the merged view of every registered source, keyed by canonical
// key string. It is populated once per source registration and read-only
// afterwards; replace the whole Layered to pick up source changes.
type Layered struct {
	names    []string
	nodes    map[string]*node
	shadowed map[string][]string
}

// NewLayered creates an empty store.
func NewLayered() *Layered {
	return &Layered{
		nodes:    make(map[string]*node),
		shadowed: make(map[string][]string),
	}
}

// Register appends src to the priority list and immediately loads it.
// Earlier registrations win scalar conflicts; children descriptors are
// unioned regardless of priority.
func (l *Layered) Register(src Source) error {
	if err := src.Load(l.Sink(src.Name())); err != nil {
		return err
	}
	l.names = append(l.names, src.Name())
	return nil
}

// SourceNames returns the names of registered sources in priority order.
func (l *Layered) SourceNames() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Get returns the scalar stored at the canonical key, if any.
func (l *Layered) Get(canonical string) (Value, bool) {
	n, ok := l.nodes[canonical]
	if !ok || n.value == nil {
		return Value{}, false
	}
	return *n.value, true
}

// Children returns the children descriptor at prefix: the sorted literal
// name children and the array bound (highest seen index + 1, 0 when no
// index child exists).
func (l *Layered) Children(prefix string) ([]string, int) {
	n, ok := l.nodes[prefix]
	if !ok {
		return nil, 0
	}
	names := make([]string, 0, len(n.children))
	for c := range n.children {
		names = append(names, c)
	}
	sort.Strings(names)
	return names, n.maxIndex
}

// Shadowed returns, for a canonical key, the names of sources whose scalar
// write was dropped by the first-wins rule. The priority rule is silent by
// design; this query makes the conflict visible to callers that care.
func (l *Layered) Shadowed(canonical string) []string {
	return l.shadowed[canonical]
}

// Keys returns every canonical key holding a scalar, sorted.
func (l *Layered) Keys() []string {
	out := make([]string, 0, len(l.nodes))
	for k, n := range l.nodes {
		if n.value != nil {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (l *Layered) node(canonical string) *node {
	n, ok := l.nodes[canonical]
	if !ok {
		n = &node{}
		l.nodes[canonical] = n
	}
	return n
}

// addChild records seg as a known child of the node at parent.
func (l *Layered) addChild(parent string, seg key.Segment) {
	n := l.node(parent)
	if seg.IsIndex() {
		if bound := seg.Index() + 1; bound > n.maxIndex {
			n.maxIndex = bound
		}
		return
	}
	if n.children == nil {
		n.children = make(map[string]struct{})
	}
	n.children[seg.Name()] = struct{}{}
}

// Sink returns a builder that writes into the store on behalf of the named
// source. Each source should use its own sink; the cursor starts at the
// root key.
func (l *Layered) Sink(sourceName string) *Sink {
	return &Sink{store: l, source: sourceName}
}

// Sink is the cursor-based builder sources use to populate a store.
// Push/Pop move the cursor through the key space, registering every crossed
// segment as a child of its parent; Set writes a scalar at the cursor,
// honoring first-wins priority.
type Sink struct {
	store  *Layered
	source string
	path   key.Path
	counts []int
}

// Key returns the canonical key at the cursor.
func (s *Sink) Key() string {
	return s.path.String()
}

// Push advances the cursor by the segments parsed from raw.
func (s *Sink) Push(raw string) {
	s.pushSegments(key.Parse(raw))
}

// PushIndex advances the cursor by a single index segment.
func (s *Sink) PushIndex(i int) {
	s.pushSegments([]key.Segment{key.Index(i)})
}

func (s *Sink) pushSegments(segs []key.Segment) {
	for _, seg := range segs {
		s.store.addChild(s.path.String(), seg)
		s.path.PushSegments([]key.Segment{seg})
	}
	s.counts = append(s.counts, len(segs))
}

// Pop retracts the cursor to where it was before the matching Push.
func (s *Sink) Pop() {
	if len(s.counts) == 0 {
		return
	}
	n := s.counts[len(s.counts)-1]
	s.counts = s.counts[:len(s.counts)-1]
	for i := 0; i < n; i++ {
		s.path.Pop()
	}
}

// Set writes a scalar at the cursor unless an earlier source (or an earlier
// write from this source's own load) already set one. Conflicting writes
// are dropped silently per the layering contract and recorded for
// Layered.Shadowed.
func (s *Sink) Set(v Value) {
	n := s.store.node(s.path.String())
	if n.value != nil {
		k := s.path.String()
		s.store.shadowed[k] = append(s.store.shadowed[k], s.source)
		return
	}
	n.value = &v
}

// SetKV writes a scalar at rawKey relative to the cursor.
func (s *Sink) SetKV(rawKey string, v Value) {
	s.Push(rawKey)
	s.Set(v)
	s.Pop()
}

// SetMap writes each entry of m one level below the cursor.
func (s *Sink) SetMap(m map[string]Value) {
	for k, v := range m {
		s.SetKV(k, v)
	}
}

// SetArray writes vs as indexed children of the cursor.
func (s *Sink) SetArray(vs []Value) {
	for i, v := range vs {
		s.PushIndex(i)
		s.Set(v)
		s.Pop()
	}
}
