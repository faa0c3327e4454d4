package store

// Memory is an in-process source populated programmatically, used for
// command-line layers, test fixtures and manual overrides. Within a single
// Memory the last Set for a key wins; across sources normal layering
// priority applies.
type Memory struct {
	name   string
	order  []string
	values map[string]Value
}

// NewMemory creates an empty memory source.
func NewMemory(name string) *Memory {
	return &Memory{name: name, values: make(map[string]Value)}
}

// Set stores a value under rawKey and returns the source for chaining.
// Accepts Go scalars or a Value (see Of).
func (m *Memory) Set(rawKey string, v any) *Memory {
	if _, ok := m.values[rawKey]; !ok {
		m.order = append(m.order, rawKey)
	}
	m.values[rawKey] = Of(v)
	return m
}

// Name implements Source.
func (m *Memory) Name() string { return m.name }

// Load implements Source, writing entries in insertion order.
func (m *Memory) Load(sink *Sink) error {
	for _, k := range m.order {
		sink.SetKV(k, m.values[k])
	}
	return nil
}

var _ Source = (*Memory)(nil)
