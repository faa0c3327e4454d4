// Package random publishes marker values under the "random." prefix.
// Every lookup of a marker draws a fresh value: random.u8 through
// random.u64 and random.i8 through random.i64 yield integers of the named
// width, random.uuid yields a v4 UUID string.
package random

import "github.com/jonwraymond/confkit/store"

// Source registers the random marker keys.
type Source struct{}

// New creates the random source.
func New() *Source { return &Source{} }

// Name implements store.Source.
func (*Source) Name() string { return "random" }

// Load implements store.Source.
func (*Source) Load(sink *store.Sink) error {
	markers := []struct {
		key string
		r   store.Rand
	}{
		{"random.u8", store.RandU8},
		{"random.u16", store.RandU16},
		{"random.u32", store.RandU32},
		{"random.u64", store.RandU64},
		{"random.i8", store.RandI8},
		{"random.i16", store.RandI16},
		{"random.i32", store.RandI32},
		{"random.i64", store.RandI64},
		{"random.uuid", store.RandUUID},
	}
	for _, m := range markers {
		sink.SetKV(m.key, store.Random(m.r))
	}
	return nil
}

var _ store.Source = (*Source)(nil)
