// Package env loads prefixed environment variables as a configuration
// source. A variable PREFIX_SERVER_PORT=8080 becomes the key
// "server.port": the prefix is stripped, the rest lowercased and
// underscores become dots.
package env

import (
	"os"
	"strings"

	"github.com/jonwraymond/confkit/store"
)

// Source reads the process environment at load time. Reloads observe
// variables changed since registration.
type Source struct {
	prefix string
}

// New creates a source for variables starting with prefix followed by an
// underscore.
func New(prefix string) *Source {
	return &Source{prefix: prefix}
}

// Name implements store.Source.
func (s *Source) Name() string {
	return "env:" + s.prefix + "_*"
}

// Load implements store.Source.
func (s *Source) Load(sink *store.Sink) error {
	prefix := s.prefix + "_"
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, prefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		name := kv[len(prefix):eq]
		if name == "" {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(name), "_", ".")
		sink.SetKV(key, store.String(kv[eq+1:]))
	}
	return nil
}

var _ store.Source = (*Source)(nil)
