// Package toml flattens TOML documents into the configuration store.
package toml

import (
	"fmt"
	"reflect"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jonwraymond/confkit/store"
)

// Parser implements store.Parser for TOML.
type Parser struct{}

// Extensions implements store.Parser.
func (Parser) Extensions() []string { return []string{"toml"} }

// Parse implements store.Parser. Datetimes load as RFC 3339 strings.
func (Parser) Parse(content []byte, sink *store.Sink) error {
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("toml: %w", err)
	}
	walkMap(doc, sink)
	return nil
}

func walkMap(m map[string]any, sink *store.Sink) {
	for k, v := range m {
		sink.Push(k)
		walk(v, sink)
		sink.Pop()
	}
}

func walk(v any, sink *store.Sink) {
	switch x := v.(type) {
	case map[string]any:
		walkMap(x, sink)
	case string:
		sink.Set(store.String(x))
	case bool:
		sink.Set(store.Bool(x))
	case int64:
		sink.Set(store.Int(x))
	case float64:
		sink.Set(store.Float(x))
	case time.Time:
		sink.Set(store.String(x.Format(time.RFC3339)))
	case nil:
	default:
		// Arrays decode as typed slices ([]any, []map[string]any,
		// []int64, ...); walk them uniformly through reflection.
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				sink.PushIndex(i)
				walk(rv.Index(i).Interface(), sink)
				sink.Pop()
			}
			return
		}
		sink.Set(store.Of(v))
	}
}

var _ store.Parser = Parser{}
