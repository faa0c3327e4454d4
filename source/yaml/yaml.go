// Package yaml flattens YAML documents into the configuration store.
package yaml

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/confkit/store"
)

// Parser implements store.Parser for YAML.
type Parser struct{}

// Extensions implements store.Parser.
func (Parser) Extensions() []string { return []string{"yaml", "yml"} }

// Parse implements store.Parser. Null values are dropped.
func (Parser) Parse(content []byte, sink *store.Sink) error {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	walk(doc, sink)
	return nil
}

func walk(v any, sink *store.Sink) {
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			sink.Push(k)
			walk(child, sink)
			sink.Pop()
		}
	case []any:
		for i, child := range x {
			sink.PushIndex(i)
			walk(child, sink)
			sink.Pop()
		}
	case string:
		sink.Set(store.String(x))
	case bool:
		sink.Set(store.Bool(x))
	case int:
		sink.Set(store.Int(int64(x)))
	case int64:
		sink.Set(store.Int(x))
	case uint64:
		sink.Set(store.Of(x))
	case float64:
		sink.Set(store.Float(x))
	case time.Time:
		sink.Set(store.String(x.Format(time.RFC3339)))
	case nil:
	default:
		sink.Set(store.Of(x))
	}
}

var _ store.Parser = Parser{}
