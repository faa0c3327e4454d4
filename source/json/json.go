// Package json flattens JSON documents into the configuration store.
package json

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonwraymond/confkit/store"
)

// ErrInvalid indicates the document is not well-formed JSON.
var ErrInvalid = errors.New("json: invalid document")

// Parser implements store.Parser for JSON.
type Parser struct{}

// Extensions implements store.Parser.
func (Parser) Extensions() []string { return []string{"json"} }

// Parse implements store.Parser. Null values are dropped; numbers without
// a fraction or exponent in their source text load as integers.
func (Parser) Parse(content []byte, sink *store.Sink) error {
	if !gjson.ValidBytes(content) {
		return ErrInvalid
	}
	walk(gjson.ParseBytes(content), sink)
	return nil
}

func walk(r gjson.Result, sink *store.Sink) {
	switch {
	case r.IsObject():
		r.ForEach(func(k, v gjson.Result) bool {
			sink.Push(k.String())
			walk(v, sink)
			sink.Pop()
			return true
		})
	case r.IsArray():
		i := 0
		r.ForEach(func(_, v gjson.Result) bool {
			sink.PushIndex(i)
			walk(v, sink)
			sink.Pop()
			i++
			return true
		})
	case r.Type == gjson.String:
		sink.Set(store.String(r.Str))
	case r.Type == gjson.Number:
		if strings.ContainsAny(r.Raw, ".eE") {
			sink.Set(store.Float(r.Float()))
		} else {
			sink.Set(store.Int(r.Int()))
		}
	case r.Type == gjson.True, r.Type == gjson.False:
		sink.Set(store.Bool(r.Bool()))
	}
}

var _ store.Parser = Parser{}
