// Package ini flattens INI documents into the configuration store.
// Section names become key prefixes; keys in the unnamed default section
// load at the root.
package ini

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/jonwraymond/confkit/store"
)

// Parser implements store.Parser for INI.
type Parser struct{}

// Extensions implements store.Parser.
func (Parser) Extensions() []string { return []string{"ini"} }

// Parse implements store.Parser. All values load as strings; typed reads
// go through the usual string conversions.
func (Parser) Parse(content []byte, sink *store.Sink) error {
	f, err := ini.Load(content)
	if err != nil {
		return fmt.Errorf("ini: %w", err)
	}
	for _, section := range f.Sections() {
		inRoot := section.Name() == ini.DefaultSection
		if !inRoot {
			sink.Push(section.Name())
		}
		for _, k := range section.Keys() {
			sink.SetKV(k.Name(), store.String(k.Value()))
		}
		if !inRoot {
			sink.Pop()
		}
	}
	return nil
}

var _ store.Parser = Parser{}
