// Package file loads configuration files, delegating format handling to a
// parser chosen by extension.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/confkit/source/ini"
	"github.com/jonwraymond/confkit/source/json"
	"github.com/jonwraymond/confkit/source/toml"
	"github.com/jonwraymond/confkit/source/yaml"
	"github.com/jonwraymond/confkit/store"
)

var (
	// ErrNotExists indicates a required file is missing.
	ErrNotExists = errors.New("file: configuration file not found")

	// ErrUnsupported indicates no parser handles the file's extension.
	ErrUnsupported = errors.New("file: unsupported extension")
)

// DefaultParsers returns the built-in parsers in search order.
func DefaultParsers() []store.Parser {
	return []store.Parser{json.Parser{}, yaml.Parser{}, toml.Parser{}, ini.Parser{}}
}

// Detect picks the parser for path by its extension.
func Detect(path string) (store.Parser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, p := range DefaultParsers() {
		for _, e := range p.Extensions() {
			if e == ext {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, path)
}

// Source loads one configuration file. It is refreshable: Changed compares
// the file's size and modification time against the last load and is
// single-shot, so a poll that observes a change arms the next load.
type Source struct {
	path     string
	dir      string
	stem     string
	required bool
	parser   store.Parser

	mu      sync.Mutex
	found   string
	size    int64
	modTime time.Time
}

// New creates a source for a fixed path. A missing optional file loads
// nothing; a missing required file fails registration.
func New(path string, required bool, parser store.Parser) *Source {
	return &Source{path: path, required: required, parser: parser}
}

// NewSearch creates an optional source that looks for dir/stem.<ext> for
// each extension the parser handles, loading the first match.
func NewSearch(dir, stem string, parser store.Parser) *Source {
	return &Source{dir: dir, stem: stem, parser: parser}
}

// Name implements store.Source.
func (s *Source) Name() string {
	if s.path != "" {
		return "file:" + s.path
	}
	return "file:" + filepath.Join(s.dir, s.stem) + ".*"
}

// locate returns the concrete path to read, or "" when nothing matches a
// search source.
func (s *Source) locate() string {
	if s.path != "" {
		return s.path
	}
	for _, ext := range s.parser.Extensions() {
		p := filepath.Join(s.dir, s.stem+"."+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load implements store.Source.
func (s *Source) Load(sink *store.Sink) error {
	p := s.locate()
	if p == "" {
		if s.required {
			return fmt.Errorf("%w: %s", ErrNotExists, s.Name())
		}
		s.remember("", 0, time.Time{})
		return nil
	}
	content, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !s.required {
			s.remember("", 0, time.Time{})
			return nil
		}
		return fmt.Errorf("file: reading %s: %w", p, err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("file: stat %s: %w", p, err)
	}
	if err := s.parser.Parse(content, sink); err != nil {
		return fmt.Errorf("file: parsing %s: %w", p, err)
	}
	s.remember(p, info.Size(), info.ModTime())
	return nil
}

func (s *Source) remember(path string, size int64, modTime time.Time) {
	s.mu.Lock()
	s.found, s.size, s.modTime = path, size, modTime
	s.mu.Unlock()
}

// Changed implements store.Refreshable.
func (s *Source) Changed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.locate()
	if p == "" {
		if s.required {
			return false, fmt.Errorf("%w: %s", ErrNotExists, s.Name())
		}
		changed := s.found != ""
		s.found, s.size, s.modTime = "", 0, time.Time{}
		return changed, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return false, fmt.Errorf("file: stat %s: %w", p, err)
	}
	changed := p != s.found || info.Size() != s.size || !info.ModTime().Equal(s.modTime)
	s.found, s.size, s.modTime = p, info.Size(), info.ModTime()
	return changed, nil
}

var (
	_ store.Source      = (*Source)(nil)
	_ store.Refreshable = (*Source)(nil)
)
