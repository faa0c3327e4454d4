package conf

import (
	"fmt"

	"github.com/jonwraymond/confkit/source/env"
	"github.com/jonwraymond/confkit/source/file"
	"github.com/jonwraymond/confkit/source/random"
	"github.com/jonwraymond/confkit/store"
)

// Builder assembles a Config with the conventional layer stack:
//
//	random markers (when enabled)
//	programmatic values ("fixed:program")
//	prefixed environment variables
//	caller-supplied sources
//	profile configuration file ("<name>-<profile>.<ext>")
//	plain configuration file ("<name>.<ext>")
//
// Earlier layers win scalar conflicts. File layers are searched for every
// default parser extension and are optional.
type Builder struct {
	envPrefix string
	random    bool
	fixed     *store.Memory
	sources   []store.Source
	opts      []Option
}

// NewBuilder creates a Builder with the default environment prefix "CFG".
func NewBuilder() *Builder {
	return &Builder{
		envPrefix: "CFG",
		fixed:     store.NewMemory("fixed:program"),
	}
}

// Set stores a programmatic value in the highest non-random layer.
func (b *Builder) Set(rawKey string, v any) *Builder {
	b.fixed.Set(rawKey, v)
	return b
}

// SetName sets the application name used to locate configuration files.
func (b *Builder) SetName(name string) *Builder { return b.Set("app.name", name) }

// SetDir sets the directory searched for configuration files.
func (b *Builder) SetDir(dir string) *Builder { return b.Set("app.dir", dir) }

// SetProfile selects the profile variant of the configuration file.
func (b *Builder) SetProfile(profile string) *Builder { return b.Set("app.profile", profile) }

// SetEnvPrefix overrides the environment variable prefix. An empty prefix
// disables the environment layer.
func (b *Builder) SetEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// EnableRandom registers the random marker source as the first layer.
func (b *Builder) EnableRandom() *Builder {
	b.random = true
	return b
}

// AddSource appends a caller-supplied source between the environment and
// file layers.
func (b *Builder) AddSource(src store.Source) *Builder {
	b.sources = append(b.sources, src)
	return b
}

// WithOptions forwards Config options to Build.
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build registers the layer stack and resolves the file layers from the
// app.name, app.dir and app.profile keys of the layers registered so far.
func (b *Builder) Build() (*Config, error) {
	c := New(b.opts...)
	if b.random {
		if err := c.Register(random.New()); err != nil {
			return nil, err
		}
	}
	if err := c.Register(b.fixed); err != nil {
		return nil, err
	}
	if b.envPrefix != "" {
		if err := c.Register(env.New(b.envPrefix)); err != nil {
			return nil, err
		}
	}
	for _, src := range b.sources {
		if err := c.Register(src); err != nil {
			return nil, err
		}
	}

	name, err := GetOr(c, "app.name", "app")
	if err != nil {
		return nil, fmt.Errorf("conf: resolving app.name: %w", err)
	}
	dir, err := GetOr(c, "app.dir", "")
	if err != nil {
		return nil, fmt.Errorf("conf: resolving app.dir: %w", err)
	}
	profile, err := GetOr(c, "app.profile", "")
	if err != nil {
		return nil, fmt.Errorf("conf: resolving app.profile: %w", err)
	}

	for _, parser := range file.DefaultParsers() {
		if profile != "" {
			if err := c.Register(file.NewSearch(dir, name+"-"+profile, parser)); err != nil {
				return nil, err
			}
		}
		if err := c.Register(file.NewSearch(dir, name, parser)); err != nil {
			return nil, err
		}
	}
	return c, nil
}
