package conf

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/confkit/store"
)

// Sentinel errors for configuration resolution.
var (
	// ErrNotFound indicates the key is absent and no default applies.
	ErrNotFound = errors.New("conf: key not found")

	// ErrRecursiveNotFound indicates a placeholder's inner key was absent
	// and the expression carried no default. Distinct from ErrNotFound so
	// optional lookups do not swallow it.
	ErrRecursiveNotFound = errors.New("conf: placeholder key not found")

	// ErrCycle indicates a key reappeared in its own resolution chain.
	ErrCycle = errors.New("conf: placeholder cycle detected")

	// ErrParse indicates malformed placeholder syntax or an unparseable
	// value.
	ErrParse = errors.New("conf: parse error")

	// ErrTypeMismatch indicates the scalar kind does not match the
	// requested type.
	ErrTypeMismatch = errors.New("conf: type mismatch")

	// ErrCapacity indicates the refresh registry (or source list) is full.
	ErrCapacity = errors.New("conf: capacity exceeded")

	// ErrRecursiveBinding indicates a refreshable cell nested inside
	// another refreshable cell.
	ErrRecursiveBinding = errors.New("conf: recursive refreshable binding")

	// ErrLock indicates a guarded resource could not be acquired, such as
	// binding a cell while a refresh pass holds the registry.
	ErrLock = errors.New("conf: lock unavailable")
)

func notFoundErr(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

func recursiveNotFoundErr(inner string) error {
	return fmt.Errorf("%w: %s", ErrRecursiveNotFound, inner)
}

func cycleErr(key string) error {
	return fmt.Errorf("%w: %s", ErrCycle, key)
}

func parseErr(key, value string) error {
	return fmt.Errorf("%w: key %q value %q", ErrParse, key, value)
}

func typeMismatchErr(key string, found store.Kind, want string) error {
	return fmt.Errorf("%w: key %q holds %s, want %s", ErrTypeMismatch, key, found, want)
}

// causeErr wraps an underlying conversion failure so callers can still
// reach it with errors.As.
func causeErr(key string, err error) error {
	return fmt.Errorf("conf: key %q: %w", key, err)
}
