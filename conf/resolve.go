package conf

import (
	"errors"
	"strings"
	"sync"

	"github.com/jonwraymond/confkit/key"
	"github.com/jonwraymond/confkit/store"
)

// resolution carries the state of one lookup: the key cursor, the snapshot
// being read, and the set of placeholder keys currently in flight. The
// history set is shared across the whole chain rooted at the original
// lookup; the cursor is not.
type resolution struct {
	cfg     *Config
	snap    *store.Layered
	path    key.Path
	history map[string]struct{}
	refFlag bool
}

func (c *Config) newResolution() *resolution {
	return &resolution{
		cfg:     c,
		snap:    c.snapshotNow(),
		history: make(map[string]struct{}),
	}
}

// value returns the scalar at the cursor with placeholders expanded and
// random markers normalized. def stands in for a missing raw value and is
// itself subject to expansion.
func (r *resolution) value(def *string) (store.Value, bool, error) {
	k := r.path.String()
	v, ok := r.snap.Get(k)
	if !ok {
		if def == nil {
			return store.Value{}, false, nil
		}
		v = store.String(*def)
	}
	switch v.Kind() {
	case store.KindString:
		out, expanded, err := r.expand(k, v.Str())
		if err != nil {
			return store.Value{}, false, err
		}
		if expanded {
			v = store.String(out)
		}
	case store.KindRandom:
		v = normalizeRandom(v.RandVal())
	}
	return v, true, nil
}

// stringAt resolves rawKey from the top of the key space as a string,
// reusing the snapshot and in-flight history of this resolution.
func (r *resolution) stringAt(rawKey string) (string, error) {
	sub := &resolution{cfg: r.cfg, snap: r.snap, history: r.history}
	sub.path.Push(rawKey)
	v, ok, err := sub.value(nil)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", notFoundErr(sub.path.String())
	}
	return toString(sub.path.String(), v)
}

// scratch is the placeholder scanner's working state. Buffers are pooled;
// a reentrant expansion (a placeholder resolving a key whose value again
// contains placeholders) simply takes another buffer from the pool.
type scratch struct {
	buf   []byte
	stack []int
}

var scratchPool = sync.Pool{New: func() any { return &scratch{} }}

// expand resolves every ${...} expression inside raw.
//
// Grammar: ${inner} and ${inner:default}; expressions nest; '\' escapes the
// following character. The boolean result reports whether anything was
// rewritten: a string without '$', '\' or '}' comes back untouched.
func (r *resolution) expand(currentKey, raw string) (string, bool, error) {
	const special = "$\\}"
	if !strings.ContainsAny(raw, special) {
		return raw, false, nil
	}

	sc := scratchPool.Get().(*scratch)
	defer func() {
		sc.buf = sc.buf[:0]
		sc.stack = sc.stack[:0]
		scratchPool.Put(sc)
	}()

	value := raw
	for {
		pos := strings.IndexAny(value, special)
		if pos < 0 {
			break
		}
		switch value[pos] {
		case '$':
			if pos+1 >= len(value) || value[pos+1] != '{' {
				return "", false, parseErr(currentKey, raw)
			}
			sc.buf = append(sc.buf, value[:pos]...)
			sc.stack = append(sc.stack, len(sc.buf))
			value = value[pos+2:]

		case '\\':
			if pos+1 >= len(value) {
				return "", false, parseErr(currentKey, raw)
			}
			sc.buf = append(sc.buf, value[:pos]...)
			sc.buf = append(sc.buf, value[pos+1])
			value = value[pos+2:]

		case '}':
			if len(sc.stack) == 0 {
				return "", false, parseErr(currentKey, raw)
			}
			mark := sc.stack[len(sc.stack)-1]
			sc.stack = sc.stack[:len(sc.stack)-1]
			sc.buf = append(sc.buf, value[:pos]...)

			// The expression body is fully expanded already: any nested
			// ${} closed before this brace.
			body := string(sc.buf[mark:])
			inner := body
			var def *string
			if ci := strings.IndexByte(body, ':'); ci >= 0 {
				inner = body[:ci]
				d := body[ci+1:]
				def = &d
			}

			if _, inFlight := r.history[inner]; inFlight {
				return "", false, cycleErr(currentKey)
			}
			r.history[inner] = struct{}{}
			resolved, err := r.stringAt(inner)
			delete(r.history, inner)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					if def == nil {
						return "", false, recursiveNotFoundErr(key.Normalize(inner))
					}
					resolved = *def
				} else {
					return "", false, err
				}
			}

			sc.buf = sc.buf[:mark]
			sc.buf = append(sc.buf, resolved...)
			value = value[pos+1:]
		}
	}

	if len(sc.stack) != 0 {
		return "", false, parseErr(currentKey, raw)
	}
	sc.buf = append(sc.buf, value...)
	return string(sc.buf), true, nil
}
