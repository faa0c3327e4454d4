package key

import "strconv"

// Segment is one element of a key path: either a map/field name or an
// array index.
type Segment struct {
	name  string
	index int
	isIdx bool
}

// Name creates a name segment.
func Name(s string) Segment {
	return Segment{name: s}
}

// Index creates an index segment. Indices are non-negative.
func Index(i int) Segment {
	return Segment{index: i, isIdx: true}
}

// IsIndex reports whether the segment is an array index.
func (s Segment) IsIndex() bool { return s.isIdx }

// Name returns the name of a name segment, or "" for an index segment.
func (s Segment) Name() string { return s.name }

// Index returns the index of an index segment, or 0 for a name segment.
func (s Segment) Index() int { return s.index }

// String returns the canonical rendering of the segment on its own.
func (s Segment) String() string {
	return string(s.appendTo(nil))
}

// appendTo writes the canonical rendering of the segment to buf. A name
// segment is preceded by '.' unless buf is empty; an index segment is
// rendered "[i]" with no separator.
func (s Segment) appendTo(buf []byte) []byte {
	if s.isIdx {
		buf = append(buf, '[')
		buf = strconv.AppendInt(buf, int64(s.index), 10)
		return append(buf, ']')
	}
	if len(buf) > 0 {
		buf = append(buf, '.')
	}
	return append(buf, s.name...)
}

func isSep(r rune) bool {
	return r == '.' || r == '[' || r == ']'
}

// Parse splits a raw key string on '.', '[' and ']' into segments. Empty
// tokens are dropped. A token that parses as a non-negative integer becomes
// an index segment; anything else, including malformed numeric-looking
// tokens, falls back to a name segment. Parse never fails.
func Parse(raw string) []Segment {
	if raw == "" {
		return nil
	}
	var segs []Segment
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := raw[start:end]
		start = -1
		if i, err := strconv.Atoi(tok); err == nil && i >= 0 {
			segs = append(segs, Index(i))
			return
		}
		segs = append(segs, Name(tok))
	}
	for i, r := range raw {
		if isSep(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(raw))
	return segs
}

// Normalize returns the canonical string form of raw. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	var p Path
	p.Push(raw)
	return p.String()
}

// Path is a stack of key segments with a cached canonical string. Pushing
// appends the canonical rendering of the new segments; popping truncates the
// string back to the length recorded at the matching push. The zero value is
// an empty path ready for use.
type Path struct {
	buf   []byte
	marks []pushMark
}

type pushMark struct {
	length int
	segs   int
}

// Push parses raw and appends its segments as one scope. An empty raw string
// pushes an empty scope; the matching Pop still balances.
func (p *Path) Push(raw string) {
	p.PushSegments(Parse(raw))
}

// PushIndex appends a single index segment as one scope.
func (p *Path) PushIndex(i int) {
	p.PushSegments([]Segment{Index(i)})
}

// PushSegments appends segs as one scope.
func (p *Path) PushSegments(segs []Segment) {
	p.marks = append(p.marks, pushMark{length: len(p.buf), segs: len(segs)})
	for _, s := range segs {
		p.buf = s.appendTo(p.buf)
	}
}

// Pop retracts the most recent push, restoring the prior canonical string
// without re-parsing. Popping an empty path is a no-op.
func (p *Path) Pop() {
	if len(p.marks) == 0 {
		return
	}
	m := p.marks[len(p.marks)-1]
	p.marks = p.marks[:len(p.marks)-1]
	p.buf = p.buf[:m.length]
}

// String returns the current canonical key without re-parsing.
func (p *Path) String() string {
	return string(p.buf)
}

// Depth returns the number of open scopes.
func (p *Path) Depth() int {
	return len(p.marks)
}

// Reset empties the path for reuse.
func (p *Path) Reset() {
	p.buf = p.buf[:0]
	p.marks = p.marks[:0]
}
