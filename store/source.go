package store

// Source is one named provider of configuration key/value pairs.
//
// Contract:
// - Load flattens the source's data into the sink; it may be called again
//   on every reload and must tolerate repeated invocation.
// - Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in logs and error messages.
	Name() string

	// Load populates the sink with the source's current data.
	Load(sink *Sink) error
}

// Refreshable is implemented by sources whose data can change after
// registration.
//
// Changed is stateful and single-shot: a call that observes a change resets
// the internal flag, so polling twice without an intervening real change
// reports true at most once.
type Refreshable interface {
	Source

	// Changed reports whether the source data changed since the last call.
	Changed() (bool, error)
}

// Parser flattens a serialized configuration document into a sink. File and
// network sources delegate format handling to a Parser so the store stays
// format-agnostic.
type Parser interface {
	// Parse flattens content into the sink.
	Parse(content []byte, sink *Sink) error

	// Extensions returns the file extensions this parser handles, without
	// the leading dot.
	Extensions() []string
}
