// Package key models structured configuration key paths.
//
// A raw key string such as "server.hosts[0].name" is parsed into an ordered
// sequence of segments (names and array indices) with a single canonical
// string form. Numeric spellings normalize identically: "a.0.b" and "a[0].b"
// are the same key.
//
// Path supports scoped push/pop so a decoder walking into nested fields or
// array elements can extend and retract the current key without re-parsing.
package key
