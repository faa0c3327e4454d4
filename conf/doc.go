// Package conf resolves configuration keys against layered sources.
//
// It provides:
//   - Typed lookups over a merged store (see Get, GetOr, Config.Unmarshal)
//   - Placeholder expansion in string values: ${key}, ${key:default},
//     nested and escaped expressions, with cycle detection
//   - Hot refresh of previously issued values (see RefValue, Config.Refresh)
//   - Struct binding with conf/default/validate field tags
//
// Sources are consulted in registration order; the first source defining a
// scalar wins. Lookups read a consistent snapshot, so a concurrent Refresh
// never exposes a half-loaded store.
package conf
