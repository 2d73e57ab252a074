// Package gallery provides the module gallery: an append-only,
// content-addressed catalog of Eurorack module definitions backed by Redis.
//
// Every catalog write is a new revision. A revision is a complete, immutable
// snapshot of one module type's documented facts (manufacturer, name, width,
// jacks, tags, modes) whose identity is the sha256 of its canonical JSON. Two
// entries with the same facts therefore share an identity, and appending the
// same identity twice is a collision, never an overwrite. Corrections to a
// module's documentation are later revisions under the same module key; the
// per-key revision thread (a Redis sorted set scored by revision number)
// answers "latest" queries.
//
// All Redis keys and channels are namespaced by workspace name so that
// multiple galleries can coexist on a single Redis server.
//
// Key entities:
//
//   - Entry: one module type revision with its jacks and signal contracts
//   - Jack: a named connection point with direction and signal contract
//   - StoredEntry: an Entry plus its storage metadata (key, identity,
//     revision number, append timestamp)
//   - Store: the namespaced Redis client with atomic create-if-absent appends
package gallery
