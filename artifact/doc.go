// Package artifact persists pipeline run outputs.
//
// The Store interface keeps callers independent of the storage backend:
// FileStore writes run artifacts to a local output directory the way
// operators expect to find them (timestamped result, article and audit
// files); InMemoryStore backs tests and single-process prototypes.
//
// Callers should depend on the Store interface rather than concrete types so
// they can substitute alternative persistence layers in tests or production.
package artifact
