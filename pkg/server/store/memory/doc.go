// Package memory implements every store interface on an in-process map.
//
// It backs unit tests, benchmarks and `registryctl server --store memory`.
// A single mutex serialises all operations, which gives UpdateEntry and
// IncrementAccess the same no-lost-update guarantee the PostgreSQL store gets
// from row locks.
package memory
