// Package registry implements the model registry's domain service.
//
// Service owns the RegistryEntry lifecycle: registration, lookup, filtered
// listing and free-text search with pagination, partial updates, promotion,
// deletion and access counting. It depends only on store.EntriesStore and
// never holds locks; Promote, Update and RecordAccess each run as a single
// atomic store operation so that concurrent requests cannot lose updates.
//
// Errors fall into four classes, matched with errors.Is:
//
//   - ErrValidation (via *ValidationError): malformed input, store untouched
//   - ErrNotFound: no matching entry
//   - ErrStoreFailure: persistence failed; never retried here
//   - authentication failures never reach this package; callers resolve the
//     principal first and pass its identity string in
//
// Lifecycle status is advisory. Promote accepts any target from any state,
// and Update may also overwrite status and reviewer directly.
package registry
