// Package store provides storage abstractions for the model registry.
//
// This package defines the catalog store interfaces consumed by the registry
// service, the authenticators and the HTTP endpoints. Two implementations
// exist: store/gorm for PostgreSQL and store/memory for tests and local runs.
//
// # Available Stores
//
//   - EntriesStore: registry entries (create, filtered listing, locked
//     read-modify-write updates, atomic access counting)
//   - UsersStore: accounts used by the password authenticator
//   - PoliciesStore: access policy documents
//   - HealthStore: connectivity checks
//
// # Usage
//
//	entries := gorm.NewEntriesStore(db)
//	entry, err := entries.GetEntry(ctx, id)
//	if err != nil {
//	    if errors.Is(err, store.ErrEntryNotFound) {
//	        // Handle not found
//	    }
//	}
package store
