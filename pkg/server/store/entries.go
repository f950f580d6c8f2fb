package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
)

// ErrEntryNotFound is returned when no registry entry has the requested ID
var ErrEntryNotFound = errors.New("registry entry not found")

// EntryFilter selects registry entries. Nil fields do not constrain the
// result. All set fields are AND-combined.
type EntryFilter struct {
	ModelType *model.ModelType
	Domain    *string
	Status    *model.Status

	// TagsContains matches entries whose tag string contains the value
	// (case-sensitive, literal).
	TagsContains *string

	// Query matches entries whose name, display name or tags contain the
	// value (case-sensitive, literal).
	Query *string

	// Offset and Limit page the ordered result. Limit <= 0 means no limit.
	Offset int
	Limit  int
}

// EntriesStore persists registry entries.
//
// Every listing is ordered by created_at descending, then model_id
// descending, so that results are deterministic for equal timestamps.
type EntriesStore interface {
	// CreateEntry inserts a fully populated entry.
	CreateEntry(ctx context.Context, entry model.RegistryEntry) error

	// GetEntry retrieves an entry by ID.
	// Returns ErrEntryNotFound if it doesn't exist.
	GetEntry(ctx context.Context, id uuid.UUID) (model.RegistryEntry, error)

	// LatestEntry returns the first entry matching the filter in listing order.
	// Offset and Limit are ignored. Returns ErrEntryNotFound when nothing matches.
	LatestEntry(ctx context.Context, filter EntryFilter) (model.RegistryEntry, error)

	// ListEntries returns one page of matching entries together with the
	// number of matches before paging.
	ListEntries(ctx context.Context, filter EntryFilter) ([]model.RegistryEntry, int64, error)

	// UpdateEntry runs fn against the current row inside a single transaction
	// holding the row lock, then writes the mutable fields back. The ID,
	// creator, creation time and usage counters are never written by this
	// method. If fn returns an error nothing is written and that error is
	// returned unchanged.
	UpdateEntry(ctx context.Context, id uuid.UUID, fn func(*model.RegistryEntry) error) (model.RegistryEntry, error)

	// DeleteEntry removes an entry permanently.
	// Returns ErrEntryNotFound if it doesn't exist.
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// IncrementAccess atomically adds one to the access counter and sets
	// last_accessed to at. Returns ErrEntryNotFound if the entry doesn't exist.
	IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error
}
