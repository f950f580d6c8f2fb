package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// MockEntriesStore is a mock implementation of store.EntriesStore
type MockEntriesStore struct {
	mock.Mock
}

func NewMockEntriesStore() *MockEntriesStore {
	return &MockEntriesStore{}
}

func (m *MockEntriesStore) CreateEntry(ctx context.Context, entry model.RegistryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntriesStore) GetEntry(ctx context.Context, id uuid.UUID) (model.RegistryEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.RegistryEntry), args.Error(1)
}

func (m *MockEntriesStore) LatestEntry(ctx context.Context, filter store.EntryFilter) (model.RegistryEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(model.RegistryEntry), args.Error(1)
}

func (m *MockEntriesStore) ListEntries(ctx context.Context, filter store.EntryFilter) ([]model.RegistryEntry, int64, error) {
	args := m.Called(ctx, filter)
	var entries []model.RegistryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]model.RegistryEntry)
	}
	return entries, args.Get(1).(int64), args.Error(2)
}

func (m *MockEntriesStore) UpdateEntry(ctx context.Context, id uuid.UUID, fn func(*model.RegistryEntry) error) (model.RegistryEntry, error) {
	args := m.Called(ctx, id, fn)
	return args.Get(0).(model.RegistryEntry), args.Error(1)
}

func (m *MockEntriesStore) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntriesStore) IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
