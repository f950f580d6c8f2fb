package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

var (
	_ store.EntriesStore  = (*Store)(nil)
	_ store.UsersStore    = (*Store)(nil)
	_ store.PoliciesStore = (*Store)(nil)
	_ store.HealthStore   = (*Store)(nil)
)

// Store keeps the whole catalog in process memory behind one mutex. Values are
// cloned on the way in and out so callers never share memory with the store.
type Store struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]model.RegistryEntry
	users    map[string]model.User
	policies map[uuid.UUID]model.AccessPolicy
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries:  make(map[uuid.UUID]model.RegistryEntry),
		users:    make(map[string]model.User),
		policies: make(map[uuid.UUID]model.AccessPolicy),
	}
}

func (s *Store) CreateEntry(_ context.Context, entry model.RegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ModelID] = entry.Clone()
	return nil
}

func (s *Store) GetEntry(_ context.Context, id uuid.UUID) (model.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return model.RegistryEntry{}, store.ErrEntryNotFound
	}
	return entry.Clone(), nil
}

func (s *Store) LatestEntry(_ context.Context, filter store.EntryFilter) (model.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := s.match(filter)
	if len(matches) == 0 {
		return model.RegistryEntry{}, store.ErrEntryNotFound
	}
	return matches[0].Clone(), nil
}

func (s *Store) ListEntries(_ context.Context, filter store.EntryFilter) ([]model.RegistryEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := s.match(filter)
	total := int64(len(matches))

	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	page := make([]model.RegistryEntry, 0, end-start)
	for _, e := range matches[start:end] {
		page = append(page, e.Clone())
	}
	return page, total, nil
}

func (s *Store) UpdateEntry(_ context.Context, id uuid.UUID, fn func(*model.RegistryEntry) error) (model.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[id]
	if !ok {
		return model.RegistryEntry{}, store.ErrEntryNotFound
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return model.RegistryEntry{}, err
	}
	next.ModelID = current.ModelID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	next.AccessCount = current.AccessCount
	next.LastAccessed = current.LastAccessed

	s.entries[id] = next
	return next.Clone(), nil
}

func (s *Store) DeleteEntry(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return store.ErrEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) IncrementAccess(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return store.ErrEntryNotFound
	}
	entry.AccessCount++
	entry.LastAccessed = &at
	s.entries[id] = entry
	return nil
}

func (s *Store) CreateUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return store.ErrUserExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return model.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) CreatePolicy(_ context.Context, policy model.AccessPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy.Rules = append([]byte(nil), policy.Rules...)
	s.policies[policy.ID] = policy
	return nil
}

func (s *Store) GetPolicy(_ context.Context, id uuid.UUID) (model.AccessPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[id]
	if !ok {
		return model.AccessPolicy{}, store.ErrPolicyNotFound
	}
	return policy, nil
}

func (s *Store) ListPolicies(_ context.Context) ([]model.AccessPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policies := make([]model.AccessPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		policies = append(policies, p)
	}
	sort.Slice(policies, func(i, j int) bool {
		if !policies[i].CreatedAt.Equal(policies[j].CreatedAt) {
			return policies[i].CreatedAt.After(policies[j].CreatedAt)
		}
		return bytes.Compare(policies[i].ID[:], policies[j].ID[:]) > 0
	})
	return policies, nil
}

func (s *Store) CheckConnectivity(context.Context) error {
	return nil
}

// match returns the entries satisfying f in listing order. Callers hold s.mu.
func (s *Store) match(f store.EntryFilter) []model.RegistryEntry {
	var out []model.RegistryEntry
	for _, e := range s.entries {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ModelID[:], out[j].ModelID[:]) > 0
	})
	return out
}

func matches(e model.RegistryEntry, f store.EntryFilter) bool {
	if f.ModelType != nil && e.ModelType != *f.ModelType {
		return false
	}
	if f.Domain != nil && e.Domain != *f.Domain {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.TagsContains != nil && !contains(e.Tags, *f.TagsContains) {
		return false
	}
	if f.Query != nil {
		q := *f.Query
		if !strings.Contains(e.ModelName, q) && !strings.Contains(e.DisplayName, q) && !contains(e.Tags, q) {
			return false
		}
	}
	return true
}

// contains mirrors strpos on a nullable column: NULL never matches.
func contains(s *string, sub string) bool {
	return s != nil && strings.Contains(*s, sub)
}
