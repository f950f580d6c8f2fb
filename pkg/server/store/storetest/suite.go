// Package storetest holds a conformance suite every catalog store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Stores bundles the implementations under test.
type Stores struct {
	Entries  store.EntriesStore
	Users    store.UsersStore
	Policies store.PoliciesStore
}

// Run exercises the store contract. makeStores may return shared stores: every
// case isolates its rows through a unique domain label or email.
func Run(t *testing.T, makeStores func(t *testing.T) Stores) {
	t.Helper()

	t.Run("entry round trip", func(t *testing.T) { testEntryRoundTrip(t, makeStores(t)) })
	t.Run("filters and ordering", func(t *testing.T) { testFiltersAndOrdering(t, makeStores(t)) })
	t.Run("pagination", func(t *testing.T) { testPagination(t, makeStores(t)) })
	t.Run("latest entry", func(t *testing.T) { testLatestEntry(t, makeStores(t)) })
	t.Run("update entry", func(t *testing.T) { testUpdateEntry(t, makeStores(t)) })
	t.Run("delete entry", func(t *testing.T) { testDeleteEntry(t, makeStores(t)) })
	t.Run("concurrent access counting", func(t *testing.T) { testConcurrentAccess(t, makeStores(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, makeStores(t)) })
	t.Run("policies", func(t *testing.T) { testPolicies(t, makeStores(t)) })
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func uniqueDomain() string {
	return "d-" + uuid.NewString()
}

func strPtr(s string) *string { return &s }

func newEntry(domain, name string, createdAt time.Time) model.RegistryEntry {
	return model.RegistryEntry{
		ModelID:      uuid.New(),
		ModelName:    name,
		DisplayName:  name + " display",
		Version:      "1.0.0",
		ModelType:    model.ModelTypeRegression,
		Domain:       domain,
		ArtifactPath: "s3://bucket/" + name,
		ModelFormat:  "onnx",
		Checksum:     "abc123",
		Status:       model.StatusDevelopment,
		CreatedBy:    "alice@example.com",
		CreatedAt:    createdAt,
	}
}

func testEntryRoundTrip(t *testing.T, s Stores) {
	ctx := context.Background()
	e := newEntry(uniqueDomain(), "fraud-detector", base)
	e.Tags = strPtr("fraud,finance")
	e.Metrics = datatypes.JSON(`{"auc": 0.91}`)
	parent := uuid.New()
	e.ParentModelID = &parent

	require.NoError(t, s.Entries.CreateEntry(ctx, e))

	got, err := s.Entries.GetEntry(ctx, e.ModelID)
	require.NoError(t, err)
	assert.Equal(t, e.ModelID, got.ModelID)
	assert.Equal(t, "fraud-detector", got.ModelName)
	assert.Equal(t, model.ModelTypeRegression, got.ModelType)
	assert.Equal(t, model.StatusDevelopment, got.Status)
	assert.Equal(t, "fraud,finance", *got.Tags)
	assert.JSONEq(t, `{"auc": 0.91}`, string(got.Metrics))
	assert.Equal(t, parent, *got.ParentModelID)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.Zero(t, got.AccessCount)
	assert.Nil(t, got.LastAccessed)

	_, err = s.Entries.GetEntry(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func testFiltersAndOrdering(t *testing.T, s Stores) {
	ctx := context.Background()
	domain := uniqueDomain()

	a := newEntry(domain, "alpha", base)
	a.Tags = strPtr("nlp,beta")
	b := newEntry(domain, "bravo", base.Add(time.Minute))
	b.ModelType = model.ModelTypeTransformer
	b.Status = model.StatusProduction
	b.Tags = strPtr("vision")
	c := newEntry(domain, "charlie", base.Add(2*time.Minute))
	c.DisplayName = "Alpha successor"
	for _, e := range []model.RegistryEntry{a, b, c} {
		require.NoError(t, s.Entries.CreateEntry(ctx, e))
	}

	all, total, err := s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uuid.UUID{c.ModelID, b.ModelID, a.ModelID}, ids(all))

	prod := model.StatusProduction
	got, total, err := s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, Status: &prod})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []uuid.UUID{b.ModelID}, ids(got))

	mt := model.ModelTypeRegression
	got, _, err = s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, ModelType: &mt})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ModelID, a.ModelID}, ids(got))

	got, _, err = s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, TagsContains: strPtr("nlp")})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ModelID}, ids(got))

	got, _, err = s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, TagsContains: strPtr("NLP")})
	require.NoError(t, err)
	assert.Empty(t, got, "tag matching is case-sensitive")

	// "lpha" hits alpha by name and charlie by display name; "beta" hits alpha by tag.
	got, total, err = s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, Query: strPtr("lpha")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uuid.UUID{c.ModelID, a.ModelID}, ids(got))

	got, _, err = s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, Query: strPtr("beta")})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ModelID}, ids(got))

	got, _, err = s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, Query: strPtr("%")})
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are literal")
}

func testPagination(t *testing.T, s Stores) {
	ctx := context.Background()
	domain := uniqueDomain()

	var want []uuid.UUID
	for i := 0; i < 7; i++ {
		// Pairs share a timestamp so the tie-break is exercised.
		e := newEntry(domain, "paged", base.Add(time.Duration(i/2)*time.Second))
		require.NoError(t, s.Entries.CreateEntry(ctx, e))
	}
	full, total, err := s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain})
	require.NoError(t, err)
	require.EqualValues(t, 7, total)
	want = ids(full)

	var got []uuid.UUID
	for offset := 0; offset < 7; offset += 3 {
		page, pageTotal, err := s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, Offset: offset, Limit: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 7, pageTotal)
		assert.LessOrEqual(t, len(page), 3)
		got = append(got, ids(page)...)
	}
	assert.Equal(t, want, got)

	page, pageTotal, err := s.Entries.ListEntries(ctx, store.EntryFilter{Domain: &domain, Offset: 30, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.EqualValues(t, 7, pageTotal)
}

func testLatestEntry(t *testing.T, s Stores) {
	ctx := context.Background()
	domain := uniqueDomain()
	prod := model.StatusProduction

	_, err := s.Entries.LatestEntry(ctx, store.EntryFilter{Domain: &domain, Status: &prod})
	assert.ErrorIs(t, err, store.ErrEntryNotFound)

	older := newEntry(domain, "m", base)
	older.Status = model.StatusProduction
	newer := newEntry(domain, "m", base.Add(time.Hour))
	newer.Status = model.StatusProduction
	newest := newEntry(domain, "m", base.Add(2*time.Hour))
	for _, e := range []model.RegistryEntry{older, newer, newest} {
		require.NoError(t, s.Entries.CreateEntry(ctx, e))
	}

	for i := 0; i < 3; i++ {
		got, err := s.Entries.LatestEntry(ctx, store.EntryFilter{Domain: &domain, Status: &prod})
		require.NoError(t, err)
		assert.Equal(t, newer.ModelID, got.ModelID)
	}
}

func testUpdateEntry(t *testing.T, s Stores) {
	ctx := context.Background()
	e := newEntry(uniqueDomain(), "upd", base)
	require.NoError(t, s.Entries.CreateEntry(ctx, e))
	require.NoError(t, s.Entries.IncrementAccess(ctx, e.ModelID, base.Add(time.Second)))

	stamp := base.Add(time.Hour)
	updated, err := s.Entries.UpdateEntry(ctx, e.ModelID, func(cur *model.RegistryEntry) error {
		cur.Status = model.StatusStaging
		cur.Reviewer = strPtr("bob")
		cur.LastUpdatedAt = &stamp
		cur.CreatedBy = "mallory"
		cur.AccessCount = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusStaging, updated.Status)
	assert.Equal(t, "alice@example.com", updated.CreatedBy)
	assert.EqualValues(t, 1, updated.AccessCount)

	got, err := s.Entries.GetEntry(ctx, e.ModelID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusStaging, got.Status)
	assert.Equal(t, "bob", *got.Reviewer)
	assert.True(t, stamp.Equal(*got.LastUpdatedAt))
	assert.Equal(t, "alice@example.com", got.CreatedBy)
	assert.EqualValues(t, 1, got.AccessCount)

	boom := errors.New("boom")
	_, err = s.Entries.UpdateEntry(ctx, e.ModelID, func(cur *model.RegistryEntry) error {
		cur.Status = model.StatusDeprecated
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, err = s.Entries.GetEntry(ctx, e.ModelID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusStaging, got.Status)

	_, err = s.Entries.UpdateEntry(ctx, uuid.New(), func(*model.RegistryEntry) error { return nil })
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func testDeleteEntry(t *testing.T, s Stores) {
	ctx := context.Background()
	e := newEntry(uniqueDomain(), "del", base)
	require.NoError(t, s.Entries.CreateEntry(ctx, e))

	require.NoError(t, s.Entries.DeleteEntry(ctx, e.ModelID))
	_, err := s.Entries.GetEntry(ctx, e.ModelID)
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
	assert.ErrorIs(t, s.Entries.DeleteEntry(ctx, e.ModelID), store.ErrEntryNotFound)
}

func testConcurrentAccess(t *testing.T, s Stores) {
	ctx := context.Background()
	e := newEntry(uniqueDomain(), "hot", base)
	require.NoError(t, s.Entries.CreateEntry(ctx, e))

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Entries.IncrementAccess(ctx, e.ModelID, base.Add(time.Duration(i)*time.Millisecond))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Entries.GetEntry(ctx, e.ModelID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.AccessCount)
	assert.NotNil(t, got.LastAccessed)

	assert.ErrorIs(t, s.Entries.IncrementAccess(ctx, uuid.New(), base), store.ErrEntryNotFound)
}

func testUsers(t *testing.T, s Stores) {
	ctx := context.Background()
	email := uuid.NewString() + "@example.test"
	u := model.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: "digest",
		Active:         true,
		Role:           model.DefaultRole,
		CreatedAt:      base,
	}
	require.NoError(t, s.Users.CreateUser(ctx, u))

	got, err := s.Users.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "digest", got.HashedPassword)
	assert.True(t, got.Active)

	dup := u
	dup.ID = uuid.New()
	assert.ErrorIs(t, s.Users.CreateUser(ctx, dup), store.ErrUserExists)

	_, err = s.Users.GetUserByEmail(ctx, "nobody-"+email)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testPolicies(t *testing.T, s Stores) {
	ctx := context.Background()
	p := model.AccessPolicy{
		ID:        uuid.New(),
		Name:      "read-only",
		Rules:     datatypes.JSON(`{"allow": ["read"]}`),
		CreatedBy: "alice@example.com",
		CreatedAt: base,
	}
	require.NoError(t, s.Policies.CreatePolicy(ctx, p))

	got, err := s.Policies.GetPolicy(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "read-only", got.Name)
	assert.JSONEq(t, `{"allow": ["read"]}`, string(got.Rules))

	list, err := s.Policies.ListPolicies(ctx)
	require.NoError(t, err)
	assert.Contains(t, policyIDs(list), p.ID)

	_, err = s.Policies.GetPolicy(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrPolicyNotFound)
}

func ids(entries []model.RegistryEntry) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ModelID)
	}
	return out
}

func policyIDs(policies []model.AccessPolicy) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.ID)
	}
	return out
}
