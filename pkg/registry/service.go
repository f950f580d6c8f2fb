package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Service owns the registry entry lifecycle. It holds no mutable state of its
// own: every read-modify-write runs inside a single store transaction.
type Service struct {
	entries store.EntriesStore
	now     func() time.Time
	newID   func() uuid.UUID
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.New.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

// WithLogger sets the logger used to report store failures.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a Service backed by entries.
func NewService(entries store.EntriesStore, opts ...Option) *Service {
	s := &Service{
		entries: entries,
		now:     time.Now,
		newID:   uuid.New,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clock returns the current time at the precision PostgreSQL stores.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// stamp returns a last_updated_at value strictly after prev.
func (s *Service) stamp(prev *time.Time) *time.Time {
	now := s.clock()
	if prev != nil && !now.After(*prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return &now
}

// Register validates draft and stores it as a new development entry created
// by creator. Duplicate (name, version) pairs are accepted.
func (s *Service) Register(ctx context.Context, draft Draft, creator string) (model.RegistryEntry, error) {
	if err := validateIdentity("created_by", creator); err != nil {
		return model.RegistryEntry{}, err
	}
	if err := draft.validate(); err != nil {
		return model.RegistryEntry{}, err
	}

	entry := model.RegistryEntry{
		ModelID:              s.newID(),
		ModelName:            draft.ModelName,
		DisplayName:          draft.DisplayName,
		Version:              draft.Version,
		ParentModelID:        draft.ParentModelID,
		SourceRepo:           draft.SourceRepo,
		ModelType:            *draft.ModelType,
		Domain:               draft.Domain,
		Tags:                 draft.Tags,
		ArtifactPath:         draft.ArtifactPath,
		ModelFormat:          draft.ModelFormat,
		InputSchema:          normalize(draft.InputSchema),
		OutputSchema:         normalize(draft.OutputSchema),
		Dependencies:         normalize(draft.Dependencies),
		DatasetName:          draft.DatasetName,
		DatasetVersion:       draft.DatasetVersion,
		TrainingParameters:   normalize(draft.TrainingParameters),
		Framework:            draft.Framework,
		HardwareUsed:         draft.HardwareUsed,
		Metrics:              normalize(draft.Metrics),
		BenchmarkDataset:     draft.BenchmarkDataset,
		Status:               model.StatusDevelopment,
		CreatedBy:            creator,
		CreatedAt:            s.clock(),
		Checksum:             draft.Checksum,
		EncryptionStatus:     draft.EncryptionStatus,
		SignedBy:             draft.SignedBy,
		AccessPolicyID:       draft.AccessPolicyID,
		InferenceEndpoint:    draft.InferenceEndpoint,
		ResourceRequirements: normalize(draft.ResourceRequirements),
		EnvType:              draft.EnvType,
	}
	entry = entry.Clone()

	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return model.RegistryEntry{}, s.fail("register", entry.ModelID, err)
	}
	return entry, nil
}

// GetByID returns the entry with the given identifier.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (model.RegistryEntry, error) {
	entry, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return model.RegistryEntry{}, s.fail("get", id, err)
	}
	return entry, nil
}

// GetLatestProduction returns the most recently created production entry,
// optionally restricted by model type and domain. Entries created at the
// same instant are ordered by identifier, so repeated calls agree.
func (s *Service) GetLatestProduction(ctx context.Context, modelType *model.ModelType, domain *string) (model.RegistryEntry, error) {
	if modelType != nil && !modelType.IsAModelType() {
		return model.RegistryEntry{}, invalid("model_type", "unknown model type %d", int(*modelType))
	}
	status := model.StatusProduction
	entry, err := s.entries.LatestEntry(ctx, store.EntryFilter{
		Status:    &status,
		ModelType: modelType,
		Domain:    domain,
	})
	if err != nil {
		return model.RegistryEntry{}, s.fail("latest", uuid.Nil, err)
	}
	return entry, nil
}

// Promote sets status, reviewer and last_updated_at in one transaction. Any
// status may be reached from any other.
func (s *Service) Promote(ctx context.Context, id uuid.UUID, target model.Status, reviewer string) (model.RegistryEntry, error) {
	if !target.IsAStatus() {
		return model.RegistryEntry{}, invalid("target_status", "unknown status %d", int(target))
	}
	if err := validateIdentity("reviewer", reviewer); err != nil {
		return model.RegistryEntry{}, err
	}

	entry, err := s.entries.UpdateEntry(ctx, id, func(e *model.RegistryEntry) error {
		e.Status = target
		e.Reviewer = &reviewer
		e.LastUpdatedAt = s.stamp(e.LastUpdatedAt)
		return nil
	})
	if err != nil {
		return model.RegistryEntry{}, s.fail("promote", id, err)
	}
	return entry, nil
}

// Update applies the fields present in patch and re-stamps last_updated_at.
// Unlike Promote it only touches reviewer when the patch carries it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (model.RegistryEntry, error) {
	if err := patch.validate(); err != nil {
		return model.RegistryEntry{}, err
	}

	entry, err := s.entries.UpdateEntry(ctx, id, func(e *model.RegistryEntry) error {
		if patch.DisplayName != nil {
			e.DisplayName = *patch.DisplayName
		}
		patch.Tags.apply(&e.Tags)
		if patch.Status != nil {
			e.Status = *patch.Status
		}
		if patch.Metrics != nil {
			e.Metrics = normalize(patch.Metrics)
		}
		patch.InferenceEndpoint.apply(&e.InferenceEndpoint)
		if patch.ResourceRequirements != nil {
			e.ResourceRequirements = normalize(patch.ResourceRequirements)
		}
		patch.Reviewer.apply(&e.Reviewer)
		patch.ApprovalNotes.apply(&e.ApprovalNotes)
		e.LastUpdatedAt = s.stamp(e.LastUpdatedAt)
		return nil
	})
	if err != nil {
		return model.RegistryEntry{}, s.fail("update", id, err)
	}
	return entry, nil
}

// Delete removes the entry permanently. Entries naming it as parent keep the
// dangling reference.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		return s.fail("delete", id, err)
	}
	return nil
}

// RecordAccess increments access_count and sets last_accessed atomically.
func (s *Service) RecordAccess(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.IncrementAccess(ctx, id, s.clock()); err != nil {
		return s.fail("access", id, err)
	}
	return nil
}

// GetMetricsSnapshot returns the evaluation and usage projection of an entry.
func (s *Service) GetMetricsSnapshot(ctx context.Context, id uuid.UUID) (MetricsSnapshot, error) {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return MetricsSnapshot{}, err
	}
	return MetricsSnapshot{
		ModelID:      entry.ModelID,
		Metrics:      entry.Metrics,
		UsageStats:   entry.UsageStats,
		AccessCount:  entry.AccessCount,
		LastAccessed: entry.LastAccessed,
	}, nil
}

// fail maps store errors onto the registry taxonomy.
func (s *Service) fail(op string, id uuid.UUID, err error) error {
	if errors.Is(err, store.ErrEntryNotFound) {
		return ErrNotFound
	}
	s.log.Error().Err(err).Str("operation", op).Str("model_id", id.String()).Msg("registry store failure")
	return storeFailure(err)
}

// normalize stores a JSON null as an absent document.
func normalize(doc datatypes.JSON) datatypes.JSON {
	if doc == nil || string(doc) == "null" {
		return nil
	}
	return doc
}
