package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Ensure EntriesStore implements store.EntriesStore
var _ store.EntriesStore = (*EntriesStore)(nil)

// mutableEntryColumns are the columns UpdateEntry writes back. model_id,
// created_by, created_at, access_count and last_accessed are absent on purpose.
var mutableEntryColumns = []string{
	"model_name", "display_name", "version", "parent_model_id", "source_repo",
	"model_type", "domain", "tags",
	"artifact_path", "model_format", "input_schema", "output_schema", "dependencies",
	"dataset_name", "dataset_version", "training_parameters", "framework", "hardware_used",
	"metrics", "benchmark_dataset",
	"status", "last_updated_at", "reviewer", "approval_notes",
	"checksum", "encryption_status", "signed_by", "access_policy_id",
	"inference_endpoint", "resource_requirements", "usage_stats", "env_type",
}

// EntriesStore implements store.EntriesStore using GORM
type EntriesStore struct {
	db *gorm.DB
}

// NewEntriesStore creates a new EntriesStore
func NewEntriesStore(db *gorm.DB) *EntriesStore {
	return &EntriesStore{db: db}
}

func (s *EntriesStore) CreateEntry(ctx context.Context, entry model.RegistryEntry) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *EntriesStore) GetEntry(ctx context.Context, id uuid.UUID) (model.RegistryEntry, error) {
	var entry model.RegistryEntry
	err := s.db.WithContext(ctx).Where("model_id = ?", id).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.RegistryEntry{}, store.ErrEntryNotFound
		}
		return model.RegistryEntry{}, err
	}
	return entry, nil
}

func (s *EntriesStore) LatestEntry(ctx context.Context, filter store.EntryFilter) (model.RegistryEntry, error) {
	var entry model.RegistryEntry
	err := s.db.WithContext(ctx).
		Scopes(filterEntries(filter), orderEntries).
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.RegistryEntry{}, store.ErrEntryNotFound
		}
		return model.RegistryEntry{}, err
	}
	return entry, nil
}

func (s *EntriesStore) ListEntries(ctx context.Context, filter store.EntryFilter) ([]model.RegistryEntry, int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&model.RegistryEntry{}).
		Scopes(filterEntries(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Scopes(filterEntries(filter), orderEntries)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	entries := []model.RegistryEntry{}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *EntriesStore) UpdateEntry(ctx context.Context, id uuid.UUID, fn func(*model.RegistryEntry) error) (model.RegistryEntry, error) {
	var updated model.RegistryEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.RegistryEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("model_id = ?", id).
			Take(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrEntryNotFound
			}
			return err
		}

		next := current.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		next.ModelID = current.ModelID
		next.CreatedBy = current.CreatedBy
		next.CreatedAt = current.CreatedAt
		next.AccessCount = current.AccessCount
		next.LastAccessed = current.LastAccessed

		err = tx.Model(&model.RegistryEntry{}).
			Where("model_id = ?", id).
			Select(mutableEntryColumns).
			Updates(&next).Error
		if err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return model.RegistryEntry{}, err
	}
	return updated, nil
}

func (s *EntriesStore) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	tx := s.db.WithContext(ctx).Where("model_id = ?", id).Delete(&model.RegistryEntry{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrEntryNotFound
	}
	return nil
}

// IncrementAccess issues a single UPDATE so the increment happens under the
// row lock PostgreSQL takes for the statement.
func (s *EntriesStore) IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx := s.db.WithContext(ctx).
		Model(&model.RegistryEntry{}).
		Where("model_id = ?", id).
		Updates(map[string]interface{}{
			"access_count":  gorm.Expr("access_count + ?", 1),
			"last_accessed": at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrEntryNotFound
	}
	return nil
}

// filterEntries turns an EntryFilter into WHERE clauses. Substring matching
// uses strpos so that % and _ in user input are literal.
func filterEntries(f store.EntryFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ModelType != nil {
			db = db.Where("model_type = ?", f.ModelType.String())
		}
		if f.Domain != nil {
			db = db.Where("domain = ?", *f.Domain)
		}
		if f.Status != nil {
			db = db.Where("status = ?", f.Status.String())
		}
		if f.TagsContains != nil {
			db = db.Where("strpos(tags, ?) > 0", *f.TagsContains)
		}
		if f.Query != nil {
			q := *f.Query
			db = db.Where("(strpos(model_name, ?) > 0 OR strpos(display_name, ?) > 0 OR strpos(tags, ?) > 0)", q, q, q)
		}
		return db
	}
}

func orderEntries(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("model_id DESC")
}
