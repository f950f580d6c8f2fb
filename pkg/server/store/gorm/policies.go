package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

var _ store.PoliciesStore = (*PoliciesStore)(nil)

// PoliciesStore implements store.PoliciesStore using GORM
type PoliciesStore struct {
	db *gorm.DB
}

// NewPoliciesStore creates a new PoliciesStore
func NewPoliciesStore(db *gorm.DB) *PoliciesStore {
	return &PoliciesStore{db: db}
}

func (s *PoliciesStore) CreatePolicy(ctx context.Context, policy model.AccessPolicy) error {
	return s.db.WithContext(ctx).Create(&policy).Error
}

func (s *PoliciesStore) GetPolicy(ctx context.Context, id uuid.UUID) (model.AccessPolicy, error) {
	var policy model.AccessPolicy
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.AccessPolicy{}, store.ErrPolicyNotFound
		}
		return model.AccessPolicy{}, err
	}
	return policy, nil
}

func (s *PoliciesStore) ListPolicies(ctx context.Context) ([]model.AccessPolicy, error) {
	policies := []model.AccessPolicy{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&policies).Error
	return policies, err
}
