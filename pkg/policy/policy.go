package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/registry"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// ErrNotFound is returned when no policy has the requested identifier.
var ErrNotFound = errors.New("policy not found")

const maxName = 100

// Document is an access policy as submitted by a caller. Rules must be a
// JSON object; its contents are not interpreted.
type Document struct {
	Name        string          `json:"name" yaml:"name"`
	Description *string         `json:"description" yaml:"description"`
	Rules       json.RawMessage `json:"rules" yaml:"-"`
}

// Service creates and reads access policies.
type Service struct {
	policies store.PoliciesStore
	now      func() time.Time
}

// NewService creates a Service backed by policies.
func NewService(policies store.PoliciesStore) *Service {
	return &Service{policies: policies, now: time.Now}
}

// Validate checks doc before it is stored.
func (d Document) Validate() error {
	if d.Name == "" {
		return &registry.ValidationError{Field: "name", Message: "is required"}
	}
	if n := utf8.RuneCountInString(d.Name); n > maxName {
		return &registry.ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters, got %d", maxName, n)}
	}
	var rules map[string]interface{}
	if len(d.Rules) == 0 || json.Unmarshal(d.Rules, &rules) != nil || rules == nil {
		return &registry.ValidationError{Field: "rules", Message: "must be a JSON object"}
	}
	return nil
}

// Create stores doc as a new policy attributed to creator.
func (s *Service) Create(ctx context.Context, doc Document, creator string) (model.AccessPolicy, error) {
	if err := doc.Validate(); err != nil {
		return model.AccessPolicy{}, err
	}

	p := model.AccessPolicy{
		ID:          uuid.New(),
		Name:        doc.Name,
		Description: doc.Description,
		Rules:       datatypes.JSON(doc.Rules),
		CreatedBy:   creator,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.policies.CreatePolicy(ctx, p); err != nil {
		return model.AccessPolicy{}, fmt.Errorf("%w: %w", registry.ErrStoreFailure, err)
	}
	return p, nil
}

// Get returns the policy with the given identifier.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.AccessPolicy, error) {
	p, err := s.policies.GetPolicy(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return model.AccessPolicy{}, ErrNotFound
		}
		return model.AccessPolicy{}, fmt.Errorf("%w: %w", registry.ErrStoreFailure, err)
	}
	return p, nil
}

// List returns every policy, newest first.
func (s *Service) List(ctx context.Context) ([]model.AccessPolicy, error) {
	policies, err := s.policies.ListPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", registry.ErrStoreFailure, err)
	}
	if policies == nil {
		policies = []model.AccessPolicy{}
	}
	return policies, nil
}
