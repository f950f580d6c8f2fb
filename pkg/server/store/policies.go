package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
)

// ErrPolicyNotFound is returned when an access policy doesn't exist
var ErrPolicyNotFound = errors.New("access policy not found")

// PoliciesStore persists access policy documents
type PoliciesStore interface {
	CreatePolicy(ctx context.Context, policy model.AccessPolicy) error

	// GetPolicy returns ErrPolicyNotFound if the policy doesn't exist.
	GetPolicy(ctx context.Context, id uuid.UUID) (model.AccessPolicy, error)

	// ListPolicies returns all policies, newest first.
	ListPolicies(ctx context.Context) ([]model.AccessPolicy, error)
}
