package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// List returns one page of entries matching every filter in q, newest first.
// Tags matches by case-sensitive substring.
func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	if err := validatePaging(q.Page, q.Size); err != nil {
		return Page{}, err
	}
	if err := validateFilters(q.ModelType, q.Status); err != nil {
		return Page{}, err
	}

	return s.page(ctx, "list", store.EntryFilter{
		ModelType:    q.ModelType,
		Domain:       q.Domain,
		Status:       q.Status,
		TagsContains: q.Tags,
	}, q.Page, q.Size)
}

// Search returns one page of entries whose name, display name or tags
// contain q.Query, further restricted by domain and model type.
func (s *Service) Search(ctx context.Context, q SearchQuery) (Page, error) {
	if q.Query == "" {
		return Page{}, invalid("q", "is required")
	}
	if err := validatePaging(q.Page, q.Size); err != nil {
		return Page{}, err
	}
	if err := validateFilters(q.ModelType, nil); err != nil {
		return Page{}, err
	}

	query := q.Query
	return s.page(ctx, "search", store.EntryFilter{
		Query:     &query,
		Domain:    q.Domain,
		ModelType: q.ModelType,
	}, q.Page, q.Size)
}

func (s *Service) page(ctx context.Context, op string, filter store.EntryFilter, page, size int) (Page, error) {
	filter.Offset = (page - 1) * size
	filter.Limit = size

	entries, total, err := s.entries.ListEntries(ctx, filter)
	if err != nil {
		return Page{}, s.fail(op, uuid.Nil, err)
	}
	if entries == nil {
		entries = []model.RegistryEntry{}
	}
	return Page{Entries: entries, Total: total, Page: page, Size: size}, nil
}

func validateFilters(modelType *model.ModelType, status *model.Status) error {
	if modelType != nil && !modelType.IsAModelType() {
		return invalid("model_type", "unknown model type %d", int(*modelType))
	}
	if status != nil && !status.IsAStatus() {
		return invalid("status", "unknown status %d", int(*status))
	}
	return nil
}
