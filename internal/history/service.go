package history

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Event, error)
}

// Service exposes the audit trail to admin and dispute tooling.
// Events are never updated or deleted.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForListing(ctx context.Context, listingID uuid.UUID) ([]Event, error) {
	return s.repo.ListByListing(ctx, listingID)
}
