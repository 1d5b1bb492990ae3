package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidListing = errors.New("invalid listing")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=listing
type Repository interface {
	CreateListing(ctx context.Context, l *Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	GetListingByItemID(ctx context.Context, itemID string) (*Listing, error)
	ListListings(ctx context.Context, filter ListFilter) ([]*Listing, error)
}

// Freshener releases expired holds before a browsing read so buyers never
// see a listing stuck in processing when the scheduler lags.
type Freshener interface {
	SweepIfDue(ctx context.Context)
}

type Service struct {
	repo      Repository
	freshener Freshener
}

func NewService(repo Repository, freshener Freshener) *Service {
	return &Service{repo: repo, freshener: freshener}
}

type CreateParams struct {
	ItemID     string
	SellerID   uuid.UUID
	Title      string
	PriceCents int64
}

type ListFilter struct {
	Status *Status
	Limit  int
}

// Create stores a new listing. Listings always start active and unheld.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Listing, error) {
	itemID := strings.TrimSpace(params.ItemID)
	if itemID == "" || params.PriceCents <= 0 {
		return nil, ErrInvalidListing
	}

	l := &Listing{
		ItemID:     itemID,
		SellerID:   params.SellerID,
		Title:      params.Title,
		PriceCents: params.PriceCents,
		Status:     StatusActive,
	}
	if err := s.repo.CreateListing(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetListing(ctx, id)
}

func (s *Service) GetByItemID(ctx context.Context, itemID string) (*Listing, error) {
	s.freshen(ctx)
	return s.repo.GetListingByItemID(ctx, itemID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Listing, error) {
	s.freshen(ctx)
	return s.repo.ListListings(ctx, filter)
}

// ResolveItemIDs maps item IDs to listing IDs. Unknown item IDs yield ErrNotFound.
func (s *Service) ResolveItemIDs(ctx context.Context, itemIDs []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(itemIDs))

	for _, itemID := range itemIDs {
		l, err := s.repo.GetListingByItemID(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", itemID, err)
		}

		ids = append(ids, l.ID)
	}

	return ids, nil
}

func (s *Service) freshen(ctx context.Context) {
	if s.freshener == nil {
		return
	}

	s.freshener.SweepIfDue(ctx)
}
