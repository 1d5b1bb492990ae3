package order

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderBySession(ctx context.Context, sessionID string) (*Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error)
}

// Service is the read side of orders. Writes go through the hold manager.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) FindBySession(ctx context.Context, sessionID string) (*Order, error) {
	return s.repo.GetOrderBySession(ctx, sessionID)
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error) {
	return s.repo.ListOrdersByBuyer(ctx, buyerID)
}
