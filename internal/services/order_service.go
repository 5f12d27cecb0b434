package services

import (
	"context"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	"seenstudio/internal/repos"
)

// OrderService reads recorded orders. Orders are written by checkout.
type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

func (s *OrderService) History(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

// Get returns an order owned by userID. Admins may read any order.
func (s *OrderService) Get(ctx context.Context, id, userID string, isAdmin bool) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !isAdmin && o.UserID != userID {
		return domain.Order{}, apperr.New(apperr.CodeNotFound, "Order not found")
	}
	return o, nil
}

func (s *OrderService) Latest(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(ctx, limit)
}
