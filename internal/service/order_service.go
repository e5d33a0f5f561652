package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// OrderService handles purchases. Orders are write-once: created
// pending and never transitioned, updated or deleted.
type OrderService struct {
	orders repository.OrderRepository
	logger zerolog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repository.OrderRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrderInput contains the data needed to record a purchase.
type CreateOrderInput struct {
	// UserID is the buyer's identity key, taken from the verified
	// caller identity, never from the request body.
	UserID string

	Products    []domain.OrderItem
	TotalAmount float64
}

// Create records a purchase.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, ErrMissingUserID
	}

	order := domain.NewOrder(input.UserID, input.Products, input.TotalAmount)
	if err := s.orders.Put(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create order")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Int("items", len(order.Products)).
		Msg("order created")
	return order, nil
}

// ListByBuyer returns the caller's orders.
func (s *OrderService) ListByBuyer(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	orders, err := s.orders.ListByBuyer(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return orders, nil
}
