package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the fulfillment state of an order.
// Orders are created pending and never transition: there is no payment
// or fulfillment state machine in this marketplace.
type OrderStatus string

// OrderStatusPending is the only order status.
const OrderStatusPending OrderStatus = "pending"

// OrderItem is a snapshot of a purchased product at order time.
// The snapshot deliberately copies price so later product edits or
// deletions never change what the buyer sees on past orders.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order represents a purchase. Orders are immutable once created; they
// are never updated and only removed by the administrative wipe.
type Order struct {
	// ID is the identity key, generated at creation.
	ID string `json:"id"`

	// UserID references the buyer's identity key.
	UserID string `json:"userId"`

	Products    []OrderItem `json:"products"`
	TotalAmount float64     `json:"totalAmount"`
	Status      OrderStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewOrder creates a pending Order with a fresh identity key.
func NewOrder(userID string, items []OrderItem, totalAmount float64) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Products:    items,
		TotalAmount: totalAmount,
		Status:      OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
