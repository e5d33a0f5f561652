// Package repository defines record store interfaces for the Sunset
// marketplace. These abstract the single-key-per-item tables, allowing
// different implementations (SQLite, PostgreSQL, mocks for testing)
// while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
)

// Changes is a partial-merge payload for Update operations. Keys are
// JSON field names; values replace the stored field in one atomic
// merge at the store layer.
type Changes map[string]any

// UserRepository defines data access for the users table.
type UserRepository interface {
	// Get retrieves a user by identity key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Put stores the full user record, replacing any existing record.
	Put(ctx context.Context, user *domain.User) error

	// Update applies a partial merge and returns the merged record.
	// The merge is a single atomic statement at the store layer.
	// Returns ErrNotFound if the key does not exist.
	Update(ctx context.Context, id string, changes Changes) (*domain.User, error)

	// Delete removes a user. Deleting a missing key is not an error.
	Delete(ctx context.Context, id string) error

	// Scan returns all users, unordered.
	Scan(ctx context.Context) ([]*domain.User, error)

	// Exists reports whether a user with the given key exists.
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductRepository defines data access for the products table.
type ProductRepository interface {
	// Get retrieves a product by identity key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, id string) (*domain.Product, error)

	// Put stores the full product record, replacing any existing record.
	Put(ctx context.Context, product *domain.Product) error

	// Update applies a partial merge and returns the merged record.
	// Returns ErrNotFound if the key does not exist.
	Update(ctx context.Context, id string, changes Changes) (*domain.Product, error)

	// Delete removes a product. Deleting a missing key is not an error.
	Delete(ctx context.Context, id string) error

	// Scan returns all products, unordered.
	Scan(ctx context.Context) ([]*domain.Product, error)
}

// OrderRepository defines data access for the orders table.
type OrderRepository interface {
	// Get retrieves an order by identity key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, id string) (*domain.Order, error)

	// Put stores the full order record.
	Put(ctx context.Context, order *domain.Order) error

	// Delete removes an order. Deleting a missing key is not an error.
	Delete(ctx context.Context, id string) error

	// Scan returns all orders, unordered.
	Scan(ctx context.Context) ([]*domain.Order, error)

	// ListByBuyer returns the orders placed by one buyer. This is the
	// single equality filter the store supports; there is no richer
	// query surface.
	ListByBuyer(ctx context.Context, userID string) ([]*domain.Order, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
}
