package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// orderRepository implements repository.OrderRepository for SQLite.
type orderRepository struct {
	table *Table
}

// NewOrderRepository creates a SQLite order repository over the named table.
func NewOrderRepository(ctx context.Context, db *DB, tableName string) (repository.OrderRepository, error) {
	table, err := NewTable(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	return &orderRepository{table: table}, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	doc, err := r.table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeOrder(doc)
}

func (r *orderRepository) Put(ctx context.Context, order *domain.Order) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	return r.table.Put(ctx, order.ID, doc)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *orderRepository) Scan(ctx context.Context) ([]*domain.Order, error) {
	docs, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return decodeOrders(docs)
}

func (r *orderRepository) ListByBuyer(ctx context.Context, userID string) ([]*domain.Order, error) {
	docs, err := r.table.ScanWhereField(ctx, "userId", userID)
	if err != nil {
		return nil, err
	}
	return decodeOrders(docs)
}

func decodeOrders(docs [][]byte) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func decodeOrder(doc []byte) (*domain.Order, error) {
	order := &domain.Order{}
	if err := json.Unmarshal(doc, order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return order, nil
}
