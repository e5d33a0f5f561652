package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// userRepository implements repository.UserRepository for PostgreSQL.
type userRepository struct {
	table *Table
}

// NewUserRepository creates a PostgreSQL user repository over the named table.
func NewUserRepository(ctx context.Context, db *DB, tableName string) (repository.UserRepository, error) {
	table, err := NewTable(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	return &userRepository{table: table}, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeDoc[domain.User](doc)
}

func (r *userRepository) Put(ctx context.Context, user *domain.User) error {
	return putDoc(ctx, r.table, user.ID, user)
}

func (r *userRepository) Update(ctx context.Context, id string, changes repository.Changes) (*domain.User, error) {
	doc, err := r.table.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	return decodeDoc[domain.User](doc)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *userRepository) Scan(ctx context.Context) ([]*domain.User, error) {
	docs, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return decodeDocs[domain.User](docs)
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.table.Exists(ctx, id)
}

// productRepository implements repository.ProductRepository for PostgreSQL.
type productRepository struct {
	table *Table
}

// NewProductRepository creates a PostgreSQL product repository over the named table.
func NewProductRepository(ctx context.Context, db *DB, tableName string) (repository.ProductRepository, error) {
	table, err := NewTable(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	return &productRepository{table: table}, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	doc, err := r.table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeDoc[domain.Product](doc)
}

func (r *productRepository) Put(ctx context.Context, product *domain.Product) error {
	return putDoc(ctx, r.table, product.ID, product)
}

func (r *productRepository) Update(ctx context.Context, id string, changes repository.Changes) (*domain.Product, error) {
	doc, err := r.table.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	return decodeDoc[domain.Product](doc)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *productRepository) Scan(ctx context.Context) ([]*domain.Product, error) {
	docs, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return decodeDocs[domain.Product](docs)
}

// orderRepository implements repository.OrderRepository for PostgreSQL.
type orderRepository struct {
	table *Table
}

// NewOrderRepository creates a PostgreSQL order repository over the named table.
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
	return decodeDoc[domain.Order](doc)
}

func (r *orderRepository) Put(ctx context.Context, order *domain.Order) error {
	return putDoc(ctx, r.table, order.ID, order)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *orderRepository) Scan(ctx context.Context) ([]*domain.Order, error) {
	docs, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return decodeDocs[domain.Order](docs)
}

func (r *orderRepository) ListByBuyer(ctx context.Context, userID string) ([]*domain.Order, error) {
	docs, err := r.table.ScanWhereField(ctx, "userId", userID)
	if err != nil {
		return nil, err
	}
	return decodeDocs[domain.Order](docs)
}

func putDoc(ctx context.Context, table *Table, id string, record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return table.Put(ctx, id, doc)
}

func decodeDoc[T any](doc []byte) (*T, error) {
	record := new(T)
	if err := json.Unmarshal(doc, record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}

func decodeDocs[T any](docs [][]byte) ([]*T, error) {
	records := make([]*T, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeDoc[T](doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
