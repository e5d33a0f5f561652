package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// productRepository implements repository.ProductRepository for SQLite.
type productRepository struct {
	table *Table
}

// NewProductRepository creates a SQLite product repository over the named table.
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
	return decodeProduct(doc)
}

func (r *productRepository) Put(ctx context.Context, product *domain.Product) error {
	doc, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	return r.table.Put(ctx, product.ID, doc)
}

func (r *productRepository) Update(ctx context.Context, id string, changes repository.Changes) (*domain.Product, error) {
	doc, err := r.table.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	return decodeProduct(doc)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *productRepository) Scan(ctx context.Context) ([]*domain.Product, error) {
	docs, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := decodeProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func decodeProduct(doc []byte) (*domain.Product, error) {
	product := &domain.Product{}
	if err := json.Unmarshal(doc, product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return product, nil
}
