package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// userRepository implements repository.UserRepository for SQLite.
type userRepository struct {
	table *Table
}

// NewUserRepository creates a SQLite user repository over the named table.
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
	return decodeUser(doc)
}

func (r *userRepository) Put(ctx context.Context, user *domain.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return r.table.Put(ctx, user.ID, doc)
}

func (r *userRepository) Update(ctx context.Context, id string, changes repository.Changes) (*domain.User, error) {
	doc, err := r.table.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	return decodeUser(doc)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *userRepository) Scan(ctx context.Context) ([]*domain.User, error) {
	docs, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.table.Exists(ctx, id)
}

func decodeUser(doc []byte) (*domain.User, error) {
	user := &domain.User{}
	if err := json.Unmarshal(doc, user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}
