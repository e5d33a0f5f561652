package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// AdminService provides administrative bulk operations.
type AdminService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(users repository.UserRepository, products repository.ProductRepository, logger zerolog.Logger) *AdminService {
	return &AdminService{
		users:    users,
		products: products,
		logger:   logger.With().Str("service", "admin").Logger(),
	}
}

// WipeResult reports how many records the wipe removed.
type WipeResult struct {
	UsersDeleted    int `json:"usersDeleted"`
	ProductsDeleted int `json:"productsDeleted"`
}

// WipeAll deletes every user and product record. The wipe is
// deliberately non-atomic and best-effort: it walks a scan and issues
// per-key deletes, and a failure partway through surfaces immediately
// with whatever had already been deleted staying deleted.
func (s *AdminService) WipeAll(ctx context.Context) (*WipeResult, error) {
	result := &WipeResult{}

	users, err := s.users.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	for _, user := range users {
		if err := s.users.Delete(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		s.logger.Debug().Str("user_id", user.ID).Msg("deleted user")
		result.UsersDeleted++
	}

	products, err := s.products.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	for _, product := range products {
		if err := s.products.Delete(ctx, product.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		s.logger.Debug().Str("product_id", product.ID).Msg("deleted product")
		result.ProductsDeleted++
	}

	s.logger.Info().
		Int("users_deleted", result.UsersDeleted).
		Int("products_deleted", result.ProductsDeleted).
		Msg("bulk wipe completed")
	return result, nil
}
