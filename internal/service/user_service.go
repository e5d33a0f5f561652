package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// UserService handles user provisioning and profile operations.
type UserService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// ProvisionUserInput contains the data delivered by the upstream
// identity provider on registration or first sign-in.
type ProvisionUserInput struct {
	// ID is the externally assigned identity key.
	ID string

	// Email is the verified email address.
	Email string

	// Name is the optional display name ("First Last").
	Name string
}

// Provision creates the user record for an identity if it does not
// exist yet. The check-then-create is explicit: an existing record is
// returned unchanged with created=false, never overwritten.
func (s *UserService) Provision(ctx context.Context, input ProvisionUserInput) (user *domain.User, created bool, err error) {
	if input.ID == "" {
		return nil, false, ErrMissingUserID
	}

	existing, err := s.users.Get(ctx, input.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error().Err(err).Str("user_id", input.ID).Msg("failed to look up user")
		return nil, false, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user = domain.NewUser(input.ID, input.Email, input.Name)
	if err := s.users.Put(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", input.ID).Msg("failed to create user")
		return nil, false, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user provisioned")
	return user, true, nil
}

// Get retrieves a user by identity key.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if !validUserID(id) {
		return nil, ErrInvalidUserID
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// UpdateUserInput carries a partial profile update. Nil fields are left
// untouched; the merge happens in one atomic store operation.
type UpdateUserInput struct {
	// ID optionally repeats the identity key from the body; when set it
	// must match the path.
	ID string

	FirstName      *string
	LastName       *string
	Email          *string
	Username       *string
	Organization   *string
	Country        *string
	Website        *string
	SocialMedia    *domain.SocialMedia
	Bio            *string
	ProfilePicture *string
}

// Update applies a partial profile update and returns the merged
// record. Only supplied fields and updatedAt change.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if !validUserID(id) {
		return nil, ErrInvalidUserID
	}
	if input.ID != "" && input.ID != id {
		return nil, ErrUserIDMismatch
	}

	changes := repository.Changes{
		"updatedAt": time.Now().UTC().Format(time.RFC3339Nano),
	}
	setIfPresent(changes, "firstName", input.FirstName)
	setIfPresent(changes, "lastName", input.LastName)
	setIfPresent(changes, "email", input.Email)
	setIfPresent(changes, "username", input.Username)
	setIfPresent(changes, "organization", input.Organization)
	setIfPresent(changes, "country", input.Country)
	setIfPresent(changes, "website", input.Website)
	setIfPresent(changes, "bio", input.Bio)
	setIfPresent(changes, "profilePicture", input.ProfilePicture)
	if input.SocialMedia != nil {
		changes["socialMedia"] = *input.SocialMedia
	}

	user, err := s.users.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

// validUserID rejects empty keys and the literal "undefined" that a
// broken client once persisted.
func validUserID(id string) bool {
	return id != "" && id != "undefined"
}

func setIfPresent(changes repository.Changes, field string, value *string) {
	if value != nil {
		changes[field] = *value
	}
}
