package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
)

// UserHandler handles user provisioning and profile requests.
type UserHandler struct {
	users  *service.UserService
	logger zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterRoutes registers user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.handleCreateUser)
	r.Get("/users/{id}", h.handleGetUser)
	r.Put("/users/{id}", h.handleUpdateUser)
}

// createUserRequest is the body of POST /users.
type createUserRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, created, err := h.users.Provision(r.Context(), service.ProvisionUserInput{
		ID:    req.ID,
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		writeServiceError(w, "Could not create user", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		switch err {
		case service.ErrInvalidUserID:
			writeError(w, http.StatusBadRequest, "Invalid user ID", nil)
		case domain.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found", nil)
		default:
			writeServiceError(w, "Could not get user", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// updateUserRequest is the body of PUT /users/{id}. Absent fields stay
// untouched.
type updateUserRequest struct {
	ID             string              `json:"id"`
	FirstName      *string             `json:"firstName"`
	LastName       *string             `json:"lastName"`
	Email          *string             `json:"email"`
	Username       *string             `json:"username"`
	Organization   *string             `json:"organization"`
	Country        *string             `json:"country"`
	Website        *string             `json:"website"`
	SocialMedia    *domain.SocialMedia `json:"socialMedia"`
	Bio            *string             `json:"bio"`
	ProfilePicture *string             `json:"profilePicture"`
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.users.Update(r.Context(), id, service.UpdateUserInput{
		ID:             req.ID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Username:       req.Username,
		Organization:   req.Organization,
		Country:        req.Country,
		Website:        req.Website,
		SocialMedia:    req.SocialMedia,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		switch err {
		case service.ErrInvalidUserID:
			writeError(w, http.StatusBadRequest, "Invalid user ID", nil)
		case service.ErrUserIDMismatch:
			writeError(w, http.StatusBadRequest, "User ID mismatch", nil)
		case domain.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found", nil)
		default:
			writeServiceError(w, "Could not update user", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}
