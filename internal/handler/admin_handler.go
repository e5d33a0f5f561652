package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
)

// AdminHandler handles administrative requests.
type AdminHandler struct {
	admin  *service.AdminService
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/delete-all", h.handleDeleteAll)
}

type deleteAllResponse struct {
	Message         string `json:"message"`
	UsersDeleted    int    `json:"usersDeleted"`
	ProductsDeleted int    `json:"productsDeleted"`
}

func (h *AdminHandler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.WipeAll(r.Context())
	if err != nil {
		writeServiceError(w, "Could not delete all data", err)
		return
	}

	h.logger.Warn().
		Int("users_deleted", result.UsersDeleted).
		Int("products_deleted", result.ProductsDeleted).
		Msg("all data deleted")

	writeJSON(w, http.StatusOK, deleteAllResponse{
		Message:         "All data deleted successfully",
		UsersDeleted:    result.UsersDeleted,
		ProductsDeleted: result.ProductsDeleted,
	})
}
