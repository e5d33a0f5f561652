package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/config"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/metrics"
)

// RouterConfig collects everything the HTTP surface needs.
type RouterConfig struct {
	Server config.ServerConfig

	Users    *UserHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Admin    *AdminHandler

	// Files is set only when the object store runs on the local
	// backend; the S3 backend serves transfers itself.
	Files *FilesHandler

	// Metrics enables per-request Prometheus instrumentation.
	Metrics bool

	Logger zerolog.Logger
}

// NewRouter builds the HTTP router with all middleware and routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))
	if cfg.Metrics {
		r.Use(metrics.Middleware)
	}
	r.Use(CORSMiddleware)
	r.Use(IdentityMiddleware(cfg.Server.IdentityHeader))

	r.Get("/health", handleHealth)

	// Transfer routes move raw bytes and must not be body-capped.
	if cfg.Files != nil {
		cfg.Files.RegisterRoutes(r)
	}

	r.Group(func(r chi.Router) {
		if cfg.Server.MaxBodySize > 0 {
			r.Use(maxBodySize(cfg.Server.MaxBodySize))
		}
		cfg.Users.RegisterRoutes(r)
		cfg.Products.RegisterRoutes(r)
		cfg.Orders.RegisterRoutes(r)
		cfg.Admin.RegisterRoutes(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// maxBodySize caps JSON request bodies.
func maxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
