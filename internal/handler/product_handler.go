package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
)

// ProductHandler handles catalog and product file lifecycle requests.
type ProductHandler struct {
	products *service.ProductService
	logger   zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleListProducts)
	r.Post("/products", h.handleCreateProduct)
	r.Post("/products/upload-url", h.handleUploadURL)
	r.Post("/products/image-upload-url", h.handleUploadURL)
	r.Get("/products/{id}", h.handleGetProduct)
	r.Delete("/products/{id}", h.handleDeleteProduct)
	r.Get("/products/{id}/download", h.handleDownloadURL)
	r.Get("/images/*", h.handleGetImage)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeServiceError(w, "Could not fetch products", err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// createProductRequest is the body of POST /products.
type createProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	FileKey     string  `json:"fileKey"`
	ImageKey    string  `json:"imageKey"`
	ImageURL    string  `json:"imageUrl"`
	SellerID    string  `json:"sellerId"`
	Status      string  `json:"status"`
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sellerID := req.SellerID
	if sellerID == "" {
		sellerID = CallerID(r.Context())
	}

	product, err := h.products.Create(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		FileKey:     req.FileKey,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		SellerID:    sellerID,
		Status:      req.Status,
	})
	if err != nil {
		writeServiceError(w, "Could not create product", err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found", nil)
			return
		}
		writeServiceError(w, "Could not fetch product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found", nil)
			return
		}
		writeServiceError(w, "Could not delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// uploadURLRequest is the body of the upload URL endpoints.
type uploadURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (h *ProductHandler) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	out, err := h.products.UploadURL(r.Context(), service.UploadURLInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingUploadParams) {
			writeError(w, http.StatusBadRequest, "fileName and contentType are required", nil)
			return
		}
		writeServiceError(w, "Could not generate upload URL", err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) handleDownloadURL(w http.ResponseWriter, r *http.Request) {
	downloadURL, err := h.products.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "Product not found", nil)
		case errors.Is(err, domain.ErrNoDownloadableAsset):
			writeError(w, http.StatusNotFound, "Product has no downloadable file", nil)
		default:
			writeServiceError(w, "Could not generate download URL", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"downloadUrl": downloadURL})
}

func (h *ProductHandler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "Invalid image key", err)
		return
	}

	obj, err := h.products.GetImage(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "Could not get image", nil)
			return
		}
		writeServiceError(w, "Could not get image", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Debug().Err(err).Str("key", key).Msg("image stream interrupted")
	}
}
