package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/storage"
)

// ProductService handles the product catalog and the product file
// lifecycle: upload URL issuance, download URL issuance and
// delete-with-cleanup.
type ProductService struct {
	products    repository.ProductRepository
	store       storage.Store
	cache       repository.Cache // nil disables the read cache
	cacheTTL    time.Duration
	uploadTTL   time.Duration
	downloadTTL time.Duration
	logger      zerolog.Logger
}

// ProductServiceConfig contains construction parameters for ProductService.
type ProductServiceConfig struct {
	Products repository.ProductRepository
	Store    storage.Store

	// Cache is optional; nil disables caching entirely.
	Cache    repository.Cache
	CacheTTL time.Duration

	UploadURLTTL   time.Duration
	DownloadURLTTL time.Duration
	Logger         zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(cfg ProductServiceConfig) *ProductService {
	uploadTTL := cfg.UploadURLTTL
	if uploadTTL == 0 {
		uploadTTL = time.Hour
	}
	downloadTTL := cfg.DownloadURLTTL
	if downloadTTL == 0 {
		downloadTTL = 5 * time.Minute
	}

	return &ProductService{
		products:    cfg.Products,
		store:       cfg.Store,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
		logger:      cfg.Logger.With().Str("service", "product").Logger(),
	}
}

// CreateProductInput contains the data needed to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string

	// FileKey and ImageKey are content keys previously obtained through
	// upload URL issuance. Either may be empty.
	FileKey  string
	ImageKey string

	// ImageURL optionally supplies a raw external image URL; when empty
	// and ImageKey is set, the URL is derived from the key.
	ImageURL string

	SellerID string
	Status   string
}

// Create stores a new product record. The record and whatever content
// keys were resolved by the caller are written in a single put; there
// is no two-phase commit with the object store.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Price < 0 {
		return nil, ErrNegativePrice
	}

	product := domain.NewProduct(input.Name, input.Description, input.Price, input.Category, input.SellerID)
	if input.Status == string(domain.ProductStatusInactive) {
		product.Status = domain.ProductStatusInactive
	}
	if input.FileKey != "" {
		product.FileKey = &input.FileKey
	}
	if input.ImageKey != "" {
		product.ImageKey = &input.ImageKey
	}
	switch {
	case input.ImageURL != "":
		product.ImageURL = &input.ImageURL
	case input.ImageKey != "":
		imageURL := s.store.PublicURL(storage.NormalizePublicKey(input.ImageKey))
		product.ImageURL = &imageURL
	}

	if err := s.products.Put(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to create product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("seller_id", product.SellerID).
		Msg("product created")
	return product, nil
}

// Get retrieves a product by identity key, consulting the read cache
// when one is configured.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		if doc, err := s.cache.Get(ctx, productCacheKey(id)); err == nil {
			product := &domain.Product{}
			if json.Unmarshal(doc, product) == nil {
				return product, nil
			}
		}
	}

	product, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.fillCache(ctx, product)
	return product, nil
}

// List returns all products, unordered. Listing is a full scan; any
// filtering happens client-side.
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.Scan(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return products, nil
}

// Delete removes a product and its stored assets. Content keys are
// deleted from the object store first; a storage failure aborts before
// the record is touched, leaving both intact so a retry can finish the
// job. Object deletion is idempotent, so a partial previous attempt
// does not break the retry.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product for deletion")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	for _, key := range product.ContentKeys() {
		if err := s.store.Delete(ctx, storage.NormalizePublicKey(key)); err != nil {
			s.logger.Error().Err(err).
				Str("product_id", id).
				Str("key", key).
				Msg("failed to delete stored object, keeping record for retry")
			return fmt.Errorf("%w: %v", ErrInternalError, err)
		}
	}

	if err := s.products.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product record")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.dropCache(ctx, id)
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// DownloadURL resolves the product's downloadable asset and issues a
// short-lived signed URL for it. The file key wins; the image key is
// the fallback for image-only listings.
func (s *ProductService) DownloadURL(ctx context.Context, id string) (string, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	key, ok := product.DownloadKey()
	if !ok {
		return "", domain.ErrNoDownloadableAsset
	}

	normalized := storage.NormalizePublicKey(key)
	filename := storage.DownloadFilename(product.Name, normalized)

	url, err := s.store.PresignDownload(ctx, normalized, s.downloadTTL, filename)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to presign download")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return url, nil
}

// UploadURLInput contains the data needed to issue an upload URL.
type UploadURLInput struct {
	FileName    string
	ContentType string
}

// UploadURLOutput contains the issued upload URL and the content key
// the caller should record against a product.
type UploadURLOutput struct {
	UploadURL string `json:"uploadURL"`
	Key       string `json:"key"`
}

// UploadURL issues a signed upload URL bound to the given key and
// content type. The caller-visible key stays exactly as supplied;
// storage addressing normalizes it into the public namespace, and
// every download and delete applies the same normalization.
func (s *ProductService) UploadURL(ctx context.Context, input UploadURLInput) (*UploadURLOutput, error) {
	if input.FileName == "" || input.ContentType == "" {
		return nil, ErrMissingUploadParams
	}

	url, err := s.store.PresignUpload(ctx, storage.NormalizePublicKey(input.FileName), input.ContentType, s.uploadTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("file_name", input.FileName).Msg("failed to presign upload")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &UploadURLOutput{
		UploadURL: url,
		Key:       input.FileName,
	}, nil
}

// GetImage streams a stored image, for rendering listing images without
// a capability grant. The caller must close the returned body.
func (s *ProductService) GetImage(ctx context.Context, key string) (*storage.Object, error) {
	obj, err := s.store.Get(ctx, storage.NormalizePublicKey(key))
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, domain.ErrObjectNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to get image")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return obj, nil
}

func (s *ProductService) fillCache(ctx context.Context, product *domain.Product) {
	if s.cache == nil {
		return
	}
	doc, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, productCacheKey(product.ID), doc, s.cacheTTL); err != nil {
		s.logger.Debug().Err(err).Str("product_id", product.ID).Msg("cache fill failed")
	}
}

func (s *ProductService) dropCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		s.logger.Debug().Err(err).Str("product_id", id).Msg("cache invalidation failed")
	}
}

func productCacheKey(id string) string {
	return "product:" + id
}
