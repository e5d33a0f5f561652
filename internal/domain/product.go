package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus represents the listing state of a product.
type ProductStatus string

const (
	// ProductStatusActive means the product is listed and purchasable.
	ProductStatusActive ProductStatus = "active"

	// ProductStatusInactive means the product is hidden from listings.
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a digital good offered by a seller.
// A product strongly owns its two content keys (file and image): their
// lifecycle is bound to the product record, and deleting the record
// must also remove the stored objects.
type Product struct {
	// ID is the identity key, generated at creation.
	ID string `json:"id"`

	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`

	// FileKey is the content key of the purchasable asset. Nil when the
	// product has no file (image-only listings).
	FileKey *string `json:"fileKey"`

	// ImageKey is the content key of the listing image.
	ImageKey *string `json:"imageKey"`

	// ImageURL is the externally resolvable URL derived from ImageKey at
	// creation time, or a raw external URL supplied by the seller.
	ImageURL *string `json:"imageUrl"`

	// SellerID references the owning user's identity key.
	SellerID string `json:"sellerId"`

	Status ProductStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProduct creates a Product with a fresh identity key and defaults.
// CreatedAt and UpdatedAt are equal at creation.
func NewProduct(name, description string, price float64, category, sellerID string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		SellerID:    sellerID,
		Status:      ProductStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DownloadKey returns the content key a buyer should receive: the file
// key, falling back to the image key when no file is set. The second
// return value is false when the product has no downloadable asset.
func (p *Product) DownloadKey() (string, bool) {
	if p.FileKey != nil && *p.FileKey != "" {
		return *p.FileKey, true
	}
	if p.ImageKey != nil && *p.ImageKey != "" {
		return *p.ImageKey, true
	}
	return "", false
}

// ContentKeys returns the non-empty content keys owned by this product,
// in the order they must be removed on deletion (file first).
func (p *Product) ContentKeys() []string {
	var keys []string
	if p.FileKey != nil && *p.FileKey != "" {
		keys = append(keys, *p.FileKey)
	}
	if p.ImageKey != nil && *p.ImageKey != "" {
		keys = append(keys, *p.ImageKey)
	}
	return keys
}
