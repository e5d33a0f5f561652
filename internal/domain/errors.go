package domain

import "errors"

// Domain errors - these represent business rule violations, distinct
// from infrastructure errors (database, object store, network).

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoDownloadableAsset indicates the product has neither a file
	// key nor an image key to serve.
	ErrNoDownloadableAsset = errors.New("product has no downloadable file")

	// ErrObjectNotFound indicates the requested stored object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)
