// Package service provides business logic services for the Sunset
// marketplace.
package service

import (
	"errors"
	"fmt"
)

// ErrValidation is the base of every malformed-input error. Handlers
// map anything wrapping it to a 400 response.
var ErrValidation = errors.New("invalid request")

// Validation errors.
var (
	// ErrMissingUserID indicates no user identity key was supplied.
	ErrMissingUserID = fmt.Errorf("%w: user ID is required", ErrValidation)

	// ErrInvalidUserID indicates the supplied user identity key is unusable.
	ErrInvalidUserID = fmt.Errorf("%w: invalid user ID", ErrValidation)

	// ErrUserIDMismatch indicates the path and body disagree on the user.
	ErrUserIDMismatch = fmt.Errorf("%w: user ID mismatch", ErrValidation)

	// ErrMissingUploadParams indicates an upload URL request without the
	// required file name or content type.
	ErrMissingUploadParams = fmt.Errorf("%w: fileName and contentType are required", ErrValidation)

	// ErrNegativePrice indicates a product price below zero.
	ErrNegativePrice = fmt.Errorf("%w: price must be non-negative", ErrValidation)
)

// General errors.
var (
	// ErrInternalError indicates an underlying store failure.
	ErrInternalError = errors.New("internal server error")
)
