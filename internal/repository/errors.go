package repository

import "errors"

// Repository errors
var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("not found")
)

// Cache errors
var (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable indicates the cache is unavailable.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
