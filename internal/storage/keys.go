package storage

import (
	"regexp"
	"strings"
)

// Conventional key-namespace prefixes. PublicPrefix denotes objects
// servable without additional authorization; signing always addresses
// keys inside it.
const (
	PublicPrefix         = "public/"
	ProductFilePrefix    = "products/"
	ProductImagePrefix   = "product-images/"
	ProfilePicturePrefix = "profile-pictures/"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	fileExtension       = regexp.MustCompile(`\.[0-9a-zA-Z]+$`)
)

// NormalizePublicKey prefixes a key with the public namespace exactly
// once. The function is pure and idempotent:
// NormalizePublicKey(NormalizePublicKey(k)) == NormalizePublicKey(k).
func NormalizePublicKey(key string) string {
	if strings.HasPrefix(key, PublicPrefix) {
		return key
	}
	return PublicPrefix + key
}

// SanitizeFilename reduces a display name to a filesystem-safe
// character set; anything outside [a-zA-Z0-9._-] becomes an underscore.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// FileExtension returns the trailing ".ext" of a key, or "" when the
// key has none.
func FileExtension(key string) string {
	return fileExtension.FindString(key)
}

// DownloadFilename derives the filename suggested to the buyer: the
// sanitized product name plus the stored key's extension.
func DownloadFilename(productName, key string) string {
	return SanitizeFilename(productName) + FileExtension(key)
}
