// Package signer mints and verifies time-limited, capability-bearing
// URLs for the local object store backend. A signed URL grants one
// method on one content key until its expiry; nothing else about the
// request is trusted.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameter names carried by signed URLs.
const (
	ParamExpires     = "X-Sunset-Expires"
	ParamSignature   = "X-Sunset-Signature"
	ParamContentType = "X-Sunset-Content-Type"
	ParamFilename    = "X-Sunset-Filename"
)

// Verification errors.
var (
	// ErrExpired indicates the signed URL's expiry has passed.
	ErrExpired = errors.New("signed URL has expired")

	// ErrBadSignature indicates the signature does not match the request.
	ErrBadSignature = errors.New("signature does not match")

	// ErrMalformed indicates required signing parameters are missing or
	// unparsable.
	ErrMalformed = errors.New("malformed signed URL")
)

// Signer signs and verifies transfer URLs with HMAC-SHA256.
type Signer struct {
	key     []byte
	baseURL string
}

// New creates a Signer. baseURL is the externally reachable URL the
// signed paths are appended to (e.g. "http://localhost:8080").
func New(key []byte, baseURL string) *Signer {
	return &Signer{
		key:     key,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// UploadURL returns a signed PUT URL for the key, bound to contentType.
func (s *Signer) UploadURL(key, contentType string, ttl time.Duration) string {
	expires := time.Now().Add(ttl).Unix()

	q := url.Values{}
	q.Set(ParamExpires, strconv.FormatInt(expires, 10))
	if contentType != "" {
		q.Set(ParamContentType, contentType)
	}
	q.Set(ParamSignature, s.signature("PUT", key, expires, contentType, ""))

	return s.transferURL(key, q)
}

// DownloadURL returns a signed GET URL for the key. filename, when not
// empty, is served back as the attachment filename and is covered by
// the signature.
func (s *Signer) DownloadURL(key string, ttl time.Duration, filename string) string {
	expires := time.Now().Add(ttl).Unix()

	q := url.Values{}
	q.Set(ParamExpires, strconv.FormatInt(expires, 10))
	if filename != "" {
		q.Set(ParamFilename, filename)
	}
	q.Set(ParamSignature, s.signature("GET", key, expires, "", filename))

	return s.transferURL(key, q)
}

// Verify checks the signing parameters of an incoming transfer request.
// The key is the object key extracted from the request path; the other
// values come from the query string.
func (s *Signer) Verify(method, key string, query url.Values, now time.Time) error {
	expiresRaw := query.Get(ParamExpires)
	signature := query.Get(ParamSignature)
	if expiresRaw == "" || signature == "" {
		return ErrMalformed
	}

	expires, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil {
		return ErrMalformed
	}
	if now.Unix() > expires {
		return ErrExpired
	}

	expected := s.signature(
		method,
		key,
		expires,
		query.Get(ParamContentType),
		query.Get(ParamFilename),
	)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

// signature computes the hex HMAC over everything a signed URL grants:
// method, key, expiry and the bound content type / filename.
func (s *Signer) signature(method, key string, expires int64, contentType, filename string) string {
	mac := hmac.New(sha256.New, s.key)
	fmt.Fprintf(mac, "%s\n%s\n%d\n%s\n%s", method, key, expires, contentType, filename)
	return hex.EncodeToString(mac.Sum(nil))
}

// transferURL builds the full signed URL for a key.
func (s *Signer) transferURL(key string, q url.Values) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.baseURL + "/files/" + strings.Join(segments, "/") + "?" + q.Encode()
}
