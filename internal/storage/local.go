package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/signer"
)

// LocalStore implements Store on the local filesystem. Signed URLs
// point back at this server's /files/ routes and are verified by the
// shared signer; the server, not the handler issuing the grant, moves
// the bytes.
type LocalStore struct {
	dataDir string
	signer  *signer.Signer
	baseURL string
	logger  zerolog.Logger
}

// objectMeta is stored alongside each blob.
type objectMeta struct {
	ContentType string `json:"contentType"`
}

// NewLocalStore creates a filesystem-backed object store rooted at dataDir.
func NewLocalStore(dataDir, baseURL string, sig *signer.Signer, logger zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &LocalStore{
		dataDir: dataDir,
		signer:  sig,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "local-store").Logger(),
	}, nil
}

// Put stores an object, overwriting any existing object at that key.
func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	path, err := s.blobPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create object file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close object %s: %w", key, err)
	}

	meta, err := json.Marshal(objectMeta{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to encode object metadata: %w", err)
	}
	if err := os.WriteFile(path+".meta", meta, 0o644); err != nil {
		return fmt.Errorf("failed to write object metadata %s: %w", key, err)
	}
	return nil
}

// Get retrieves an object.
func (s *LocalStore) Get(ctx context.Context, key string) (*Object, error) {
	path, err := s.blobPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(path + ".meta"); err == nil {
		var meta objectMeta
		if json.Unmarshal(raw, &meta) == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}

	return &Object{
		Body:        f,
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.blobPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	if err := os.Remove(path + ".meta"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object metadata %s: %w", key, err)
	}
	return nil
}

// PresignUpload returns a signed PUT URL served by this server.
func (s *LocalStore) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("generated upload URL")
	return s.signer.UploadURL(key, contentType, ttl), nil
}

// PresignDownload returns a signed GET URL served by this server.
func (s *LocalStore) PresignDownload(ctx context.Context, key string, ttl time.Duration, filename string) (string, error) {
	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("generated download URL")
	return s.signer.DownloadURL(key, ttl, filename), nil
}

// PublicURL returns the unsigned transfer URL for a key. The /files/
// route still requires a valid signature for the content itself; public
// listing images go through the image passthrough endpoint instead.
func (s *LocalStore) PublicURL(key string) string {
	return s.baseURL + "/images/" + key
}

// blobPath resolves a key inside the data dir and rejects keys that
// would escape it.
func (s *LocalStore) blobPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dataDir, clean), nil
}

// Ensure LocalStore implements Store.
var _ Store = (*LocalStore)(nil)
