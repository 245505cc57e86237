package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	contentapp "github.com/webstudio/backend/internal/application/content"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
)

var (
	_ contentapp.ObjectStorage   = (*MemoryObjectStorage)(nil)
	_ invoiceapp.DocumentArchive = (*MemoryObjectStorage)(nil)
)

// MemoryObjectStorage keeps objects in process memory.
// It stands in for S3 in development and tests; presigned URLs point at BaseURL.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/dev"
	}
	return &MemoryObjectStorage{
		BaseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

// GenerateUploadURL returns a fake presigned URL
func (s *MemoryObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrNoKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.signed("upload", storageKey, expiresAt, url.Values{"content-type": {contentType}}), expiresAt, nil
}

// GenerateDownloadURL returns a fake presigned URL
func (s *MemoryObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrNoKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.signed("download", storageKey, expiresAt, url.Values{}), expiresAt, nil
}

func (s *MemoryObjectStorage) signed(op, key string, expiresAt time.Time, q url.Values) string {
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return s.BaseURL + "/" + op + "/" + key + "?" + q.Encode()
}

// PublicURL always returns "" so callers fall back to presigned downloads
func (s *MemoryObjectStorage) PublicURL(string) string {
	return ""
}

// DeleteObject removes the object if present
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return ErrNoKey
	}
	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists reports whether Upload stored the key
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, ErrNoKey
	}
	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	return ok, nil
}

// Upload stores a copy of data
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return ErrNoKey
	}
	s.mu.Lock()
	s.objects[storageKey] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	s.mu.Unlock()
	return nil
}

// Get returns a stored object
func (s *MemoryObjectStorage) Get(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}
