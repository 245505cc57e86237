package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = time.Hour
)

// ObjectStorage is implemented by the S3 and in-memory stores
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	// PublicURL returns "" when objects are not publicly served
	PublicURL(storageKey string) string
}

// Upload kinds decide the key prefix
const (
	UploadKindPortfolio = "portfolio"
	UploadKindBlog      = "blog"
)

// imageExtensions lists the accepted image types with their file extension
var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// IsAllowedImageType reports whether uploads of contentType are accepted
func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[normalizeContentType(contentType)]
	return ok
}

// CreateImageUpload returns a presigned URL for uploading one image
func (s *ContentService) CreateImageUpload(ctx context.Context, input ImageUploadInput) (*ImageUpload, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Object storage is not configured")
	}
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind != UploadKindPortfolio && kind != UploadKindBlog {
		return nil, shared.NewDomainError("INVALID_KIND", "Upload kind must be portfolio or blog")
	}
	contentType := normalizeContentType(input.ContentType)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: JPEG, PNG, WebP, GIF and SVG.", input.ContentType))
	}

	key := s.storageKey(kind, input.Filename, ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Image upload prepared", zap.String("key", key), zap.String("content_type", contentType))
	return &ImageUpload{
		UploadURL:   url,
		Key:         key,
		ContentType: contentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// ImageURL resolves a stored key to a public or presigned URL; "" when unavailable
func (s *ContentService) ImageURL(ctx context.Context, key string) string {
	if key == "" || s.storage == nil {
		return ""
	}
	if u := s.storage.PublicURL(key); u != "" {
		return u
	}
	u, _, err := s.storage.GenerateDownloadURL(ctx, key, downloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to sign image URL", zap.String("key", key), zap.Error(err))
		return ""
	}
	return u
}

func (s *ContentService) deleteObject(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored image", zap.String("key", key), zap.Error(err))
	}
}

// storageKey builds <kind>/<yyyy>/<mm>/<uuid>-<name><ext>
func (s *ContentService) storageKey(kind, filename, ext string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	name := shared.Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
	if len(name) > 60 {
		name = strings.Trim(name[:60], "-")
	}
	id := uuid.New().String()
	if name != "" {
		id += "-" + name
	}
	return fmt.Sprintf("%s/%s/%s%s", kind, s.now().UTC().Format("2006/01"), id, ext)
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
