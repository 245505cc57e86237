package seo

import (
	"context"

	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/shared"
)

// SitemapRefreshHandler drops the cached sitemap when a post goes live
type SitemapRefreshHandler struct {
	cache PageCache
}

// NewSitemapRefreshHandler creates the handler
func NewSitemapRefreshHandler(cache PageCache) *SitemapRefreshHandler {
	return &SitemapRefreshHandler{cache: cache}
}

func (h *SitemapRefreshHandler) EventTypes() []string {
	return []string{blog.EventTypePostPublished}
}

func (h *SitemapRefreshHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	return h.cache.Delete(ctx, sitemapCacheKey)
}

var _ shared.EventHandler = (*SitemapRefreshHandler)(nil)
