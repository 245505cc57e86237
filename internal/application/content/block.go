package content

import (
	"context"
	"strings"

	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/shared"
)

// UpsertBlock creates or replaces the block for (key, locale)
func (s *ContentService) UpsertBlock(ctx context.Context, key, locale, value string) (*BlockDTO, error) {
	loc, err := shared.ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	block, err := content.NewBlock(key, loc, value)
	if err != nil {
		return nil, err
	}
	if err := s.blocks.Upsert(ctx, block); err != nil {
		return nil, err
	}
	return &BlockDTO{
		Key:       block.Key,
		Locale:    string(block.Locale),
		Value:     block.Value,
		UpdatedAt: block.UpdatedAt,
	}, nil
}

// GetBlocks returns key -> value for the locale, limited to keys under prefix
func (s *ContentService) GetBlocks(ctx context.Context, locale shared.Locale, prefix string) (map[string]string, error) {
	blocks, err := s.blocks.FindByPrefix(ctx, locale, strings.ToLower(strings.TrimSpace(prefix)))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(blocks))
	for _, b := range blocks {
		out[b.Key] = b.Value
	}
	return out, nil
}

func (s *ContentService) DeleteBlock(ctx context.Context, key string, locale shared.Locale) error {
	if err := s.blocks.Delete(ctx, strings.ToLower(strings.TrimSpace(key)), locale); err != nil {
		return notFound("Content block", err)
	}
	return nil
}
