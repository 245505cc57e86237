// Package ai adapts hosted language models to the blog draft generator.
package ai

import (
	"fmt"
	"strings"

	blogapp "github.com/webstudio/backend/internal/application/blog"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Provider names accepted in ai.provider
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultOpenAIModel    = "gpt-4.1-mini"
	defaultMaxTokens      = 4096
)

// NewGenerator builds the configured provider. It returns nil for "none".
func NewGenerator(cfg config.AIConfig, logger *zap.Logger, opts ...Option) (blogapp.TextGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
		return nil, nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(cfg, logger, o.baseURL), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg, logger, o.baseURL), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

type options struct {
	baseURL string
}

// Option customizes the provider clients
type Option func(*options)

// WithBaseURL points the client at a proxy or a test server
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func maxTokens(cfg config.AIConfig) int64 {
	if cfg.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return int64(cfg.MaxTokens)
}
