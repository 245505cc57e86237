package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	blogapp "github.com/webstudio/backend/internal/application/blog"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AnthropicGenerator writes drafts with the Claude Messages API
type AnthropicGenerator struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	logger      *zap.Logger
}

var _ blogapp.TextGenerator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator creates the client; baseURL may be empty
func NewAnthropicGenerator(cfg config.AIConfig, logger *zap.Logger, baseURL string) *AnthropicGenerator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicGenerator{
		client:      anthropic.NewClient(opts...),
		model:       anthropic.Model(model),
		maxTokens:   maxTokens(cfg),
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Generate sends one user turn and returns the concatenated text blocks
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt blogapp.Prompt) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System, Type: "text"}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return "", errors.New("anthropic returned an empty response")
	}

	var sb strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	g.logger.Info("Draft generated",
		zap.String("provider", ProviderAnthropic),
		zap.String("model", string(g.model)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
		zap.String("stop_reason", string(resp.StopReason)),
	)
	return sb.String(), nil
}
