package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	blogapp "github.com/webstudio/backend/internal/application/blog"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OpenAIGenerator writes drafts with the OpenAI Responses API
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *zap.Logger
}

var _ blogapp.TextGenerator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates the client; baseURL may be empty
func NewOpenAIGenerator(cfg config.AIConfig, logger *zap.Logger, baseURL string) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens(cfg),
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Generate sends the prompt with the system text as instructions
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt blogapp.Prompt) (string, error) {
	params := responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(g.maxTokens),
		Temperature:     openai.Float(g.temperature),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt.User)},
	}
	if prompt.System != "" {
		params.Instructions = openai.String(prompt.System)
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("openai returned an empty response")
	}

	text := resp.OutputText()
	if text == "" {
		return "", errors.New("openai response has no text output")
	}

	g.logger.Info("Draft generated",
		zap.String("provider", ProviderOpenAI),
		zap.String("model", g.model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return text, nil
}
