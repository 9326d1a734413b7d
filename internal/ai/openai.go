// openai.go - OpenAI match provider (chat completion with JSON response format)

package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/teklifware/product_match_api/internal/common"
	"github.com/teklifware/product_match_api/internal/matcher"
	"github.com/teklifware/product_match_api/internal/ratelimit"
)

// OpenAIProvider implements MatchProvider using the chat completions API
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI match provider
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// GetProviderName returns the provider name
func (p *OpenAIProvider) GetProviderName() string {
	return "openai"
}

// PickProduct asks the model for exactly one candidate id plus confidence.
// Low temperature and the json_object response format keep the answer
// parseable; anything that still fails validation is a malformed response.
func (p *OpenAIProvider) PickProduct(ctx context.Context, rawText string, candidates []matcher.CatalogProduct) (*matcher.OraclePick, error) {
	ratelimit.WaitForRateLimit()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: matchSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildMatchPrompt(rawText, candidates),
			},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, categorizeOracleError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	parsed, err := parseOracleResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &matcher.OraclePick{
		ProductID:  parsed.ProductID,
		Confidence: parsed.Confidence,
		Reasoning:  parsed.Reasoning,
		Tokens:     common.CalculateTokenCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}, nil
}
