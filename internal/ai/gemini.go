// gemini.go - Gemini match provider and vision request-line extraction

package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/teklifware/product_match_api/internal/common"
	"github.com/teklifware/product_match_api/internal/matcher"
	"github.com/teklifware/product_match_api/internal/ratelimit"
	"google.golang.org/api/option"
)

// GeminiProvider implements MatchProvider and VisionProvider
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

// GetProviderName returns the provider name
func (p *GeminiProvider) GetProviderName() string {
	return "gemini"
}

// matchResponseSchema pins the response shape so the model cannot drift
// from the JSON contract
func matchResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"product_id": {
				Type:        genai.TypeString,
				Description: "Seçilen ürünün ID değeri",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "0 ile 1 arasında güven skoru",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Kısa açıklama",
			},
		},
		Required: []string{"product_id", "confidence", "reasoning"},
	}
}

// PickProduct asks Gemini for exactly one candidate id plus confidence
func (p *GeminiProvider) PickProduct(ctx context.Context, rawText string, candidates []matcher.CatalogProduct) (*matcher.OraclePick, error) {
	ratelimit.WaitForRateLimit()

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   matchResponseSchema(),
	}
	model.SetTemperature(0.3)

	prompt := matchSystemPrompt + "\n\n" + buildMatchPrompt(rawText, candidates)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, categorizeOracleError(err)
	}

	raw, err := collectText(resp)
	if err != nil {
		return nil, err
	}
	parsed, err := parseOracleResponse(raw)
	if err != nil {
		return nil, err
	}

	pick := &matcher.OraclePick{
		ProductID:  parsed.ProductID,
		Confidence: parsed.Confidence,
		Reasoning:  parsed.Reasoning,
	}
	if resp.UsageMetadata != nil {
		pick.Tokens = common.CalculateTokenCost(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
	}

	return pick, nil
}

// ExtractRequestLines reads customer request lines from a photographed
// request list via the vision model
func (p *GeminiProvider) ExtractRequestLines(ctx context.Context, imageData []byte, mimeType string) ([]string, *common.TokenUsage, error) {
	ratelimit.WaitForRateLimit()

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"lines": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"lines"},
		},
	}
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx,
		genai.Text(visionExtractPrompt),
		genai.Blob{
			MIMEType: mimeType,
			Data:     imageData,
		},
	)
	if err != nil {
		return nil, nil, categorizeOracleError(err)
	}

	raw, err := collectText(resp)
	if err != nil {
		return nil, nil, err
	}
	var extracted visionResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &extracted); err != nil {
		return nil, nil, fmt.Errorf("malformed vision response: %w", err)
	}

	var tokens *common.TokenUsage
	if resp.UsageMetadata != nil {
		usage := common.CalculateTokenCost(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
		tokens = &usage
	}

	return extracted.Lines, tokens, nil
}

// collectText concatenates the text parts of the first candidate
func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty Gemini response")
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("Gemini response contained no text parts")
	}
	return out, nil
}
