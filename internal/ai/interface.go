// interface.go - Provider interfaces for the generative matching oracle

package ai

import (
	"context"

	"github.com/teklifware/product_match_api/internal/common"
	"github.com/teklifware/product_match_api/internal/matcher"
)

// MatchProvider is implemented by every generative matching provider
// (OpenAI, Gemini, ...). It satisfies matcher.Oracle.
type MatchProvider interface {
	// PickProduct submits the raw request plus a bounded candidate list and
	// returns exactly one validated pick
	PickProduct(ctx context.Context, rawText string, candidates []matcher.CatalogProduct) (*matcher.OraclePick, error)

	// GetProviderName returns the provider name (e.g. "openai", "gemini")
	GetProviderName() string
}

// VisionProvider extracts customer request lines from a photographed
// request list. Only providers with a vision model implement this.
type VisionProvider interface {
	ExtractRequestLines(ctx context.Context, imageData []byte, mimeType string) ([]string, *common.TokenUsage, error)
}
