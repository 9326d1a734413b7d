// generative.go - Oracle fallback stage, best-effort and strictly validated

package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/teklifware/product_match_api/internal/common"
)

// aiMatch consults the generative oracle with a bounded candidate set.
// Any transport, timeout or parse problem - and any answer naming a product
// outside the candidate set - yields nil. This stage never fabricates a
// product and never fails the request.
func (e *Engine) aiMatch(ctx context.Context, rawText string, candidates []CatalogProduct, rc *common.RequestContext) (*MatchCandidate, *common.TokenUsage) {
	if e.oracle == nil || len(candidates) == 0 {
		return nil, nil
	}

	start := time.Now()

	// Bound the payload: only the top candidates reach the oracle
	if len(candidates) > e.cfg.AICandidateLimit {
		candidates = candidates[:e.cfg.AICandidateLimit]
	}

	// Single attempt with its own budget; a cancelled caller context wins
	oracleCtx, cancel := context.WithTimeout(ctx, e.cfg.OracleTimeout)
	defer cancel()

	pick, err := e.oracle.PickProduct(oracleCtx, rawText, candidates)
	if err != nil {
		rc.LogWarning("AI eşleştirme başarısız: %v", err)
		return nil, nil
	}

	// Strict validation of the oracle answer
	if pick.Confidence < 0 || pick.Confidence > 1 {
		rc.LogWarning("AI güven skoru aralık dışı (%.3f), yanıt reddedildi", pick.Confidence)
		return nil, &pick.Tokens
	}
	var product *CatalogProduct
	for i := range candidates {
		if candidates[i].ID == pick.ProductID {
			product = &candidates[i]
			break
		}
	}
	if product == nil {
		rc.LogWarning("AI aday listesi dışında ürün döndürdü (%s), yanıt reddedildi", pick.ProductID)
		return nil, &pick.Tokens
	}

	return &MatchCandidate{
		ProductID:  product.ID,
		Product:    *product,
		Confidence: pick.Confidence,
		Strategy:   StrategyGenerative,
		Reasoning:  fmt.Sprintf("AI: %s (%d token)", pick.Reasoning, pick.Tokens.TotalTokens),
		ElapsedMS:  time.Since(start).Milliseconds(),
	}, &pick.Tokens
}
