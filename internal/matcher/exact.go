// exact.go - Deterministic code / measurement-pattern matching stage

package matcher

import (
	"context"
	"fmt"
	"time"
)

// tryExact looks up a deterministic catalog match from the extracted code or
// a singleton measurement-pattern hit. Returns nil when inconclusive; a
// multi-hit pattern is deliberately deferred to the lexical stage, which
// owns multi-candidate disambiguation.
func (e *Engine) tryExact(ctx context.Context, parsed ParsedRequest) (*MatchCandidate, error) {
	if parsed.ExtractedCode == "" && parsed.MeasurementPattern == "" {
		return nil, nil
	}

	start := time.Now()

	// Product code wins outright
	if parsed.ExtractedCode != "" {
		products, err := e.catalog.SearchByCode(ctx, parsed.ExtractedCode)
		if err != nil {
			return nil, fmt.Errorf("product code search failed: %w", err)
		}
		if len(products) > 0 {
			return &MatchCandidate{
				ProductID:  products[0].ID,
				Product:    products[0],
				Confidence: 1.0,
				Strategy:   StrategyExact,
				Reasoning:  fmt.Sprintf("Ürün kodu tam eşleşme: %s", parsed.ExtractedCode),
				ElapsedMS:  time.Since(start).Milliseconds(),
			}, nil
		}
	}

	// Measurement pattern (63-50 style) resolves only as a singleton
	if parsed.MeasurementPattern != "" {
		products, err := e.catalog.SearchByPattern(ctx, parsed.MeasurementPattern, e.cfg.SearchLimit)
		if err != nil {
			return nil, fmt.Errorf("measurement pattern search failed: %w", err)
		}
		if len(products) == 1 {
			return &MatchCandidate{
				ProductID:  products[0].ID,
				Product:    products[0],
				Confidence: 0.95,
				Strategy:   StrategyExact,
				Reasoning:  fmt.Sprintf("Ölçü pattern eşleşme: %s", parsed.MeasurementPattern),
				ElapsedMS:  time.Since(start).Milliseconds(),
			}, nil
		}
	}

	return nil, nil
}
