// lexical.go - Full-text / pattern search stage with multi-signal scoring

package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// searchLexical runs the three-tier lexical policy, first non-empty result
// set wins. Results are sorted by confidence descending.
func (e *Engine) searchLexical(ctx context.Context, parsed ParsedRequest) ([]MatchCandidate, error) {
	start := time.Now()

	// Tier 1: pattern without any keywords. The pattern itself is a strong
	// signal with no disambiguating text, so every hit scores a flat 0.9.
	if parsed.MeasurementPattern != "" && len(parsed.Keywords) == 0 {
		products, err := e.catalog.SearchByPattern(ctx, parsed.MeasurementPattern, e.cfg.SearchLimit)
		if err != nil {
			return nil, fmt.Errorf("pattern search failed: %w", err)
		}
		if len(products) > 0 {
			results := make([]MatchCandidate, 0, len(products))
			for _, p := range products {
				results = append(results, MatchCandidate{
					ProductID:  p.ID,
					Product:    p,
					Confidence: 0.9,
					Strategy:   StrategyLexical,
					Reasoning:  fmt.Sprintf("Pattern eşleşme: %s", parsed.MeasurementPattern),
					ElapsedMS:  time.Since(start).Milliseconds(),
				})
			}
			return results, nil
		}
	}

	// Tier 2: pattern plus keywords
	if parsed.MeasurementPattern != "" && len(parsed.Keywords) > 0 {
		products, err := e.catalog.SearchByPattern(ctx, parsed.MeasurementPattern, e.cfg.SearchLimit)
		if err != nil {
			return nil, fmt.Errorf("pattern search failed: %w", err)
		}
		if len(products) > 0 {
			results := make([]MatchCandidate, 0, len(products))
			for _, p := range products {
				score := 0.7
				if strings.Contains(p.SearchText, parsed.MeasurementPattern) {
					score += 0.2
				}
				matched := matchedKeywordCount(p.SearchText, parsed.Keywords)
				score += float64(matched) / float64(len(parsed.Keywords)) * 0.1

				results = append(results, MatchCandidate{
					ProductID:  p.ID,
					Product:    p,
					Confidence: math.Min(score, 1.0),
					Strategy:   StrategyLexical,
					Reasoning:  fmt.Sprintf("Pattern + %d/%d kelime eşleşmesi", matched, len(parsed.Keywords)),
					ElapsedMS:  time.Since(start).Milliseconds(),
				})
			}
			sortByConfidence(results)
			return results, nil
		}
	}

	// Tier 3: keyword full-text search with numeric bonuses
	if len(parsed.Keywords) == 0 {
		return nil, nil
	}

	products, err := e.catalog.SearchFullText(ctx, parsed.Keywords, e.cfg.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	results := make([]MatchCandidate, 0, len(products))
	for _, p := range products {
		score := 0.5

		if len(parsed.Numbers) > 0 {
			productNumbers := numberPattern.FindAllString(p.SearchText, -1)
			for _, num := range parsed.Numbers {
				if containsString(productNumbers, num) {
					score += 0.15
				}
			}
			// Full measurement pattern in the search text is the strongest bonus
			if parsed.MeasurementPattern != "" && strings.Contains(p.SearchText, parsed.MeasurementPattern) {
				score += 0.3
			}
		}

		matched := matchedKeywordCount(p.SearchText, parsed.Keywords)
		score += float64(matched) / float64(len(parsed.Keywords)) * 0.2

		results = append(results, MatchCandidate{
			ProductID:  p.ID,
			Product:    p,
			Confidence: math.Min(score, 1.0),
			Strategy:   StrategyLexical,
			Reasoning:  fmt.Sprintf("Full-text: %d kelime, %d sayı eşleşti", matched, len(parsed.Numbers)),
			ElapsedMS:  time.Since(start).Milliseconds(),
		})
	}

	sortByConfidence(results)
	return results, nil
}

// similarSet returns every result within gap of the top confidence. Two or
// more members means automatic selection is unsafe and the caller must ask
// a human to disambiguate.
func similarSet(results []MatchCandidate, gap float64) []MatchCandidate {
	if len(results) == 0 {
		return nil
	}
	top := results[0].Confidence
	var similar []MatchCandidate
	for _, r := range results {
		if math.Abs(r.Confidence-top) < gap {
			similar = append(similar, r)
		}
	}
	return similar
}

func matchedKeywordCount(searchText string, keywords []string) int {
	haystack := strings.ToLower(searchText)
	count := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			count++
		}
	}
	return count
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Stable sort keeps catalog order among equal scores so repeated calls
// against an unchanged catalog yield the same candidate order.
func sortByConfidence(results []MatchCandidate) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
}
