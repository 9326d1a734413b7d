// prompt.go - Shared oracle prompt construction and strict response parsing

package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teklifware/product_match_api/internal/matcher"
)

// matchSystemPrompt pins the oracle to JSON-only answers
const matchSystemPrompt = "Sen bir ürün eşleştirme asistanısın. Sadece JSON formatında yanıt ver."

// buildMatchPrompt renders the customer request plus the candidate list the
// oracle picks from. Only id, code, type and size are sent to keep the
// payload small.
func buildMatchPrompt(rawText string, candidates []matcher.CatalogProduct) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Müşteri Talebi: %q\n\n", rawText)
	fmt.Fprintf(&b, "Aday Ürünler (%d adet):\n", len(candidates))
	for i, p := range candidates {
		diameter := p.Diameter
		if diameter == "" {
			diameter = "-"
		}
		fmt.Fprintf(&b, "%d. ID: %s | Kod: %s | Tip: %s | Çap: %s\n",
			i+1, p.ID, p.ProductCode, p.ProductType, diameter)
	}

	b.WriteString("\nEn uygun ürünü seç ve güven skoru ver (0-1).\n")
	b.WriteString("ÖNEMLI: product_id olarak yukarıdaki ID'yi kullan.\n\n")
	b.WriteString("Sadece JSON formatında cevap ver:\n")
	b.WriteString(`{
  "product_id": "id-buraya",
  "confidence": 0.95,
  "reasoning": "Kısa açıklama"
}`)

	return b.String()
}

// visionExtractPrompt asks the vision model for the raw request lines of a
// photographed customer list
const visionExtractPrompt = `Bu görsel bir müşterinin ürün talep listesi. Listedeki her talep satırını olduğu gibi, satır satır çıkar.

Sadece JSON formatında cevap ver:
{
  "lines": ["talep satırı 1", "talep satırı 2"]
}`

// oracleResponse is the strict wire contract of the match oracle
type oracleResponse struct {
	ProductID  string  `json:"product_id"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// visionResponse is the strict wire contract of the request line extractor
type visionResponse struct {
	Lines []string `json:"lines"`
}

// parseOracleResponse validates the oracle output immediately after receipt.
// Non-JSON payloads, a missing product_id or a confidence outside [0,1] all
// count as malformed - the caller treats malformed as "no pick", never as a
// partial answer.
func parseOracleResponse(raw string) (*oracleResponse, error) {
	var resp oracleResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("malformed oracle response: %w", err)
	}
	if resp.ProductID == "" {
		return nil, fmt.Errorf("malformed oracle response: missing product_id")
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return nil, fmt.Errorf("malformed oracle response: confidence %.3f outside [0,1]", resp.Confidence)
	}
	return &resp, nil
}

// stripCodeFences removes a markdown code fence the model may wrap around
// the JSON despite instructions
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}
