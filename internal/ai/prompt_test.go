package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teklifware/product_match_api/internal/matcher"
)

func TestBuildMatchPromptListsCandidates(t *testing.T) {
	candidates := []matcher.CatalogProduct{
		{ID: "id-1", ProductCode: "NTG EF 63-50", ProductType: "Elektrofüzyon", Diameter: "63-50"},
		{ID: "id-2", ProductCode: "B-125", ProductType: "Boru"},
	}

	prompt := buildMatchPrompt("kaynaklı boru 63-50", candidates)

	assert.Contains(t, prompt, `Müşteri Talebi: "kaynaklı boru 63-50"`)
	assert.Contains(t, prompt, "Aday Ürünler (2 adet)")
	assert.Contains(t, prompt, "ID: id-1 | Kod: NTG EF 63-50 | Tip: Elektrofüzyon | Çap: 63-50")
	// Missing diameter renders as a dash, not an empty column
	assert.Contains(t, prompt, "ID: id-2 | Kod: B-125 | Tip: Boru | Çap: -")
	assert.Contains(t, prompt, "product_id")
}

func TestParseOracleResponseValid(t *testing.T) {
	resp, err := parseOracleResponse(`{"product_id":"id-1","confidence":0.87,"reasoning":"ölçü uyumlu"}`)
	require.NoError(t, err)

	assert.Equal(t, "id-1", resp.ProductID)
	assert.Equal(t, 0.87, resp.Confidence)
	assert.Equal(t, "ölçü uyumlu", resp.Reasoning)
}

func TestParseOracleResponseStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"product_id\":\"id-1\",\"confidence\":0.5,\"reasoning\":\"\"}\n```"
	resp, err := parseOracleResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "id-1", resp.ProductID)
}

func TestParseOracleResponseRejectsNonJSON(t *testing.T) {
	_, err := parseOracleResponse("en uygun ürün id-1 olur")
	assert.Error(t, err)
}

func TestParseOracleResponseRejectsMissingProductID(t *testing.T) {
	_, err := parseOracleResponse(`{"confidence":0.9,"reasoning":"..."}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_id")
}

func TestParseOracleResponseRejectsConfidenceOutOfRange(t *testing.T) {
	_, err := parseOracleResponse(`{"product_id":"id-1","confidence":1.5}`)
	assert.Error(t, err)

	_, err = parseOracleResponse(`{"product_id":"id-1","confidence":-0.2}`)
	assert.Error(t, err)
}

func TestParseOracleResponseAcceptsBoundaryConfidence(t *testing.T) {
	resp, err := parseOracleResponse(`{"product_id":"id-1","confidence":0}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.Confidence)

	resp, err = parseOracleResponse(`{"product_id":"id-1","confidence":1}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestStripCodeFencesPassthrough(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences(` {"a":1} `))
}
