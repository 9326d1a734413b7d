package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teklifware/product_match_api/configs"
)

func TestCalculateTokenCost(t *testing.T) {
	configs.AI_INPUT_PRICE_PER_MILLION = 0.15
	configs.AI_OUTPUT_PRICE_PER_MILLION = 0.60
	configs.USD_TO_TRY = 40.0

	usage := CalculateTokenCost(1_000_000, 500_000)

	assert.Equal(t, 1_500_000, usage.TotalTokens)
	assert.InDelta(t, 0.45, usage.CostUSD, 0.0001) // 0.15 + 0.30
	assert.InDelta(t, 18.0, usage.CostTRY, 0.001)
}

func TestRequestContextAccumulatesTokens(t *testing.T) {
	rc := NewRequestContext("dirsek 63-50")
	require.NotEmpty(t, rc.RequestID)

	rc.StartStep("generative_match")
	rc.EndStep("success", &TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120}, nil)

	rc.StartStep("extract_from_image")
	rc.EndStep("success", &TokenUsage{InputTokens: 50, OutputTokens: 10, TotalTokens: 60}, nil)

	assert.Equal(t, 150, rc.TotalTokens.InputTokens)
	assert.Equal(t, 30, rc.TotalTokens.OutputTokens)
	assert.Equal(t, 180, rc.TotalTokens.TotalTokens)
	assert.Len(t, rc.Steps, 2)
}

func TestEndStepRecordsError(t *testing.T) {
	rc := NewRequestContext("boru")

	rc.StartStep("exact_match")
	rc.EndStep("failed", nil, errors.New("connection refused"))

	require.Len(t, rc.Steps, 1)
	assert.Equal(t, "failed", rc.Steps[0].Status)
	assert.Equal(t, "connection refused", rc.Steps[0].Error)
	assert.Equal(t, "", rc.CurrentStep)
}

func TestGetSummaryBreaksDownSteps(t *testing.T) {
	rc := NewRequestContext("boru")

	rc.StartStep("parse_request")
	rc.EndStep("success", nil, nil)
	rc.StartStep("lexical_match")
	rc.EndStep("success", nil, nil)

	summary := rc.GetSummary()

	assert.Equal(t, rc.RequestID, summary["request_id"])
	assert.Equal(t, 2, summary["total_steps"])

	breakdown, ok := summary["step_breakdown"].(map[string]int64)
	require.True(t, ok)
	assert.Contains(t, breakdown, "parse_request")
	assert.Contains(t, breakdown, "lexical_match")
}
