package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestCategorizeOracleErrorRateLimit(t *testing.T) {
	err := categorizeOracleError(&googleapi.Error{Code: 429})

	assert.Equal(t, "rate_limit", err.Category)
	assert.Equal(t, 429, err.StatusCode)
	assert.True(t, err.Retryable)
}

func TestCategorizeOracleErrorOpenAIUnauthorized(t *testing.T) {
	err := categorizeOracleError(&openai.APIError{HTTPStatusCode: 401, Message: "invalid key"})

	assert.Equal(t, "unauthorized", err.Category)
	assert.Equal(t, 401, err.StatusCode)
	assert.False(t, err.Retryable)
}

func TestCategorizeOracleErrorServerErrorRetryable(t *testing.T) {
	err := categorizeOracleError(&googleapi.Error{Code: 503})

	assert.Equal(t, "server_error", err.Category)
	assert.True(t, err.Retryable)
}

func TestCategorizeOracleErrorTimeout(t *testing.T) {
	err := categorizeOracleError(fmt.Errorf("oracle call: %w", context.DeadlineExceeded))

	assert.Equal(t, "timeout", err.Category)
	assert.True(t, err.Retryable)
}

func TestCategorizeOracleErrorUnknown(t *testing.T) {
	original := errors.New("something odd")
	err := categorizeOracleError(original)

	assert.Equal(t, "unknown", err.Category)
	assert.False(t, err.Retryable)
	assert.ErrorIs(t, err, original)
}

func TestCategorizeOracleErrorNil(t *testing.T) {
	require.Nil(t, categorizeOracleError(nil))
}
