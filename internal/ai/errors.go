// errors.go - Error categorization for oracle API calls

package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// OracleError is a categorized provider API error. The engine makes a single
// oracle attempt per request by design, so Retryable only feeds diagnostics
// and log messages, never an automatic retry.
type OracleError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
	Retryable     bool
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, retryable: %v)", e.Category, e.Message, e.StatusCode, e.Retryable)
}

func (e *OracleError) Unwrap() error {
	return e.OriginalError
}

// categorizeOracleError analyzes a provider error for diagnostics
func categorizeOracleError(err error) *OracleError {
	if err == nil {
		return nil
	}

	oracleErr := &OracleError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
		Retryable:     false,
	}

	// Both providers surface HTTP status codes, in their own error types
	statusCode := 0
	apiMessage := ""
	var googleErr *googleapi.Error
	var openaiErr *openai.APIError
	if errors.As(err, &googleErr) {
		statusCode = googleErr.Code
		apiMessage = googleErr.Message
	} else if errors.As(err, &openaiErr) {
		statusCode = openaiErr.HTTPStatusCode
		apiMessage = openaiErr.Message
	}

	if statusCode != 0 {
		oracleErr.StatusCode = statusCode

		switch statusCode {
		case 400:
			oracleErr.Category = "bad_request"
			oracleErr.Message = "Invalid request format or parameters"
		case 401:
			oracleErr.Category = "unauthorized"
			oracleErr.Message = "Invalid API key or authentication failed"
		case 403:
			oracleErr.Category = "forbidden"
			oracleErr.Message = "API key lacks required permissions"
		case 404:
			oracleErr.Category = "not_found"
			oracleErr.Message = "Model not found or invalid endpoint"
		case 429:
			oracleErr.Category = "rate_limit"
			oracleErr.Message = "Rate limit exceeded - too many requests"
			oracleErr.Retryable = true
		case 500, 502, 503, 504:
			oracleErr.Category = "server_error"
			oracleErr.Message = fmt.Sprintf("Oracle server error (%d)", statusCode)
			oracleErr.Retryable = true
		default:
			oracleErr.Category = "unknown_api_error"
			oracleErr.Message = fmt.Sprintf("API error: %s", apiMessage)
			oracleErr.Retryable = statusCode >= 500
		}

		return oracleErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		oracleErr.Category = "timeout"
		oracleErr.Message = "Oracle call exceeded its time budget"
		oracleErr.Retryable = true
		return oracleErr
	}

	if errors.Is(err, context.Canceled) {
		oracleErr.Category = "canceled"
		oracleErr.Message = "Request was canceled"
		return oracleErr
	}

	return oracleErr
}
