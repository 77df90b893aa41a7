package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		category ErrorCategory
		status   int
	}{
		{"validation", NewValidationError("bad input"), CategoryValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("repository octocat/missing"), CategoryNotFound, http.StatusNotFound},
		{"network", NewNetworkError("connect failed", errors.New("refused")), CategoryNetwork, http.StatusBadGateway},
		{"timeout", NewTimeoutError("slow upstream", nil), CategoryTimeout, http.StatusGatewayTimeout},
		{"rate limit", NewRateLimitError("60"), CategoryRateLimit, http.StatusTooManyRequests},
		{"quota", NewQuotaExhaustedError(time.Now().Add(time.Hour)), CategoryQuota, http.StatusServiceUnavailable},
		{"external api", NewExternalAPIError("GitHub", errors.New("502")), CategoryExternalAPI, http.StatusBadGateway},
		{"internal", NewInternalError("boom", nil), CategoryInternal, http.StatusInternalServerError},
		{"configuration", NewConfigurationError("missing token", nil), CategoryConfiguration, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestQuotaErrorMessage(t *testing.T) {
	err := NewQuotaExhaustedError(time.Time{})
	assert.Contains(t, err.Error(), "QUOTA_EXHAUSTED")
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestIsQuotaExhausted(t *testing.T) {
	assert.True(t, IsQuotaExhausted(NewQuotaExhaustedError(time.Now())))
	assert.False(t, IsQuotaExhausted(NewRateLimitError("60")))
	assert.False(t, IsQuotaExhausted(errors.New("plain")))
	assert.False(t, IsQuotaExhausted(nil))

	wrapped := fmt.Errorf("analysis: %w", NewQuotaExhaustedError(time.Now()))
	assert.True(t, IsQuotaExhausted(wrapped))
}

func TestToAppErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"network", errors.New("dial tcp: connection refused"), CategoryNetwork},
		{"timeout", errors.New("context deadline exceeded"), CategoryTimeout},
		{"unknown", errors.New("something odd"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.category, appErr.Category)
		})
	}
}

func TestToAppErrorPassthrough(t *testing.T) {
	orig := NewValidationError("already wrapped")
	assert.Same(t, orig, ToAppError(orig))
	assert.Nil(t, ToAppError(nil))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(NewNetworkError("down", nil)))
	assert.True(t, IsRetryableError(NewRateLimitError("30")))
	assert.False(t, IsRetryableError(NewQuotaExhaustedError(time.Now())))
	assert.False(t, IsRetryableError(NewValidationError("bad")))
}

func TestGetRetryDelayGrows(t *testing.T) {
	err := NewNetworkError("down", nil)
	d1 := GetRetryDelay(err, 1)
	d2 := GetRetryDelay(err, 2)
	assert.Greater(t, d2, d1)
}
