package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/primeinsights/proof-engine/internal/errors"
)

func fastConfig() RetryConfig {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond
	config.MaxDelay = 5 * time.Millisecond
	return config
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return apperrors.NewNetworkError("connection reset", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastConfig(), func() error {
		attempts++
		return apperrors.NewConfigError("bad threshold", nil)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "configuration errors must not be retried")
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastConfig(), func() error {
		attempts++
		return apperrors.NewTimeoutError("upstream slow", nil)
	})

	assert.Error(t, err)
	assert.Equal(t, fastConfig().MaxAttempts, attempts)
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithConfig(ctx, fastConfig(), func() error {
		t.Error("cancelled context must not run the function")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryHTTPRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := RetryHTTP(context.Background(), fastConfig(), func() (*http.Response, error) {
		return http.Get(srv.URL)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestRetryHTTPPassesThroughClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "no such proof", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := RetryHTTP(context.Background(), fastConfig(), func() (*http.Response, error) {
		return http.Get(srv.URL)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, attempts, "4xx responses are returned to the caller, not retried")
}

func TestRetryHTTPExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "still broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := RetryHTTP(context.Background(), fastConfig(), func() (*http.Response, error) {
		return http.Get(srv.URL)
	})
	assert.Error(t, err)
	assert.Nil(t, resp)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}
