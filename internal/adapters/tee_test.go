package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeinsights/proof-engine/internal/monitoring"
)

func TestGetProofHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/proof/abc123", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		json.NewEncoder(w).Encode(map[string]string{"data_hash": "deadbeef"})
	}))
	defer srv.Close()

	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), nil)
	hash, err := client.GetProofHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)
}

func TestGetProofHashMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), nil)
	_, err := client.GetProofHash(context.Background(), "abc123")
	assert.Error(t, err)
}

func TestGetProofHashNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown proof key", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), nil)
	_, err := client.GetProofHash(context.Background(), "abc123")
	assert.Error(t, err)
}

func TestQuerySimilar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/minhash/query", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "", body["user_id"])
		assert.NotEmpty(t, body["minhash_data"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"id": 7, "user_id": "u-1", "minhash": "{}", "similarity": 0.93},
			},
		})
	}))
	defer srv.Close()

	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), nil)
	candidates, err := client.QuerySimilar(context.Background(), `{"seed":1}`)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 7, candidates[0].ID)
	assert.Equal(t, 0.93, candidates[0].Similarity)
}

func TestSaveMinHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/minhash", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u-1", body["user_id"])

		json.NewEncoder(w).Encode(map[string]int{"id": 42})
	}))
	defer srv.Close()

	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), nil)
	id, err := client.SaveMinHash(context.Background(), "u-1", `{"seed":1}`)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestClientFeedsRunMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/proof/missing" {
			http.Error(w, "unknown proof key", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"data_hash": "deadbeef"})
	}))
	defer srv.Close()

	metrics := monitoring.NewMetrics()
	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), metrics)

	_, err := client.GetProofHash(context.Background(), "abc123")
	require.NoError(t, err)
	_, err = client.GetProofHash(context.Background(), "missing")
	require.Error(t, err)

	stats := metrics.GetStats()
	requests := stats["external_api_requests"].(map[string]int64)
	apiErrors := stats["external_api_errors"].(map[string]int64)
	assert.Equal(t, int64(2), requests["tee"])
	assert.Equal(t, int64(1), apiErrors["tee"])
}

func TestLogSinkNeverFails(t *testing.T) {
	received := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received++
		assert.Equal(t, "/log", r.URL.Path)
		http.Error(w, "sink unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTEEClient(srv.URL, "secret", monitoring.NewLogger(), nil)
	sink := client.LogSink("abc123")

	// A failing sink is silent; the call simply returns.
	sink.Log(context.Background(), "scored something")
	assert.Equal(t, 1, received)

	srv.Close()
	sink.Log(context.Background(), "after shutdown")
}
