package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/resilience"
)

// TEEClient talks to the attestation service: reference proof hashes,
// the MinHash store behind the LSH index, and the remote log sink.
// All requests carry the X-API-Key header.
type TEEClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

func NewTEEClient(baseURL, apiKey string, logger *monitoring.Logger, metrics *monitoring.Metrics) *TEEClient {
	return &TEEClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		metrics: metrics,
	}
}

// observe feeds one finished call into the run metrics and the
// external API log. statusCode is 0 when no response came back.
func (c *TEEClient) observe(method, endpoint string, statusCode int, start time.Time, success bool) {
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall("tee", success)
	}
	if c.logger != nil {
		c.logger.ExternalAPILogger("tee", method, endpoint, statusCode, time.Since(start), success)
	}
}

// GetProofHash fetches the reference data hash registered for a proof
// key.
func (c *TEEClient) GetProofHash(ctx context.Context, proofKey string) (string, error) {
	start := time.Now()
	resp, err := resilience.RetryHTTP(ctx, resilience.DefaultRetryConfig(), func() (*http.Response, error) {
		req, err := c.newRequest(ctx, http.MethodGet, "/proof/"+proofKey, nil)
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	})
	if err != nil {
		c.observe(http.MethodGet, "/proof", 0, start, false)
		return "", apperrors.NewNetworkError("fetching reference proof hash", err)
	}
	defer resp.Body.Close()

	statusErr := checkStatus(resp, "fetching reference proof hash")
	c.observe(http.MethodGet, "/proof", resp.StatusCode, start, statusErr == nil)
	if statusErr != nil {
		return "", statusErr
	}

	var parsed struct {
		DataHash string `json:"data_hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewNetworkError("decoding proof hash response", err)
	}
	if parsed.DataHash == "" {
		return "", apperrors.NewNetworkError("proof hash response has no data_hash field", nil)
	}
	return parsed.DataHash, nil
}

// SimilarEntry is one LSH candidate returned by the MinHash query.
type SimilarEntry struct {
	ID         int     `json:"id"`
	UserID     string  `json:"user_id"`
	MinHash    string  `json:"minhash"`
	Similarity float64 `json:"similarity"`
}

// QuerySimilar submits a serialized fingerprint and returns the
// candidate entries the LSH index considers close to it.
func (c *TEEClient) QuerySimilar(ctx context.Context, minhashData string) ([]SimilarEntry, error) {
	body, err := json.Marshal(map[string]string{
		"user_id":      "",
		"minhash_data": minhashData,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("marshaling minhash query", err)
	}

	start := time.Now()
	resp, err := resilience.RetryHTTP(ctx, resilience.DefaultRetryConfig(), func() (*http.Response, error) {
		req, err := c.newRequest(ctx, http.MethodPost, "/minhash/query", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	})
	if err != nil {
		c.observe(http.MethodPost, "/minhash/query", 0, start, false)
		return nil, apperrors.NewNetworkError("querying similar minhashes", err)
	}
	defer resp.Body.Close()

	statusErr := checkStatus(resp, "querying similar minhashes")
	c.observe(http.MethodPost, "/minhash/query", resp.StatusCode, start, statusErr == nil)
	if statusErr != nil {
		return nil, statusErr
	}

	var parsed struct {
		Candidates []SimilarEntry `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewNetworkError("decoding minhash query response", err)
	}
	return parsed.Candidates, nil
}

// SaveMinHash registers a fingerprint for a user and returns the
// stored entry's id.
func (c *TEEClient) SaveMinHash(ctx context.Context, userID, minhashData string) (int, error) {
	body, err := json.Marshal(map[string]string{
		"user_id":      userID,
		"minhash_data": minhashData,
	})
	if err != nil {
		return 0, apperrors.NewInternalError("marshaling minhash save", err)
	}

	start := time.Now()
	resp, err := resilience.RetryHTTP(ctx, resilience.DefaultRetryConfig(), func() (*http.Response, error) {
		req, err := c.newRequest(ctx, http.MethodPost, "/minhash", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	})
	if err != nil {
		c.observe(http.MethodPost, "/minhash", 0, start, false)
		return 0, apperrors.NewNetworkError("saving minhash", err)
	}
	defer resp.Body.Close()

	statusErr := checkStatus(resp, "saving minhash")
	c.observe(http.MethodPost, "/minhash", resp.StatusCode, start, statusErr == nil)
	if statusErr != nil {
		return 0, statusErr
	}

	var parsed struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, apperrors.NewNetworkError("decoding minhash save response", err)
	}
	return parsed.ID, nil
}

// RemoteLogSink forwards log lines for one proof run to the
// attestation service. Best effort only.
type RemoteLogSink struct {
	client   *TEEClient
	proofKey string
}

func (c *TEEClient) LogSink(proofKey string) *RemoteLogSink {
	return &RemoteLogSink{client: c, proofKey: proofKey}
}

// Log posts one line. Failures are logged locally and swallowed; the
// sink must never fail the run.
func (s *RemoteLogSink) Log(ctx context.Context, content string) {
	body, err := json.Marshal(map[string]string{
		"proof_key":   s.proofKey,
		"log_content": content,
	})
	if err != nil {
		return
	}

	req, err := s.client.newRequest(ctx, http.MethodPost, "/log", bytes.NewReader(body))
	if err != nil {
		return
	}

	start := time.Now()
	resp, err := s.client.client.Do(req)
	if err != nil {
		s.client.observe(http.MethodPost, "/log", 0, start, false)
		if s.client.logger != nil {
			s.client.logger.Warn("remote log delivery failed", "error", err)
		}
		return
	}
	defer resp.Body.Close()
	s.client.observe(http.MethodPost, "/log", resp.StatusCode, start, resp.StatusCode < 300)
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
}

// checkStatus consumes an error response body and turns a non-2xx
// reply into a network error.
func checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return apperrors.NewNetworkError(
		fmt.Sprintf("%s: status %d: %s", operation, resp.StatusCode, string(body)), nil)
}

func (c *TEEClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
