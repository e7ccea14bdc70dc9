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
)

const defaultEvaluatorBaseURL = "https://api.openai.com/v1"

// EvaluatorAdapter calls an OpenAI-compatible chat-completions endpoint
// to score a single record against a rubric. The model is instructed
// to reply with a bare JSON object {"score": N}; anything else is
// treated as an evaluator failure, not a transport failure.
type EvaluatorAdapter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	metrics *monitoring.Metrics
}

// NewEvaluatorAdapter builds an adapter for the given model. baseURL
// may be empty, in which case the OpenAI endpoint is used.
func NewEvaluatorAdapter(baseURL, apiKey, model string, metrics *monitoring.Metrics) *EvaluatorAdapter {
	if baseURL == "" {
		baseURL = defaultEvaluatorBaseURL
	}
	return &EvaluatorAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		metrics: metrics,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Score sends one rubric+item pair and parses the strict score reply.
func (a *EvaluatorAdapter) Score(ctx context.Context, rubric, item string) (int, error) {
	score, err := a.score(ctx, rubric, item)
	if a.metrics != nil {
		a.metrics.RecordExternalAPICall("evaluator", err == nil)
	}
	return score, err
}

func (a *EvaluatorAdapter) score(ctx context.Context, rubric, item string) (int, error) {
	payload, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: rubric},
			{Role: "user", Content: item},
		},
	})
	if err != nil {
		return 0, apperrors.NewInternalError("marshaling evaluator request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, apperrors.NewInternalError("building evaluator request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, apperrors.NewNetworkError("calling evaluator", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, apperrors.NewEvaluatorError(
			fmt.Sprintf("evaluator returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return 0, apperrors.NewEvaluatorError("decoding evaluator response", err)
	}
	if len(reply.Choices) == 0 {
		return 0, apperrors.NewEvaluatorError("evaluator returned no choices", nil)
	}

	return parseScoreReply(reply.Choices[0].Message.Content)
}

// parseScoreReply enforces the reply contract: a single JSON object
// with exactly one key, "score", holding an integer 0-100.
func parseScoreReply(content string) (int, error) {
	var parsed struct {
		Score int `json:"score"`
	}
	decoder := json.NewDecoder(strings.NewReader(strings.TrimSpace(content)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&parsed); err != nil {
		return 0, apperrors.NewEvaluatorError(
			fmt.Sprintf("evaluator reply is not a score object: %q", content), err)
	}
	if decoder.More() {
		return 0, apperrors.NewEvaluatorError(
			fmt.Sprintf("evaluator reply has trailing content: %q", content), nil)
	}
	if parsed.Score < 0 || parsed.Score > 100 {
		return 0, apperrors.NewEvaluatorError(
			fmt.Sprintf("evaluator score %d out of range", parsed.Score), nil)
	}
	return parsed.Score, nil
}
