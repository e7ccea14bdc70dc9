package quality

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/primeinsights/proof-engine/internal/types"
)

// ValidationScore is the semantic-plausibility signal for one
// category. When the evaluator is unavailable, skipped, or fails on
// any sampled item, it degrades to {false, 0}.
type ValidationScore struct {
	Valid bool    `json:"is_valid"`
	Score float64 `json:"score"`
}

// Evaluator scores a single serialized record 0-100 against a rubric.
// Implementations must treat any reply that is not a strict
// single-object JSON score as an error.
type Evaluator interface {
	Score(ctx context.Context, rubric, item string) (int, error)
}

// ValidateSample draws a bounded random sample of rows, asks the
// evaluator to score each one, and averages the results. Failure on
// any sampled item aborts the whole category: there is no partial
// averaging over the items that did succeed.
func ValidateSample(ctx context.Context, evaluator Evaluator, limiter *rate.Limiter, rows []types.RawRow, category Category, thresholds *Thresholds) ValidationScore {
	if evaluator == nil || len(rows) == 0 {
		return ValidationScore{Valid: false, Score: 0.0}
	}

	sampleSize := thresholds.SampleSize
	if sampleSize > len(rows) {
		sampleSize = len(rows)
	}

	rubric := evaluationRubric(category.Label())

	total := 0
	for _, idx := range rand.Perm(len(rows))[:sampleSize] {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return ValidationScore{Valid: false, Score: 0.0}
			}
		}

		score, err := evaluator.Score(ctx, rubric, serializeRow(rows[idx]))
		if err != nil {
			return ValidationScore{Valid: false, Score: 0.0}
		}
		total += score
	}

	avg := float64(total) / float64(sampleSize) / 100

	return ValidationScore{
		Valid: avg >= float64(thresholds.ThresholdScore)/100,
		Score: avg,
	}
}

// serializeRow renders a record as "field: value" lines in a
// deterministic field order.
func serializeRow(row types.RawRow) string {
	fields := make([]string, 0, len(row))
	for field := range row {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", field, row[field]))
	}
	return strings.Join(lines, "\n")
}

// evaluationRubric builds the category-specific instruction text sent
// as the evaluator's system message.
func evaluationRubric(dataType string) string {
	return fmt.Sprintf(
		"You are an AI language model assigned to evaluate the following Amazon %s for consistency, validity, data quality, and authenticity (likelihood of being genuine and not fabricated). Carefully analyze the data, considering factors such as:\n\n"+
			"- **Data Consistency**: Are the values logically coherent (e.g., dates are in valid formats and sequences, quantities are positive integers, prices make sense)?\n"+
			"- **Data Validity**: Are all required fields present and correctly formatted? Do the field values adhere to expected patterns (e.g., Order IDs match the standard format)?\n"+
			"- **Data Quality**: Is the data complete and accurate? Are there any missing or anomalous values?\n"+
			"- **Authenticity**: Is there any indication that the data might be fabricated or manipulated (e.g., unrealistic values, obviously repeating patterns, inconsistencies, etc)?\n\n"+
			"Based on your analysis, assign an overall integer score from 0 to 100, where:\n\n"+
			"- **0** indicates the data is invalid, of poor quality, and likely fabricated.\n"+
			"- **50** indicates the data is likely genuine but of questionable quality.\n"+
			"- **100** indicates the data is highly consistent, valid, of excellent quality, and likely genuine.\n\n"+
			"**Important Instructions**:\n\n"+
			"- **Output Format**: Provide your response as a single JSON object containing only the key \"score\" and its numerical value (e.g., {\"score\": 85}).\n"+
			"- **Do Not Include**: Any additional text, explanations, or commentary. Do not wrap the JSON object in markdown or any other formatting.\n"+
			"- **Compliance**: Follow these instructions precisely to ensure accurate evaluation.\n",
		dataType,
	)
}
