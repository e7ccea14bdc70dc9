package quality

import "github.com/primeinsights/proof-engine/internal/types"

// CategoryResult pairs the two signals computed for one category.
type CategoryResult struct {
	Metadata   ComponentScore  `json:"metadata_score"`
	Validation ValidationScore `json:"validation_score"`
}

// OrderedPairs flattens per-category results into the fixed ordinal
// order the codec encodes. Categories absent from the input are
// substituted with (0, 0). Only the raw scores are carried forward;
// the validity flags are informational and not consulted here.
func OrderedPairs(results map[Category]CategoryResult) []types.ScorePair {
	pairs := make([]types.ScorePair, NumCategories)
	for _, category := range Categories() {
		if result, ok := results[category]; ok {
			pairs[category] = types.ScorePair{
				MetadataScore:   result.Metadata.Score,
				ValidationScore: result.Validation.Score,
			}
		}
	}
	return pairs
}
