package quality

import (
	"fmt"

	"github.com/primeinsights/proof-engine/internal/errors"
)

// Network selects a threshold profile. Profiles are immutable and
// fully populated; a missing key is a startup failure, never a silent
// default.
type Network string

const (
	NetworkSatori  Network = "satori"
	NetworkMainnet Network = "mainnet"
)

// ParseNetwork validates a network selector string.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkSatori, NetworkMainnet:
		return Network(s), nil
	default:
		return "", errors.NewConfigError(fmt.Sprintf("unknown network %q", s), nil)
	}
}

// Thresholds is one environment's complete scoring profile.
type Thresholds struct {
	// Core thresholds
	MinOrders         int
	MinTotalAmount    float64
	MinUniqueProducts int
	ThresholdScore    int // 0-100 scale; score passes at ThresholdScore/100
	SampleSize        int
	EvaluatorModel    string

	// Global hard floors for retail order history
	MinDataSpanDays     int
	MinPurchasesPerWeek float64

	// File-specific thresholds
	MinItems           int
	MinDigitalItems    int
	MinLibraryItems    int
	MinUniqueAudiobooks int
	MinPurchases       int
	MinBillings        int
	MinViewingSessions int
	MinTotalHours      float64
	MinUniqueTitles    int
	MinDateRangeDays   int
	MinWebsites        int
	MinPaymentMethods  int

	// ScoreScaling stretches the normalized log sub-scores before
	// clamping back to [0,1].
	ScoreScaling float64
}

var profiles = map[Network]Thresholds{
	NetworkSatori: {
		MinOrders:         1,
		MinTotalAmount:    5,
		MinUniqueProducts: 1,
		ThresholdScore:    10,
		SampleSize:        3,
		EvaluatorModel:    "gpt-4o-mini",

		MinDataSpanDays:     5 * 365,
		MinPurchasesPerWeek: 3,

		MinItems:            1,
		MinDigitalItems:     1,
		MinLibraryItems:     1,
		MinUniqueAudiobooks: 1,
		MinPurchases:        1,
		MinBillings:         1,
		MinViewingSessions:  1,
		MinTotalHours:       0.5,
		MinUniqueTitles:     1,
		MinDateRangeDays:    1,
		MinWebsites:         1,
		MinPaymentMethods:   1,

		ScoreScaling: 1.2,
	},
	NetworkMainnet: {
		MinOrders:         2,
		MinTotalAmount:    20,
		MinUniqueProducts: 2,
		ThresholdScore:    15,
		SampleSize:        30,
		EvaluatorModel:    "gpt-4o",

		MinDataSpanDays:     5 * 365,
		MinPurchasesPerWeek: 3,

		MinItems:            2,
		MinDigitalItems:     2,
		MinLibraryItems:     2,
		MinUniqueAudiobooks: 2,
		MinPurchases:        2,
		MinBillings:         1,
		MinViewingSessions:  2,
		MinTotalHours:       1,
		MinUniqueTitles:     2,
		MinDateRangeDays:    7,
		MinWebsites:         1,
		MinPaymentMethods:   1,

		ScoreScaling: 2.5,
	},
}

// ThresholdsFor returns the validated profile for a network.
func ThresholdsFor(network Network) (*Thresholds, error) {
	profile, ok := profiles[network]
	if !ok {
		return nil, errors.NewConfigError(fmt.Sprintf("no threshold profile for network %q", network), nil)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Validate fails fast on any unset required key.
func (t *Thresholds) Validate() error {
	required := map[string]bool{
		"MIN_ORDERS":             t.MinOrders > 0,
		"MIN_TOTAL_AMOUNT":       t.MinTotalAmount > 0,
		"MIN_UNIQUE_PRODUCTS":    t.MinUniqueProducts > 0,
		"THRESHOLD_SCORE":        t.ThresholdScore > 0,
		"SAMPLE_SIZE":            t.SampleSize > 0,
		"EVALUATOR_MODEL":        t.EvaluatorModel != "",
		"MIN_DATA_TIME":          t.MinDataSpanDays > 0,
		"MIN_PURCHASES_PER_WEEK": t.MinPurchasesPerWeek > 0,
		"MIN_ITEMS":              t.MinItems > 0,
		"MIN_DIGITAL_ITEMS":      t.MinDigitalItems > 0,
		"MIN_LIBRARY_ITEMS":      t.MinLibraryItems > 0,
		"MIN_UNIQUE_AUDIOBOOKS":  t.MinUniqueAudiobooks > 0,
		"MIN_PURCHASES":          t.MinPurchases > 0,
		"MIN_BILLINGS":           t.MinBillings > 0,
		"MIN_VIEWING_SESSIONS":   t.MinViewingSessions > 0,
		"MIN_TOTAL_HOURS":        t.MinTotalHours > 0,
		"MIN_UNIQUE_TITLES":      t.MinUniqueTitles > 0,
		"MIN_DATE_RANGE_DAYS":    t.MinDateRangeDays > 0,
		"MIN_WEBSITES":           t.MinWebsites > 0,
		"MIN_PAYMENT_METHODS":    t.MinPaymentMethods > 0,
		"SCORE_SCALING":          t.ScoreScaling > 0,
	}

	for key, ok := range required {
		if !ok {
			return errors.NewConfigError(fmt.Sprintf("threshold key %s is missing or zero", key), nil)
		}
	}
	return nil
}
