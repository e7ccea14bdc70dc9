package quality

import (
	"math"
	"time"
)

// maxAgeDays is the recency horizon: contributions whose latest
// activity is older than this carry zero weight.
const maxAgeDays = 4 * 365

// TimeWeight maps the age of the latest activity in a date range to a
// [0,1] decay multiplier:
//
//	weight = 1 - log1p(age/365) / log1p(maxAge/365)
//
// A missing latest timestamp weighs 0, as does a future one; the
// returned age is in whole days and may be negative for future dates.
func TimeWeight(dateRange DateRange, now time.Time) (float64, int) {
	if dateRange.Latest == nil {
		return 0, 0
	}

	ageDays := int(now.Sub(*dateRange.Latest).Hours() / 24)
	if ageDays < 0 {
		return 0, ageDays
	}

	weight := 1 - math.Log1p(float64(ageDays)/365)/math.Log1p(float64(maxAgeDays)/365)

	return clamp01(weight), ageDays
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
