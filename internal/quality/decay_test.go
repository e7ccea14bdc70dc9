package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeWeight(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	daysAgo := func(days int) *time.Time {
		d := now.AddDate(0, 0, -days)
		return &d
	}

	tests := []struct {
		name           string
		dateRange      DateRange
		expectedWeight float64
		expectedAge    int
		delta          float64
	}{
		{"no latest date", DateRange{}, 0, 0, 0},
		{"today", DateRange{Latest: daysAgo(0)}, 1.0, 0, 1e-9},
		{"at horizon", DateRange{Latest: daysAgo(4 * 365)}, 0.0, 4 * 365, 1e-9},
		{"beyond horizon", DateRange{Latest: daysAgo(6 * 365)}, 0.0, 6 * 365, 0},
		{"future date", DateRange{Latest: daysAgo(-10)}, 0.0, -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weight, age := TimeWeight(tt.dateRange, now)
			assert.InDelta(t, tt.expectedWeight, weight, tt.delta)
			assert.Equal(t, tt.expectedAge, age)
		})
	}
}

func TestTimeWeightMonotonicDecay(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	prev := 1.1
	for _, days := range []int{0, 30, 180, 365, 730, 1095, 1460} {
		latest := now.AddDate(0, 0, -days)
		weight, _ := TimeWeight(DateRange{Latest: &latest}, now)
		assert.Less(t, weight, prev, "weight must strictly decrease with age (age %d)", days)
		assert.GreaterOrEqual(t, weight, 0.0)
		assert.LessOrEqual(t, weight, 1.0)
		prev = weight
	}
}
