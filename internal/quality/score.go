package quality

import (
	"fmt"
	"math"
	"time"
)

// ComponentScore is the metadata quality score for one category.
// Valid is true only when every hard floor is met and the combined
// score clears the profile threshold.
type ComponentScore struct {
	Valid   bool     `json:"is_valid"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// logScore normalizes a value against its minimum on a logarithmic
// curve: scaling * log1p(value/min) / log1p(10), clamped to [0,1].
// Returns 0 when value or min is non-positive.
func logScore(value, min, scaling float64) float64 {
	if value <= 0 || min <= 0 {
		return 0
	}

	score := math.Log1p(value/min) / math.Log1p(10)

	return clamp01(score * scaling)
}

// ScoreMetadata combines a category's metadata with the threshold
// profile into its component score.
func ScoreMetadata(metadata *Metadata, thresholds *Thresholds) ComponentScore {
	return registry[metadata.Category].score(metadata, thresholds)
}

func scoreCartItems(md *Metadata, th *Thresholds) ComponentScore {
	numItemsScore := logScore(float64(md.NumRecords), float64(th.MinItems), th.ScoreScaling)
	uniqueProductsScore := logScore(float64(md.UniqueProducts), float64(th.MinUniqueProducts), th.ScoreScaling)

	dateRangeDays := md.DateRange.Days()
	dateRangeScore := 0.0
	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeScore = logScore(float64(dateRangeDays), float64(th.MinDateRangeDays), th.ScoreScaling)
	}

	activeRatio := 0.0
	if md.NumRecords > 0 {
		activeRatio = float64(md.Breakdown("cart_lists")["active"]) / float64(md.NumRecords)
	}

	score := numItemsScore*0.3 +
		uniqueProductsScore*0.3 +
		dateRangeScore*0.2 +
		activeRatio*0.2

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinItems &&
		md.UniqueProducts >= th.MinUniqueProducts &&
		dateRangeDays >= th.MinDateRangeDays &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}

func scoreDigitalItems(md *Metadata, th *Thresholds) ComponentScore {
	numItemsScore := logScore(float64(md.NumRecords), float64(th.MinDigitalItems), th.ScoreScaling)
	uniqueProductsScore := logScore(float64(md.UniqueProducts), float64(th.MinUniqueProducts), th.ScoreScaling)
	totalAmountScore := logScore(md.TotalAmount, th.MinTotalAmount, th.ScoreScaling)

	score := numItemsScore*0.3 +
		uniqueProductsScore*0.3 +
		totalAmountScore*0.4

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinDigitalItems &&
		md.UniqueProducts >= th.MinUniqueProducts &&
		md.TotalAmount >= th.MinTotalAmount &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}

func scoreOrderHistory(md *Metadata, th *Thresholds) ComponentScore {
	dateRangeDays := 0
	purchasesPerWeek := 0.0

	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeDays = md.DateRange.Days()

		weeks := 1.0
		if dateRangeDays > 0 {
			weeks = float64(dateRangeDays) / 7
		}
		purchasesPerWeek = float64(md.NumRecords) / weeks
	}

	// Global hard floors: below either, no partial credit.
	if dateRangeDays < th.MinDataSpanDays || purchasesPerWeek < th.MinPurchasesPerWeek {
		reasons := make([]string, 0, 2)
		if dateRangeDays < th.MinDataSpanDays {
			reasons = append(reasons, fmt.Sprintf("Date range (%d days) below minimum (%d days)", dateRangeDays, th.MinDataSpanDays))
		}
		if purchasesPerWeek < th.MinPurchasesPerWeek {
			reasons = append(reasons, fmt.Sprintf("Purchases per week (%.1f) below minimum (%g)", purchasesPerWeek, th.MinPurchasesPerWeek))
		}
		return ComponentScore{Valid: false, Score: 0.0, Reasons: reasons}
	}

	numOrdersScore := logScore(float64(md.NumRecords), float64(th.MinOrders), th.ScoreScaling)
	totalAmountScore := logScore(md.TotalAmount, th.MinTotalAmount, th.ScoreScaling)
	uniqueProductsScore := logScore(float64(md.UniqueProducts), float64(th.MinUniqueProducts), th.ScoreScaling)
	websitesScore := logScore(float64(len(md.Breakdown("websites"))), float64(th.MinWebsites), th.ScoreScaling)
	paymentMethodsScore := logScore(float64(len(md.Breakdown("payment_methods"))), float64(th.MinPaymentMethods), th.ScoreScaling)

	dateRangeScore := 0.0
	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeScore = logScore(float64(dateRangeDays), float64(th.MinDateRangeDays), th.ScoreScaling)
	}

	completionRate := 0.0
	if md.NumRecords > 0 {
		completionRate = float64(md.Breakdown("order_statuses")["Closed"]) / float64(md.NumRecords)
	}
	giftOrdersRate := math.Min(md.GiftOrdersPct/100, 1.0)

	score := numOrdersScore*0.2 +
		totalAmountScore*0.2 +
		uniqueProductsScore*0.2 +
		dateRangeScore*0.1 +
		websitesScore*0.1 +
		paymentMethodsScore*0.1 +
		completionRate*0.05 +
		giftOrdersRate*0.05

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinOrders &&
		md.TotalAmount >= th.MinTotalAmount &&
		md.UniqueProducts >= th.MinUniqueProducts &&
		dateRangeDays >= th.MinDateRangeDays &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}

func scoreAudiblePurchases(md *Metadata, th *Thresholds) ComponentScore {
	numPurchasesScore := logScore(float64(md.NumRecords), float64(th.MinPurchases), th.ScoreScaling)
	totalAmountScore := logScore(md.TotalAmount, th.MinTotalAmount, th.ScoreScaling)
	uniqueAudiobooksScore := logScore(float64(md.UniqueProducts), float64(th.MinUniqueAudiobooks), th.ScoreScaling)
	purchaseTypesScore := logScore(float64(len(md.Breakdown("purchase_types"))), 2, th.ScoreScaling)

	dateRangeDays := md.DateRange.Days()
	dateRangeScore := 0.0
	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeScore = logScore(float64(dateRangeDays), float64(th.MinDateRangeDays), th.ScoreScaling)
	}

	score := numPurchasesScore*0.25 +
		totalAmountScore*0.30 +
		uniqueAudiobooksScore*0.25 +
		dateRangeScore*0.10 +
		purchaseTypesScore*0.10

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinPurchases &&
		md.TotalAmount >= th.MinTotalAmount &&
		md.UniqueProducts >= th.MinUniqueAudiobooks &&
		dateRangeDays >= th.MinDateRangeDays &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}

func scoreAudibleLibrary(md *Metadata, th *Thresholds) ComponentScore {
	numItemsScore := logScore(float64(md.NumRecords), float64(th.MinLibraryItems), th.ScoreScaling)
	uniqueAudiobooksScore := logScore(float64(md.UniqueProducts), float64(th.MinUniqueAudiobooks), th.ScoreScaling)

	dateRangeDays := md.DateRange.Days()
	dateRangeScore := 0.0
	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeScore = logScore(float64(dateRangeDays), float64(th.MinDateRangeDays), th.ScoreScaling)
	}

	downloadedRatio := 0.0
	if md.NumRecords > 0 {
		downloadedRatio = float64(md.Breakdown("downloaded")["Yes"]) / float64(md.NumRecords)
	}

	score := numItemsScore*0.40 +
		uniqueAudiobooksScore*0.30 +
		dateRangeScore*0.20 +
		downloadedRatio*0.10

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinLibraryItems &&
		md.UniqueProducts >= th.MinUniqueAudiobooks &&
		dateRangeDays >= th.MinDateRangeDays &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}

func scoreAudibleBillings(md *Metadata, th *Thresholds) ComponentScore {
	numBillingsScore := logScore(float64(md.NumRecords), float64(th.MinBillings), th.ScoreScaling)
	totalAmountScore := logScore(md.TotalAmount, th.MinTotalAmount, th.ScoreScaling)

	dateRangeDays := md.DateRange.Days()
	dateRangeScore := 0.0
	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeScore = logScore(float64(dateRangeDays), float64(th.MinDateRangeDays), th.ScoreScaling)
	}

	score := numBillingsScore*0.40 +
		totalAmountScore*0.40 +
		dateRangeScore*0.20

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinBillings &&
		md.TotalAmount >= th.MinTotalAmount &&
		dateRangeDays >= th.MinDateRangeDays &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}

func scorePrimeVideoViewing(md *Metadata, th *Thresholds) ComponentScore {
	sessionsScore := logScore(float64(md.NumRecords), float64(th.MinViewingSessions), th.ScoreScaling)
	hoursScore := logScore(md.TotalHours, th.MinTotalHours, th.ScoreScaling)
	titlesScore := logScore(float64(md.UniqueProducts), float64(th.MinUniqueTitles), th.ScoreScaling)
	devicesScore := logScore(float64(len(md.Breakdown("devices_used"))), 2, th.ScoreScaling)

	dateRangeDays := md.DateRange.Days()
	dateRangeScore := 0.0
	if md.DateRange.Earliest != nil && md.DateRange.Latest != nil {
		dateRangeScore = logScore(float64(dateRangeDays), float64(th.MinDateRangeDays), th.ScoreScaling)
	}

	score := sessionsScore*0.25 +
		hoursScore*0.25 +
		titlesScore*0.25 +
		dateRangeScore*0.15 +
		devicesScore*0.10

	weight, _ := TimeWeight(md.DateRange, time.Now())
	score *= weight

	valid := md.NumRecords >= th.MinViewingSessions &&
		md.TotalHours >= th.MinTotalHours &&
		md.UniqueProducts >= th.MinUniqueTitles &&
		dateRangeDays >= th.MinDateRangeDays &&
		score >= float64(th.ThresholdScore)/100

	return ComponentScore{Valid: valid, Score: score, Reasons: []string{}}
}
