package uniqueness

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/primeinsights/proof-engine/internal/adapters"
	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/quality"
	"github.com/primeinsights/proof-engine/internal/types"
)

// defaultSeed matches the seed the MinHash store was initialized with.
const defaultSeed = 1

// Checker computes the binary uniqueness signal: fingerprint the
// contribution locally, let the remote LSH index find near entries,
// and accept or reject on the configured similarity threshold.
type Checker struct {
	client    *adapters.TEEClient
	numPerm   int
	threshold float64
	logger    *monitoring.Logger
}

func NewChecker(client *adapters.TEEClient, numPerm int, threshold float64, logger *monitoring.Logger) *Checker {
	return &Checker{
		client:    client,
		numPerm:   numPerm,
		threshold: threshold,
		logger:    logger,
	}
}

// Check returns 1 when the contribution is unique enough to store, 0
// when it is empty or too close to an existing entry.
func (c *Checker) Check(ctx context.Context, inputDir, userID string) (int, error) {
	fingerprint, err := FingerprintDirectory(inputDir, c.numPerm)
	if err != nil {
		return 0, err
	}
	if fingerprint == nil {
		c.logger.Warn("no data found for uniqueness check", "user_id", userID)
		return 0, nil
	}

	serialized, err := fingerprint.Serialize()
	if err != nil {
		return 0, apperrors.NewInternalError("serializing fingerprint", err)
	}

	candidates, err := c.client.QuerySimilar(ctx, serialized)
	if err != nil {
		return 0, err
	}
	c.logger.Info("uniqueness candidates from LSH", "count", len(candidates))

	if len(candidates) == 0 {
		if _, err := c.client.SaveMinHash(ctx, userID, serialized); err != nil {
			return 0, err
		}
		return 1, nil
	}

	maxSimilarity := 0.0
	for _, candidate := range candidates {
		if candidate.Similarity > maxSimilarity {
			maxSimilarity = candidate.Similarity
		}
	}
	c.logger.Info("highest uniqueness similarity", "similarity", maxSimilarity)

	if maxSimilarity >= c.threshold {
		c.logger.Warn("contribution too similar to an existing entry", "similarity", maxSimilarity)
		return 0, nil
	}

	if _, err := c.client.SaveMinHash(ctx, userID, serialized); err != nil {
		return 0, err
	}
	return 1, nil
}

// features are the order-independent signature tokens of a
// contribution. Row identity fields (order ids, dates) are excluded so
// trivially re-exported bundles still collide.
type features struct {
	products      map[string]struct{}
	categories    map[string]struct{}
	totalAmount   float64
	totalQuantity int
}

// FingerprintDirectory builds a fingerprint over every CSV file in the
// tree. Returns nil when the tree contains no CSV files.
func FingerprintDirectory(inputDir string, numPerm int) (*MinHash, error) {
	var csvFiles []string
	err := filepath.WalkDir(inputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			csvFiles = append(csvFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("walking %s", inputDir), err)
	}
	if len(csvFiles) == 0 {
		return nil, nil
	}

	fingerprint := NewMinHash(numPerm, defaultSeed)
	for _, file := range csvFiles {
		rows, err := quality.ReadRows(file)
		if err != nil {
			return nil, err
		}
		updateFingerprint(fingerprint, extractFeatures(normalizeRows(rows)))
	}
	return fingerprint, nil
}

// normalizeRows trims and lowercases every value and drops the fields
// that vary between exports of the same underlying data.
func normalizeRows(rows []types.RawRow) []types.RawRow {
	normalized := make([]types.RawRow, 0, len(rows))
	for _, row := range rows {
		out := make(types.RawRow, len(row))
		for field, value := range row {
			switch field {
			case "Order Date", "Ship Date", "Order ID":
				continue
			}
			out[field] = strings.ToLower(strings.TrimSpace(value))
		}
		normalized = append(normalized, out)
	}
	return normalized
}

func extractFeatures(rows []types.RawRow) features {
	f := features{
		products:   make(map[string]struct{}),
		categories: make(map[string]struct{}),
	}
	for _, row := range rows {
		if product := firstNonEmpty(row["Product Name"], row["Title"]); product != "" {
			f.products[product] = struct{}{}
		}
		f.totalAmount += parseFloat(firstNonEmpty(row["Total Owed"], row["Total Amount"]))
		f.totalQuantity += parseInt(firstNonEmpty(row["Quantity"], row["Units"]))
		if category := firstNonEmpty(row["Category"], row["Product Group"]); category != "" {
			f.categories[category] = struct{}{}
		}
	}
	return f
}

func updateFingerprint(fingerprint *MinHash, f features) {
	for product := range f.products {
		fingerprint.Update([]byte(product))
	}
	for category := range f.categories {
		fingerprint.Update([]byte(category))
	}
	fingerprint.Update([]byte(fmt.Sprintf("amount:%.2f", f.totalAmount)))
	fingerprint.Update([]byte(fmt.Sprintf("quantity:%d", f.totalQuantity)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseFloat(value string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(value string) int {
	v, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(value), ",", ""))
	if err != nil {
		return 0
	}
	return v
}
