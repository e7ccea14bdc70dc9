package quality

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeinsights/proof-engine/internal/monitoring"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(satoriThresholds(t), nil, monitoring.NewLogger())
}

func TestRunEmptyDirectory(t *testing.T) {
	// No recognized files: every category substitutes (0, 0) and the
	// record is all zeros.
	result, err := newTestEngine(t).Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("0", 32), result.Packed)
	assert.Empty(t, result.Scores)
}

func TestRunRecognizedFile(t *testing.T) {
	dir := t.TempDir()

	recent := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	older := time.Now().AddDate(0, -8, 0).Format("2006-01-02")

	writeFile(t, dir, "Retail.CartItems.1.csv",
		"Quantity,ASIN,DateAddedToCart,CartList\n"+
			"1,B001,"+older+",active\n"+
			"2,B002,"+recent+",active\n"+
			"1,B003,"+recent+",saved-items\n")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "Unrecognized.csv", "a,b\n1,2\n")

	result, err := newTestEngine(t).Run(context.Background(), dir)
	require.NoError(t, err)

	require.Contains(t, result.Scores, "Retail.CartItems.1.csv")
	assert.Len(t, result.Scores, 1)
	assert.Greater(t, result.Scores["Retail.CartItems.1.csv"].MetadataScore, 0.0)
	assert.Zero(t, result.Scores["Retail.CartItems.1.csv"].ValidationScore)

	require.Len(t, result.Packed, 32)
	assert.NotEqual(t, "00", result.Packed[:2], "cart items occupy the first metadata byte")
	assert.Equal(t, strings.Repeat("0", 16), result.Packed[16:], "no semantic signal without an evaluator")
}

func TestRunContinuesWhenEvaluatorFails(t *testing.T) {
	// A non-conforming evaluator reply zeroes that category's semantic
	// signal; the pass itself still completes and packs a record.
	dir := t.TempDir()

	older := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	recent := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	writeFile(t, dir, "Audible.Library.csv",
		"ASIN,Date Added,Downloaded\nA1,"+older+",Yes\nA2,"+recent+",Yes\n")

	evaluator := &stubEvaluator{err: errors.New("reply is not a score object")}
	engine := NewEngine(satoriThresholds(t), evaluator, monitoring.NewLogger())

	result, err := engine.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Greater(t, evaluator.calls, 0, "a valid metadata score triggers validation")

	library := result.Results[CategoryAudibleLibrary]
	assert.True(t, library.Metadata.Valid)
	assert.False(t, library.Validation.Valid)
	assert.Zero(t, library.Validation.Score)

	require.Len(t, result.Packed, 32)
	assert.NotEqual(t, "00", result.Packed[10:12], "metadata byte is still encoded")
	assert.Equal(t, strings.Repeat("0", 16), result.Packed[16:], "validation half stays zero")
}

func TestRunFindsFilesInSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Retail.OrderHistory", "inner")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	recent := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	writeFile(t, sub, "Audible.Library.csv",
		"ASIN,Date Added,Downloaded\nA1,"+recent+",Yes\nA2,"+recent+",No\n")

	result, err := newTestEngine(t).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, result.Scores, "Audible.Library.csv")
}

func TestRunMalformedDateAbortsPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Audible.Library.csv", "ASIN,Date Added\nA1,13/01/2024\n")

	_, err := newTestEngine(t).Run(context.Background(), dir)
	assert.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Audible.Library.csv", "ASIN,Date Added\nA1,2024-01-13\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t).Run(ctx, dir)
	assert.Error(t, err)
}

func TestReadRowsBOMAndRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv",
		"\uFEFFName,Value,Extra\nfirst,1\nsecond,2,x,overflow\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "first", rows[0]["Name"], "BOM must not corrupt the first header")
	_, hasExtra := rows[0]["Extra"]
	assert.False(t, hasExtra, "short rows keep only the fields they have")
	assert.Equal(t, "x", rows[1]["Extra"])
}

func TestReadRowsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
