package proof

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/primeinsights/proof-engine/internal/config"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/quality"
	"github.com/primeinsights/proof-engine/internal/types"
)

func sha3Hex(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestGenerateFullRun(t *testing.T) {
	archive := []byte("the-submitted-archive")

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "decrypted_amazon_data.zip")
	require.NoError(t, os.WriteFile(zipPath, archive, 0o644))

	inputDir := filepath.Join(dir, "extracted")
	require.NoError(t, os.Mkdir(inputDir, 0o755))

	recent := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	require.NoError(t, os.WriteFile(
		filepath.Join(inputDir, "Retail.CartItems.1.csv"),
		[]byte("Quantity,ASIN,DateAddedToCart,CartList\n1,B001,"+recent+",active\n2,B002,"+recent+",active\n"),
		0o644))

	saved := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/proof/"):
			json.NewEncoder(w).Encode(map[string]string{"data_hash": sha3Hex(archive)})
		case r.URL.Path == "/minhash/query":
			json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
		case r.URL.Path == "/minhash":
			saved = true
			json.NewEncoder(w).Encode(map[string]int{"id": 1})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{
		Port:                "8080",
		Network:             quality.NetworkSatori,
		DlpID:               21,
		TEEEndpoint:         srv.URL,
		TEEAPIKey:           "secret",
		NumPerm:             128,
		UniquenessThreshold: 0.9,
		ProofTimeout:        time.Minute,
	}

	generator, err := NewGenerator(cfg, monitoring.NewLogger(), monitoring.NewMetrics())
	require.NoError(t, err)

	link := "https://example.com/bundle"
	response, err := generator.Generate(context.Background(), types.ProofRequest{
		InputDir:         inputDir,
		InputZipFilepath: zipPath,
		ProofKey:         sha3Hex([]byte(link)),
		SubmissionLink:   link,
		UserID:           "u-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 21, response.DlpID)
	assert.Equal(t, 1, response.Authenticity)
	assert.Equal(t, 1, response.Ownership, "ownership mirrors authenticity")
	assert.Equal(t, 1, response.Uniqueness)
	assert.True(t, saved)

	require.Len(t, response.Metadata, 32)
	assert.NotEqual(t, strings.Repeat("0", 32), response.Metadata)
	require.Contains(t, response.Quality, "Retail.CartItems.1.csv")
	assert.Greater(t, response.Quality["Retail.CartItems.1.csv"].MetadataScore, 0.0)
}

func TestGenerateFailsOnBadProofKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no remote call expected when the link hash mismatches")
	}))
	defer srv.Close()

	cfg := &config.Config{
		Network:             quality.NetworkSatori,
		DlpID:               21,
		TEEEndpoint:         srv.URL,
		TEEAPIKey:           "secret",
		NumPerm:             128,
		UniquenessThreshold: 0.9,
		ProofTimeout:        time.Minute,
	}

	generator, err := NewGenerator(cfg, monitoring.NewLogger(), monitoring.NewMetrics())
	require.NoError(t, err)

	_, err = generator.Generate(context.Background(), types.ProofRequest{
		InputDir:         t.TempDir(),
		InputZipFilepath: "missing.zip",
		ProofKey:         "not-the-link-hash",
		SubmissionLink:   "https://example.com/bundle",
		UserID:           "u-1",
	})
	assert.Error(t, err)
}
