package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeinsights/proof-engine/internal/quality"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TEE_API_ENDPOINT", "https://tee.example.com")
	t.Setenv("PRIMEINSIGHTS_TEE_API_KEY", "secret")
	t.Setenv("DLP_ID", "21")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NETWORK", "")
	t.Setenv("PORT", "")
	t.Setenv("NUM_PERM", "")
	t.Setenv("UNIQUENESS_THRESHOLD", "")
	t.Setenv("PROOF_TIMEOUT", "")
	t.Setenv("REMOTE_LOG_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, quality.NetworkSatori, cfg.Network)
	assert.Equal(t, 21, cfg.DlpID)
	assert.Equal(t, 128, cfg.NumPerm)
	assert.Equal(t, 0.9, cfg.UniquenessThreshold)
	assert.Equal(t, 10*time.Minute, cfg.ProofTimeout)
	assert.False(t, cfg.RemoteLogEnabled)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NETWORK", "mainnet")
	t.Setenv("NUM_PERM", "256")
	t.Setenv("UNIQUENESS_THRESHOLD", "0.8")
	t.Setenv("PROOF_TIMEOUT", "2m")
	t.Setenv("REMOTE_LOG_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, quality.NetworkMainnet, cfg.Network)
	assert.Equal(t, 256, cfg.NumPerm)
	assert.Equal(t, 0.8, cfg.UniquenessThreshold)
	assert.Equal(t, 2*time.Minute, cfg.ProofTimeout)
	assert.True(t, cfg.RemoteLogEnabled)
}

func TestLoadFailsFast(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing endpoint", map[string]string{"TEE_API_ENDPOINT": ""}},
		{"missing api key", map[string]string{"PRIMEINSIGHTS_TEE_API_KEY": ""}},
		{"missing dlp id", map[string]string{"DLP_ID": ""}},
		{"unknown network", map[string]string{"NETWORK": "devnet"}},
		{"threshold out of range", map[string]string{"UNIQUENESS_THRESHOLD": "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestThresholdsResolution(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NETWORK", "mainnet")

	cfg, err := Load()
	require.NoError(t, err)

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", th.EvaluatorModel)
}
