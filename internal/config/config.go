package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/quality"
)

// Config holds everything the engine reads from the environment. All
// values are fixed at startup; nothing is re-read during a run.
type Config struct {
	Port    string
	Network quality.Network
	DlpID   int

	// Evaluator credential. Empty disables semantic validation.
	OpenAIAPIKey string

	// Attestation service.
	TEEEndpoint      string
	TEEAPIKey        string
	RemoteLogEnabled bool

	// Uniqueness fingerprinting.
	NumPerm             int
	UniquenessThreshold float64

	// Upper bound for one whole proof run.
	ProofTimeout time.Duration
}

// Load reads the environment (after best-effort .env loading) into a
// validated Config. Missing required keys fail here, not mid-run.
func Load() (*Config, error) {
	_ = godotenv.Load()

	network, err := quality.ParseNetwork(envOr("NETWORK", "satori"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                envOr("PORT", "8080"),
		Network:             network,
		DlpID:               envInt("DLP_ID", 0),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		TEEEndpoint:         os.Getenv("TEE_API_ENDPOINT"),
		TEEAPIKey:           os.Getenv("PRIMEINSIGHTS_TEE_API_KEY"),
		RemoteLogEnabled:    envBool("REMOTE_LOG_ENABLED", false),
		NumPerm:             envInt("NUM_PERM", 128),
		UniquenessThreshold: envFloat("UNIQUENESS_THRESHOLD", 0.9),
		ProofTimeout:        envDuration("PROOF_TIMEOUT", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on unusable configuration.
func (c *Config) Validate() error {
	if c.TEEEndpoint == "" {
		return apperrors.NewConfigError("TEE_API_ENDPOINT is required", nil)
	}
	if c.TEEAPIKey == "" {
		return apperrors.NewConfigError("PRIMEINSIGHTS_TEE_API_KEY is required", nil)
	}
	if c.DlpID <= 0 {
		return apperrors.NewConfigError("DLP_ID must be a positive integer", nil)
	}
	if c.NumPerm <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("NUM_PERM must be positive, got %d", c.NumPerm), nil)
	}
	if c.UniquenessThreshold <= 0 || c.UniquenessThreshold > 1 {
		return apperrors.NewConfigError(
			fmt.Sprintf("UNIQUENESS_THRESHOLD must be in (0,1], got %g", c.UniquenessThreshold), nil)
	}
	if c.ProofTimeout <= 0 {
		return apperrors.NewConfigError("PROOF_TIMEOUT must be positive", nil)
	}
	return nil
}

// Thresholds resolves the scoring profile for the configured network.
func (c *Config) Thresholds() (*quality.Thresholds, error) {
	return quality.ThresholdsFor(c.Network)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
