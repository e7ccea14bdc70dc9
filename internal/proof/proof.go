package proof

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/primeinsights/proof-engine/internal/adapters"
	"github.com/primeinsights/proof-engine/internal/authenticity"
	"github.com/primeinsights/proof-engine/internal/config"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/quality"
	"github.com/primeinsights/proof-engine/internal/types"
	"github.com/primeinsights/proof-engine/internal/uniqueness"
)

// Generator runs the three proof passes for one contribution and
// assembles the attestation response. Any fatal error in any pass
// fails the whole attestation; there is no partial response.
type Generator struct {
	cfg        *config.Config
	thresholds *quality.Thresholds
	tee        *adapters.TEEClient
	verifier   *authenticity.Verifier
	checker    *uniqueness.Checker
	evaluator  quality.Evaluator
	logger     *monitoring.Logger
	metrics    *monitoring.Metrics
}

func NewGenerator(cfg *config.Config, logger *monitoring.Logger, metrics *monitoring.Metrics) (*Generator, error) {
	thresholds, err := cfg.Thresholds()
	if err != nil {
		return nil, err
	}

	tee := adapters.NewTEEClient(cfg.TEEEndpoint, cfg.TEEAPIKey, logger, metrics)

	var evaluator quality.Evaluator
	if cfg.OpenAIAPIKey != "" {
		evaluator = adapters.NewEvaluatorAdapter("", cfg.OpenAIAPIKey, thresholds.EvaluatorModel, metrics)
	}

	return &Generator{
		cfg:        cfg,
		thresholds: thresholds,
		tee:        tee,
		verifier:   authenticity.NewVerifier(tee, logger),
		checker:    uniqueness.NewChecker(tee, cfg.NumPerm, cfg.UniquenessThreshold, logger),
		evaluator:  evaluator,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Generate runs authenticity, uniqueness, and quality for one request.
func (g *Generator) Generate(ctx context.Context, request types.ProofRequest) (*types.ProofResponse, error) {
	runID := uuid.NewString()
	start := time.Now()
	g.metrics.IncrementProofRun()
	g.logger.Info("starting proof generation", "run_id", runID, "user_id", request.UserID)

	authScore, err := g.verifier.Verify(ctx, request)
	if err != nil {
		g.metrics.IncrementProofFailed()
		return nil, err
	}

	uniqScore, err := g.checker.Check(ctx, request.InputDir, request.UserID)
	if err != nil {
		g.metrics.IncrementProofFailed()
		return nil, err
	}

	engine := quality.NewEngine(g.thresholds, g.evaluator, g.logger)
	if g.cfg.RemoteLogEnabled {
		engine = engine.WithRemoteLogger(g.tee.LogSink(request.ProofKey))
	}

	result, err := engine.Run(ctx, request.InputDir)
	if err != nil {
		g.metrics.IncrementProofFailed()
		return nil, err
	}

	g.logger.ProofRunLogger(runID, authScore, uniqScore, result.Packed, time.Since(start))

	return &types.ProofResponse{
		DlpID:        g.cfg.DlpID,
		Authenticity: authScore,
		Ownership:    authScore,
		Uniqueness:   uniqScore,
		Quality:      result.Scores,
		Metadata:     result.Packed,
	}, nil
}
