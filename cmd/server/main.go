package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/primeinsights/proof-engine/internal/config"
	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/proof"
	"github.com/primeinsights/proof-engine/internal/types"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	generator, err := proof.NewGenerator(cfg, appLogger, appMetrics)
	if err != nil {
		slog.Error("Failed to initialize proof generator", "error", err)
		os.Exit(1)
	}

	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-API-Key", "X-Request-ID")
	r.Use(cors.New(corsConfig))

	r.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"network":   string(cfg.Network),
			"metrics":   appMetrics.GetStats(),
		})
	})

	r.POST("/proof", func(c *gin.Context) {
		var request types.ProofRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if request.InputDir == "" || request.ProofKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "input_dir and proof_key are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ProofTimeout)
		defer cancel()

		response, err := generator.Generate(ctx, request)
		if err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, gin.H{
				"error":    appErr.Msg,
				"category": string(appErr.Category),
			})
			return
		}

		c.JSON(http.StatusOK, response)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "network", string(cfg.Network))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
