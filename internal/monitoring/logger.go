package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with proof-run context
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new JSON logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// CategoryScoreLogger logs the outcome of scoring one category file
func (l *Logger) CategoryScoreLogger(fileName string, metadataScore, validationScore float64, valid bool, reasons []string) {
	l.Info("Category Scored",
		"file", fileName,
		"metadata_score", metadataScore,
		"validation_score", validationScore,
		"is_valid", valid,
		"reasons", reasons,
	)
}

// ExternalAPILogger logs external collaborator calls
func (l *Logger) ExternalAPILogger(apiName, method, endpoint string, statusCode int, duration time.Duration, success bool) {
	if success {
		l.Info("External API Call",
			"api_name", apiName,
			"method", method,
			"endpoint", endpoint,
			"status_code", statusCode,
			"duration_ms", duration.Milliseconds(),
		)
		return
	}

	l.Warn("External API Call",
		"api_name", apiName,
		"method", method,
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ProofRunLogger logs the completion of an attestation run
func (l *Logger) ProofRunLogger(runID string, authenticity, uniqueness int, packedRecord string, duration time.Duration) {
	l.Info("Proof Run Completed",
		"run_id", runID,
		"authenticity", authenticity,
		"uniqueness", uniqueness,
		"packed_record", packedRecord,
		"duration_ms", duration.Milliseconds(),
	)
}
