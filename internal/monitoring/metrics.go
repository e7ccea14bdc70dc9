package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds in-process counters for the attestation service
type Metrics struct {
	RequestCount int64
	ErrorCount   int64
	ProofRuns    int64
	ProofFailed  int64
	StartTime    time.Time

	// External collaborator call tracking
	ExternalAPIRequests map[string]int64
	ExternalAPIErrors   map[string]int64
	externalMutex       sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:           time.Now(),
		ExternalAPIRequests: make(map[string]int64),
		ExternalAPIErrors:   make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementProofRun records a completed proof run
func (m *Metrics) IncrementProofRun() {
	atomic.AddInt64(&m.ProofRuns, 1)
}

// IncrementProofFailed records a failed proof run
func (m *Metrics) IncrementProofFailed() {
	atomic.AddInt64(&m.ProofFailed, 1)
}

// RecordExternalAPICall records a call to an external collaborator
func (m *Metrics) RecordExternalAPICall(apiName string, success bool) {
	m.externalMutex.Lock()
	defer m.externalMutex.Unlock()

	m.ExternalAPIRequests[apiName]++
	if !success {
		m.ExternalAPIErrors[apiName]++
	}
}

// GetStats returns a snapshot of all counters
func (m *Metrics) GetStats() map[string]interface{} {
	m.externalMutex.RLock()
	external := make(map[string]int64, len(m.ExternalAPIRequests))
	externalErrors := make(map[string]int64, len(m.ExternalAPIErrors))
	for k, v := range m.ExternalAPIRequests {
		external[k] = v
	}
	for k, v := range m.ExternalAPIErrors {
		externalErrors[k] = v
	}
	m.externalMutex.RUnlock()

	return map[string]interface{}{
		"request_count":         atomic.LoadInt64(&m.RequestCount),
		"error_count":           atomic.LoadInt64(&m.ErrorCount),
		"proof_runs":            atomic.LoadInt64(&m.ProofRuns),
		"proof_failed":          atomic.LoadInt64(&m.ProofFailed),
		"external_api_requests": external,
		"external_api_errors":   externalErrors,
		"uptime_seconds":        int64(time.Since(m.StartTime).Seconds()),
	}
}
