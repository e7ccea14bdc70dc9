package monitoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementRequest()
			m.IncrementProofRun()
			m.RecordExternalAPICall("tee", true)
			m.RecordExternalAPICall("evaluator", false)
		}()
	}
	wg.Wait()
	m.IncrementError()
	m.IncrementProofFailed()

	stats := m.GetStats()
	assert.EqualValues(t, 50, stats["request_count"])
	assert.EqualValues(t, 1, stats["error_count"])
	assert.EqualValues(t, 50, stats["proof_runs"])
	assert.EqualValues(t, 1, stats["proof_failed"])

	apiRequests, ok := stats["external_api_requests"].(map[string]int64)
	require.True(t, ok)
	assert.EqualValues(t, 50, apiRequests["tee"])
	assert.EqualValues(t, 50, apiRequests["evaluator"])

	apiErrors, ok := stats["external_api_errors"].(map[string]int64)
	require.True(t, ok)
	assert.EqualValues(t, 50, apiErrors["evaluator"])
	assert.EqualValues(t, 0, apiErrors["tee"])
}
