package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementGitHubCalls()
	m.RecordAnalysis(false)
	m.RecordAnalysis(true)
	m.IncrementTokenRotation()

	stats := m.GetStats()

	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, float64(50), stats["error_rate_percent"])
	assert.Equal(t, float64(50), stats["cache_hit_rate_percent"])
	assert.Equal(t, int64(1), stats["github_api_calls"])
	assert.Equal(t, int64(2), stats["analyses_total"])
	assert.Equal(t, int64(1), stats["analyses_failed"])
	assert.Equal(t, int64(1), stats["token_rotations"])
}

func TestPercentileResponseTime(t *testing.T) {
	m := NewMetrics()

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	p50 := m.GetPercentileResponseTime(50)
	p99 := m.GetPercentileResponseTime(99)

	assert.InDelta(t, 50, p50.Milliseconds(), 2)
	assert.InDelta(t, 99, p99.Milliseconds(), 2)
}

func TestPercentileEmptySamples(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, time.Duration(0), m.GetPercentileResponseTime(95))
}

func TestStatusCodeDistribution(t *testing.T) {
	m := NewMetrics()

	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(429)

	dist := m.GetStatusCodeDistribution()
	assert.Equal(t, int64(2), dist[200])
	assert.Equal(t, int64(1), dist[429])
}

func TestReset(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.RecordResponseTime(10 * time.Millisecond)
	m.RecordRequestByStatus(500)

	m.Reset()

	stats := m.GetStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Empty(t, m.GetStatusCodeDistribution())
}
