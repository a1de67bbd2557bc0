package authflow

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful login operations.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts failed login operations, transport and
	// application-level alike.
	MetricLoginFailure
	// MetricSignupSuccess counts successful signup operations.
	MetricSignupSuccess
	// MetricSignupFailure counts failed signup operations.
	MetricSignupFailure
	// MetricLoadUserSuccess counts successful load-user operations.
	MetricLoadUserSuccess
	// MetricLoadUserFailure counts failed load-user operations.
	MetricLoadUserFailure
	// MetricLoadUserSkipped counts load-user calls short-circuited because
	// no token was available anywhere.
	MetricLoadUserSkipped
	// MetricPatchSuccess counts successful patch-user operations.
	MetricPatchSuccess
	// MetricPatchFailure counts failed patch-user operations.
	MetricPatchFailure
	// MetricTokenInjected counts tokens accepted through InjectToken.
	MetricTokenInjected
	// MetricTokenRejected counts stored tokens removed after a failing
	// authenticated request.
	MetricTokenRejected
	// MetricBootstrapTokenFound counts orchestrator iterations that started
	// with a stored token.
	MetricBootstrapTokenFound
	// MetricBootstrapTokenMissing counts orchestrator iterations that
	// started without a stored token.
	MetricBootstrapTokenMissing
	// MetricCredentialIgnored counts credential events drained and discarded
	// while already authenticated.
	MetricCredentialIgnored
	// MetricLogout counts completed logout transitions.
	MetricLogout
	// MetricResponseError counts settled responses with status above 299.
	MetricResponseError
	// MetricTransportError counts network-level request failures.
	MetricTransportError
	// MetricRequestLatency is the request pipeline latency histogram.
	MetricRequestLatency

	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds enabled-gated atomic counters and an optional request
// latency histogram. A nil or disabled Metrics turns every operation into a
// no-op.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics instance configured by cfg. When Enabled is
// false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only MetricRequestLatency carries a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
