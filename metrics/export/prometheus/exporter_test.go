package prometheus

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	authflow "github.com/seralo/authflow"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot authflow.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authflow.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := authflow.MetricsSnapshot{
		Counters:   make(map[authflow.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[authflow.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) NotifyDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestRenderCounters(t *testing.T) {
	src := &fakeSource{
		snapshot: authflow.MetricsSnapshot{
			Counters: map[authflow.MetricID]uint64{
				authflow.MetricLoginSuccess:  3,
				authflow.MetricResponseError: 2,
			},
		},
		dropped: 1,
	}

	out := NewPrometheusExporterFromSource(src).Render()
	if !strings.Contains(out, "authflow_login_success_total 3\n") {
		t.Fatalf("login counter missing:\n%s", out)
	}
	if !strings.Contains(out, "authflow_response_error_total 2\n") {
		t.Fatalf("response error counter missing:\n%s", out)
	}
	if !strings.Contains(out, "authflow_notify_dropped_total 1\n") {
		t.Fatalf("dropped counter missing:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE authflow_login_success_total counter\n") {
		t.Fatalf("TYPE line missing:\n%s", out)
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	src := &fakeSource{
		snapshot: authflow.MetricsSnapshot{
			Counters: map[authflow.MetricID]uint64{},
			Histograms: map[authflow.MetricID][]uint64{
				authflow.MetricRequestLatency: {1, 1, 0, 0, 0, 0, 0, 2},
			},
		},
	}

	out := NewPrometheusExporterFromSource(src).Render()
	if !strings.Contains(out, `authflow_request_latency_seconds_bucket{le="0.005"} 1`) {
		t.Fatalf("first bucket missing:\n%s", out)
	}
	if !strings.Contains(out, `authflow_request_latency_seconds_bucket{le="0.01"} 2`) {
		t.Fatalf("buckets not cumulative:\n%s", out)
	}
	if !strings.Contains(out, `authflow_request_latency_seconds_bucket{le="+Inf"} 4`) {
		t.Fatalf("+Inf bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, "authflow_request_latency_seconds_count 4\n") {
		t.Fatalf("count line wrong:\n%s", out)
	}
}

func TestRenderEmptySource(t *testing.T) {
	src := &fakeSource{snapshot: authflow.MetricsSnapshot{
		Counters:   map[authflow.MetricID]uint64{},
		Histograms: map[authflow.MetricID][]uint64{},
	}}
	if out := NewPrometheusExporterFromSource(src).Render(); out != "" {
		t.Fatalf("empty source rendered:\n%s", out)
	}
}

func TestHandlerContentType(t *testing.T) {
	src := &fakeSource{
		snapshot: authflow.MetricsSnapshot{
			Counters: map[authflow.MetricID]uint64{authflow.MetricLogout: 1},
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	NewPrometheusExporterFromSource(src).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("Content-Type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "authflow_logout_total 1\n") {
		t.Fatalf("body missing counter:\n%s", rec.Body.String())
	}
}
