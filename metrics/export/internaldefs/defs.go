package internaldefs

import (
	authflow "github.com/seralo/authflow"
)

// CounterDef binds an engine counter to its exported metric name.
type CounterDef struct {
	ID   authflow.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exported metric name.
type HistogramDef struct {
	ID   authflow.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: authflow.MetricLoginSuccess, Name: "authflow_login_success_total", Help: "Successful login operations."},
	{ID: authflow.MetricLoginFailure, Name: "authflow_login_failure_total", Help: "Failed login operations."},
	{ID: authflow.MetricSignupSuccess, Name: "authflow_signup_success_total", Help: "Successful signup operations."},
	{ID: authflow.MetricSignupFailure, Name: "authflow_signup_failure_total", Help: "Failed signup operations."},
	{ID: authflow.MetricLoadUserSuccess, Name: "authflow_load_user_success_total", Help: "Successful load-user operations."},
	{ID: authflow.MetricLoadUserFailure, Name: "authflow_load_user_failure_total", Help: "Failed load-user operations."},
	{ID: authflow.MetricLoadUserSkipped, Name: "authflow_load_user_skipped_total", Help: "Load-user calls short-circuited without a token."},
	{ID: authflow.MetricPatchSuccess, Name: "authflow_patch_success_total", Help: "Successful patch-user operations."},
	{ID: authflow.MetricPatchFailure, Name: "authflow_patch_failure_total", Help: "Failed patch-user operations."},
	{ID: authflow.MetricTokenInjected, Name: "authflow_token_injected_total", Help: "Tokens accepted through injection."},
	{ID: authflow.MetricTokenRejected, Name: "authflow_token_rejected_total", Help: "Stored tokens rejected and removed."},
	{ID: authflow.MetricBootstrapTokenFound, Name: "authflow_bootstrap_token_found_total", Help: "Bootstrap iterations with a stored token."},
	{ID: authflow.MetricBootstrapTokenMissing, Name: "authflow_bootstrap_token_missing_total", Help: "Bootstrap iterations without a stored token."},
	{ID: authflow.MetricCredentialIgnored, Name: "authflow_credential_ignored_total", Help: "Credential events discarded while authenticated."},
	{ID: authflow.MetricLogout, Name: "authflow_logout_total", Help: "Completed logout transitions."},
	{ID: authflow.MetricResponseError, Name: "authflow_response_error_total", Help: "Settled responses with status above 299."},
	{ID: authflow.MetricTransportError, Name: "authflow_transport_error_total", Help: "Network-level request failures."},
}

// HistogramDefs lists every engine histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: authflow.MetricRequestLatency, Name: "authflow_request_latency_seconds", Help: "Request pipeline latency histogram."},
}

// HistogramBounds are the upper bucket bounds as Prometheus le label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bucket bounds as metric-name-safe suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies a snapshot bucket slice into the fixed-size bucket
// array, tolerating short or nil input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts as
// required by the Prometheus exposition format.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
