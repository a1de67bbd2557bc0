package authflow

import (
	"encoding/json"
	"sync/atomic"

	"github.com/seralo/authflow/session"
)

// Engine is the session-authentication engine. It owns the mutable session
// state, the token store adapter, the request pipeline, and the orchestrator
// channels. Construct it through [Builder]; the zero value is not usable.
//
// The engine is passive until [Engine.Run] is started: triggers only enqueue
// work, and the orchestrator goroutine performs every state transition.
type Engine struct {
	config  Config
	state   *session.State
	tokens  *tokenStore
	api     *apiClient
	notify  *notifyDispatcher
	metrics *Metrics

	credentials chan credentialRequest
	logoutCh    chan struct{}

	running atomic.Bool
}

// Close releases background resources. It stops the notify dispatcher after
// draining buffered events; it does not stop a running orchestrator. Cancel
// the Run context for that.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.notify.Close()
}

// CurrentUser returns the raw user payload of the active session, or nil.
func (e *Engine) CurrentUser() json.RawMessage {
	return e.state.User()
}

// CurrentToken returns the session credential token, or "".
func (e *Engine) CurrentToken() string {
	return e.state.Token()
}

// IsAuthenticating reports whether any credential-establishing operation is
// in flight.
func (e *Engine) IsAuthenticating() bool {
	return e.state.Authenticating()
}

// LastError returns the most recent failure recorded for the given category,
// or nil when the last operation in that category succeeded.
func (e *Engine) LastError(category ErrorCategory) *session.Failure {
	switch category {
	case CategoryLogin:
		return e.state.LoginError()
	case CategorySignup:
		return e.state.SignupError()
	case CategoryLoadUser:
		return e.state.LoadUserError()
	case CategoryPatch:
		return e.state.PatchError()
	default:
		return nil
	}
}

// PatchResult returns the body of the last successful patch-user call.
func (e *Engine) PatchResult() json.RawMessage {
	return e.state.PatchResult()
}

// ClearErrors resets every per-operation failure slot, typically when the
// embedding application navigates away from an auth form.
func (e *Engine) ClearErrors() {
	e.state.ClearErrors()
}

// SessionInfo returns a read-only snapshot of the session.
func (e *Engine) SessionInfo() SessionInfo {
	return SessionInfo{
		Authenticated: e.state.User() != nil,
		TokenPresent:  e.state.Token() != "",
		TokenType:     e.state.TokenType(),
		LoginPending:  e.state.LoginPending(),
		SignupPending: e.state.SignupPending(),
		UserLoading:   e.state.UserLoading(),
	}
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// NotifyDropped reports how many notify events were discarded under
// backpressure.
func (e *Engine) NotifyDropped() uint64 {
	return e.notify.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}
