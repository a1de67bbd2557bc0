package authflow

import (
	"encoding/json"

	"github.com/seralo/authflow/session"
)

// FormData is an opaque credential or profile payload submitted to the API.
// The engine never inspects its keys; the wire format is owned by the server.
type FormData map[string]any

// APIResponse is a settled HTTP exchange: status code plus raw JSON body.
// Callers branch on Status themselves; the pipeline does not raise errors for
// non-2xx statuses.
type APIResponse struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the response status signals success (at most 299).
func (r *APIResponse) OK() bool {
	return r != nil && r.Status <= 299
}

// Decode unmarshals the response body into v.
func (r *APIResponse) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return ErrMalformedResponse
	}
	return json.Unmarshal(r.Body, v)
}

// RequestOptions is the options bag accepted by the request pipeline verbs.
//
// Data is the JSON body for mutating verbs; for Get, a map is serialized as a
// verbatim key=value query string. Headers merge over the defaults and win on
// key collision. Authentication is required unless SkipAuthentication is set.
type RequestOptions struct {
	Data               any
	Headers            map[string]string
	SkipAuthentication bool
}

// ErrorCategory names the per-operation failure slot readable through
// [Engine.LastError].
type ErrorCategory uint8

const (
	// CategoryLogin selects the last login failure.
	CategoryLogin ErrorCategory = iota
	// CategorySignup selects the last signup failure.
	CategorySignup
	// CategoryLoadUser selects the last load-user failure.
	CategoryLoadUser
	// CategoryPatch selects the last patch-user failure.
	CategoryPatch
)

// SessionInfo is a read-only snapshot of the session returned by
// [Engine.SessionInfo].
type SessionInfo struct {
	Authenticated bool
	TokenPresent  bool
	TokenType     string
	LoginPending  bool
	SignupPending bool
	UserLoading   bool
}

func transportFailure(err error) *session.Failure {
	if err == nil {
		return nil
	}
	return &session.Failure{Message: err.Error()}
}

func applicationFailure(resp *APIResponse) *session.Failure {
	if resp == nil {
		return nil
	}
	return &session.Failure{Status: resp.Status, Payload: resp.Body}
}
