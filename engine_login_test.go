package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func authSuccessHandler(t *testing.T, path, key string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+path {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"key":  key,
			"user": map[string]any{"id": 1, "email": "a@b.c"},
		})
	})
}

func TestLoginSuccessPersistsTokenBeforeState(t *testing.T) {
	te := newTestEngine(t, authSuccessHandler(t, "api/login/", "tok-1"))

	err := te.engine.login(context.Background(), FormData{"email": "a@b.c", "password": "pw"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if got := te.engine.CurrentToken(); got != "tok-1" {
		t.Fatalf("CurrentToken = %q", got)
	}
	if te.engine.CurrentUser() == nil {
		t.Fatal("user not set after login")
	}
	if got := te.storedToken(t); got != "tok-1" {
		t.Fatalf("stored token = %q", got)
	}
	if got := te.engine.metrics.Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("login success counter = %d", got)
	}

	event := te.nextEvent(t, notifyEventLoginSuccess)
	if !event.Success {
		t.Fatal("login_success event not marked successful")
	}
}

func TestLoginApplicationErrorReturnsNil(t *testing.T) {
	te := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"non_field_errors":["invalid credentials"]}`))
	}))

	err := te.engine.login(context.Background(), FormData{"email": "a@b.c", "password": "bad"})
	if err != nil {
		t.Fatalf("application-level failure must not raise: %v", err)
	}

	failure := te.engine.LastError(CategoryLogin)
	if failure == nil || failure.Status != http.StatusBadRequest {
		t.Fatalf("login failure = %+v", failure)
	}
	if string(failure.Payload) != `{"non_field_errors":["invalid credentials"]}` {
		t.Fatalf("failure payload = %s", failure.Payload)
	}
	if te.engine.CurrentUser() != nil || te.engine.CurrentToken() != "" {
		t.Fatal("failed login mutated session identity")
	}
	if got := te.storedToken(t); got != "" {
		t.Fatalf("failed login persisted token %q", got)
	}

	event := te.nextEvent(t, notifyEventLoginFailure)
	if event.Status != http.StatusBadRequest {
		t.Fatalf("event status = %d", event.Status)
	}
}

func TestLoginTransportErrorReturns(t *testing.T) {
	te := newTestEngine(t, http.NotFoundHandler())
	te.server.Close() // refuse connections from here on

	err := te.engine.login(context.Background(), FormData{"email": "a@b.c"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}

	failure := te.engine.LastError(CategoryLogin)
	if failure == nil || failure.Message == "" {
		t.Fatalf("transport failure not recorded: %+v", failure)
	}
	if failure.Status != 0 {
		t.Fatalf("transport failure carries status %d", failure.Status)
	}
}

func TestLoginMissingKeyIsMalformed(t *testing.T) {
	te := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"user":{"id":1}}`))
	}))

	err := te.engine.login(context.Background(), FormData{"email": "a@b.c"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	if te.engine.CurrentToken() != "" {
		t.Fatal("malformed response set a token")
	}
}

func TestLoginTokenStoreFailureFailsLogin(t *testing.T) {
	te := newTestEngine(t, authSuccessHandler(t, "api/login/", "tok-1"))
	te.redis.Close() // store write will fail

	err := te.engine.login(context.Background(), FormData{"email": "a@b.c"})
	if !errors.Is(err, errTokenStoreUnavailable) {
		t.Fatalf("err = %v, want errTokenStoreUnavailable", err)
	}
	if te.engine.CurrentUser() != nil || te.engine.CurrentToken() != "" {
		t.Fatal("login committed session despite store failure")
	}
}

func TestSignupSuccess(t *testing.T) {
	te := newTestEngine(t, authSuccessHandler(t, "api/signup/", "tok-s"))

	err := te.engine.signup(context.Background(), FormData{"email": "a@b.c", "password": "pw"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if got := te.engine.CurrentToken(); got != "tok-s" {
		t.Fatalf("CurrentToken = %q", got)
	}
	if got := te.storedToken(t); got != "tok-s" {
		t.Fatalf("stored token = %q", got)
	}
	if got := te.engine.metrics.Value(MetricSignupSuccess); got != 1 {
		t.Fatalf("signup success counter = %d", got)
	}
}

func TestSignupApplicationError(t *testing.T) {
	te := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"email":["already registered"]}`))
	}))

	err := te.engine.signup(context.Background(), FormData{"email": "a@b.c"})
	if err != nil {
		t.Fatalf("application-level failure must not raise: %v", err)
	}
	failure := te.engine.LastError(CategorySignup)
	if failure == nil || failure.Status != http.StatusConflict {
		t.Fatalf("signup failure = %+v", failure)
	}
	if te.engine.LastError(CategoryLogin) != nil {
		t.Fatal("signup failure bled into the login slot")
	}
}
