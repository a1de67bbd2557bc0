package authflow

import (
	"context"
	"log"
	"time"
)

// loadUser fetches the user record for the active token. A non-empty token
// argument is committed to session state first, covering injection and
// bootstrap; with no token anywhere the call short-circuits with ErrNoToken
// and no network round-trip.
//
// The settled response body is applied as the user payload regardless of
// status; the server owns the shape of that endpoint. Only a transport
// failure condemns the credential: the stored token is removed and the state
// token cleared so the next orchestrator iteration starts unauthenticated.
func (e *Engine) loadUser(ctx context.Context, token string) error {
	e.state.LoadUserStarted()

	if token != "" {
		e.state.SetUserToken(token)
	}
	if e.state.Token() == "" {
		e.state.LoadUserFailed(transportFailure(ErrNoToken))
		e.metricInc(MetricLoadUserSkipped)
		e.metricInc(MetricLoadUserFailure)
		e.emitNotify(ctx, notifyEventLoadUserFailure, false, 0, nil, ErrNoToken)
		return ErrNoToken
	}

	if e.config.Token.InspectJWTExpiry && tokenExpired(e.state.Token(), time.Now()) {
		return e.rejectToken(ctx, ErrTokenRejected)
	}

	resp, err := minDelayCall(e.config.Request.MinLatency, func() (*APIResponse, error) {
		return e.api.Get(ctx, e.config.API.UserPath, RequestOptions{})
	})
	if err != nil {
		return e.rejectToken(ctx, err)
	}

	e.state.LoadUserSucceeded(resp.Body)
	e.metricInc(MetricLoadUserSuccess)
	e.emitNotify(ctx, notifyEventLoadUserSuccess, true, resp.Status, nil, nil)
	return nil
}

// rejectToken discards the current credential after a failing authenticated
// exchange: the stored copy is deleted best-effort, the state token cleared,
// and the load-user failure recorded.
func (e *Engine) rejectToken(ctx context.Context, cause error) error {
	if err := e.tokens.Remove(ctx, e.config.Token.StoreKey); err != nil {
		log.Print("authflow: removing rejected token failed: ", err)
	}
	e.state.TokenRejected()
	e.state.LoadUserFailed(transportFailure(cause))
	e.metricInc(MetricTokenRejected)
	e.metricInc(MetricLoadUserFailure)
	e.emitNotify(ctx, notifyEventTokenRejected, false, 0, nil, cause)
	return cause
}

// PatchUser updates the user record through the authenticated user endpoint.
// It runs synchronously on the caller's goroutine with no delay floor, and it
// never mutates the session user or token: a settled error status is recorded
// in the patch failure slot and PatchUser returns nil; only transport
// failures return an error.
func (e *Engine) PatchUser(ctx context.Context, form FormData) error {
	resp, err := e.api.Patch(ctx, e.config.API.UserPath, RequestOptions{Data: form})
	if err != nil {
		e.state.PatchFailed(transportFailure(err))
		e.metricInc(MetricPatchFailure)
		e.emitNotify(ctx, notifyEventPatchFailure, false, 0, nil, err)
		return err
	}

	if !resp.OK() {
		e.state.PatchFailed(applicationFailure(resp))
		e.metricInc(MetricPatchFailure)
		e.emitNotify(ctx, notifyEventPatchFailure, false, resp.Status, resp.Body, nil)
		return nil
	}

	e.state.PatchSucceeded(resp.Body)
	e.metricInc(MetricPatchSuccess)
	return nil
}

// RequestPatchUser is the fire-and-forget form of [Engine.PatchUser]: the
// patch runs on its own goroutine and its outcome lands in session state
// only.
func (e *Engine) RequestPatchUser(form FormData) {
	go func() {
		if err := e.PatchUser(context.Background(), form); err != nil {
			log.Print("authflow: patch user failed: ", err)
		}
	}()
}
