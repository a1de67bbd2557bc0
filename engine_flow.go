package authflow

import (
	"context"
	"errors"
	"log"
)

type credentialKind uint8

const (
	credentialLogin credentialKind = iota
	credentialSignup
	credentialToken
)

// credentialRequest is one unit of work on the credential queue: a login or
// signup form, or an externally obtained token.
type credentialRequest struct {
	kind  credentialKind
	form  FormData
	token string
}

// RequestLogin enqueues a login attempt for the orchestrator. It never
// blocks; a full queue returns ErrQueueFull.
func (e *Engine) RequestLogin(form FormData) error {
	return e.enqueue(credentialRequest{kind: credentialLogin, form: form})
}

// RequestSignup enqueues a signup attempt for the orchestrator. It never
// blocks; a full queue returns ErrQueueFull.
func (e *Engine) RequestSignup(form FormData) error {
	return e.enqueue(credentialRequest{kind: credentialSignup, form: form})
}

// InjectToken hands an externally obtained credential (deep link, another
// device) to the orchestrator, which validates it through a load-user call.
// An empty token returns ErrNoToken.
func (e *Engine) InjectToken(token string) error {
	if token == "" {
		return ErrNoToken
	}
	return e.enqueue(credentialRequest{kind: credentialToken, token: token})
}

// RequestLogout asks the orchestrator to end the active session. The signal
// is level-triggered: requesting logout while one is already pending is a
// no-op, and the signal is ignored entirely while unauthenticated.
func (e *Engine) RequestLogout() error {
	if e == nil || e.logoutCh == nil {
		return ErrEngineNotReady
	}
	select {
	case e.logoutCh <- struct{}{}:
	default:
	}
	return nil
}

func (e *Engine) enqueue(req credentialRequest) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}
	select {
	case e.credentials <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run drives the perpetual session lifecycle until ctx is cancelled. Each
// iteration bootstraps from the token store, waits for credentials while
// unauthenticated, and waits for a logout signal while authenticated; logout
// loops straight back into bootstrap. Only one Run may be active per engine.
//
// In-flight requests are not cancelled by logout: a response that settles
// after the session ended can still write stale state, which the next
// bootstrap iteration overwrites.
func (e *Engine) Run(ctx context.Context) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	for {
		e.bootstrap(ctx)

		if err := e.awaitCredential(ctx); err != nil {
			return err
		}
		if err := e.awaitLogout(ctx); err != nil {
			return err
		}
	}
}

// bootstrap recovers a previously persisted session. A store miss or an
// unreachable store both leave the engine unauthenticated; the difference is
// only logged.
func (e *Engine) bootstrap(ctx context.Context) {
	token, err := e.tokens.Get(ctx, e.config.Token.StoreKey)
	switch {
	case err == nil:
		e.metricInc(MetricBootstrapTokenFound)
		if lerr := e.loadUser(ctx, token); lerr != nil {
			log.Print("authflow: bootstrap load user failed: ", lerr)
		}
	case errors.Is(err, errTokenNotFound):
		e.metricInc(MetricBootstrapTokenMissing)
	default:
		log.Print("authflow: token store unavailable during bootstrap: ", err)
		e.metricInc(MetricBootstrapTokenMissing)
	}
}

// awaitCredential consumes the credential queue until a session is
// established or ctx is done.
func (e *Engine) awaitCredential(ctx context.Context) error {
	for e.state.User() == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.logoutCh:
			// Stale logout signal; there is no session to end.
		case req := <-e.credentials:
			e.dispatch(ctx, req)
		}
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, req credentialRequest) {
	switch req.kind {
	case credentialLogin:
		if err := e.login(ctx, req.form); err != nil {
			log.Print("authflow: login failed: ", err)
		}
	case credentialSignup:
		if err := e.signup(ctx, req.form); err != nil {
			log.Print("authflow: signup failed: ", err)
		}
	case credentialToken:
		e.metricInc(MetricTokenInjected)
		e.emitNotify(ctx, notifyEventTokenInjected, true, 0, nil, nil)
		if err := e.loadUser(ctx, req.token); err != nil {
			log.Print("authflow: injected token load failed: ", err)
		}
	}
}

// awaitLogout blocks until a logout signal arrives or ctx is done. Credential
// events arriving while authenticated are drained and discarded.
func (e *Engine) awaitLogout(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.logoutCh:
			e.logout(ctx)
			return nil
		case <-e.credentials:
			e.metricInc(MetricCredentialIgnored)
		}
	}
}

func (e *Engine) logout(ctx context.Context) {
	if err := e.tokens.Remove(ctx, e.config.Token.StoreKey); err != nil {
		log.Print("authflow: removing token on logout failed: ", err)
	}
	e.state.LoggedOut()
	e.metricInc(MetricLogout)
	e.emitNotify(ctx, notifyEventLogout, true, 0, nil, nil)
}
