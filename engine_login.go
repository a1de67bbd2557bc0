package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// authPayload is the success body of the login and signup endpoints: the
// credential under "key" plus the user record.
type authPayload struct {
	Key  string          `json:"key"`
	User json.RawMessage `json:"user"`
}

// login submits credentials to the login endpoint and, on success, persists
// the returned token before committing user and token to session state.
//
// A settled response with status above 299 is an application-level outcome:
// the failure is recorded in state and login returns nil. Only transport
// failures and local faults (malformed body, token store write) return an
// error.
func (e *Engine) login(ctx context.Context, form FormData) error {
	e.state.LoginStarted()

	resp, err := minDelayCall(e.config.Request.MinLatency, func() (*APIResponse, error) {
		return e.api.Post(ctx, e.config.API.LoginPath, RequestOptions{
			Data:               form,
			SkipAuthentication: true,
		})
	})
	if err != nil {
		e.state.LoginFailed(transportFailure(err))
		e.metricInc(MetricLoginFailure)
		e.emitNotify(ctx, notifyEventLoginFailure, false, 0, nil, err)
		return err
	}

	if !resp.OK() {
		e.state.LoginFailed(applicationFailure(resp))
		e.metricInc(MetricLoginFailure)
		e.emitNotify(ctx, notifyEventLoginFailure, false, resp.Status, resp.Body, nil)
		return nil
	}

	var payload authPayload
	if err := resp.Decode(&payload); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		e.state.LoginFailed(transportFailure(err))
		e.metricInc(MetricLoginFailure)
		e.emitNotify(ctx, notifyEventLoginFailure, false, resp.Status, resp.Body, err)
		return err
	}
	if payload.Key == "" {
		err := fmt.Errorf("%w: missing key", ErrMalformedResponse)
		e.state.LoginFailed(transportFailure(err))
		e.metricInc(MetricLoginFailure)
		e.emitNotify(ctx, notifyEventLoginFailure, false, resp.Status, resp.Body, err)
		return err
	}

	// The token must survive a restart before the session is considered
	// established; a store write failure fails the whole login.
	if err := e.tokens.Set(ctx, e.config.Token.StoreKey, payload.Key); err != nil {
		log.Print("authflow: persisting session token failed: ", err)
		e.state.LoginFailed(transportFailure(err))
		e.metricInc(MetricLoginFailure)
		e.emitNotify(ctx, notifyEventLoginFailure, false, resp.Status, nil, err)
		return err
	}

	e.state.LoginSucceeded(payload.User, payload.Key)
	e.metricInc(MetricLoginSuccess)
	e.emitNotify(ctx, notifyEventLoginSuccess, true, resp.Status, nil, nil)
	return nil
}

// signup mirrors login against the signup endpoint: same payload shape, same
// persistence rules, same error classification.
func (e *Engine) signup(ctx context.Context, form FormData) error {
	e.state.SignupStarted()

	resp, err := minDelayCall(e.config.Request.MinLatency, func() (*APIResponse, error) {
		return e.api.Post(ctx, e.config.API.SignupPath, RequestOptions{
			Data:               form,
			SkipAuthentication: true,
		})
	})
	if err != nil {
		e.state.SignupFailed(transportFailure(err))
		e.metricInc(MetricSignupFailure)
		e.emitNotify(ctx, notifyEventSignupFailure, false, 0, nil, err)
		return err
	}

	if !resp.OK() {
		e.state.SignupFailed(applicationFailure(resp))
		e.metricInc(MetricSignupFailure)
		e.emitNotify(ctx, notifyEventSignupFailure, false, resp.Status, resp.Body, nil)
		return nil
	}

	var payload authPayload
	if err := resp.Decode(&payload); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		e.state.SignupFailed(transportFailure(err))
		e.metricInc(MetricSignupFailure)
		e.emitNotify(ctx, notifyEventSignupFailure, false, resp.Status, resp.Body, err)
		return err
	}
	if payload.Key == "" {
		err := fmt.Errorf("%w: missing key", ErrMalformedResponse)
		e.state.SignupFailed(transportFailure(err))
		e.metricInc(MetricSignupFailure)
		e.emitNotify(ctx, notifyEventSignupFailure, false, resp.Status, resp.Body, err)
		return err
	}

	if err := e.tokens.Set(ctx, e.config.Token.StoreKey, payload.Key); err != nil {
		log.Print("authflow: persisting session token failed: ", err)
		e.state.SignupFailed(transportFailure(err))
		e.metricInc(MetricSignupFailure)
		e.emitNotify(ctx, notifyEventSignupFailure, false, resp.Status, nil, err)
		return err
	}

	e.state.SignupSucceeded(payload.User, payload.Key)
	e.metricInc(MetricSignupSuccess)
	e.emitNotify(ctx, notifyEventSignupSuccess, true, resp.Status, nil, nil)
	return nil
}
