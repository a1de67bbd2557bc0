package authflow

import (
	"context"
	"encoding/json"
	"errors"
)

const (
	notifyEventResponseError   = "response_error"
	notifyEventLoginSuccess    = "login_success"
	notifyEventLoginFailure    = "login_failure"
	notifyEventSignupSuccess   = "signup_success"
	notifyEventSignupFailure   = "signup_failure"
	notifyEventLoadUserSuccess = "load_user_success"
	notifyEventLoadUserFailure = "load_user_failure"
	notifyEventTokenInjected   = "token_injected"
	notifyEventTokenRejected   = "token_rejected"
	notifyEventPatchFailure    = "patch_failure"
	notifyEventLogout          = "logout"
)

// NotifyErrorCode classifies the error attached to a notify event.
type NotifyErrorCode string

const (
	notifyErrTransport   NotifyErrorCode = "transport_failure"
	notifyErrApplication NotifyErrorCode = "application_error"
	notifyErrNoToken     NotifyErrorCode = "missing_token"
	notifyErrRejected    NotifyErrorCode = "token_rejected"
	notifyErrStore       NotifyErrorCode = "token_store_unavailable"
	notifyErrMalformed   NotifyErrorCode = "malformed_response"
	notifyErrInternal    NotifyErrorCode = "internal_error"
)

func (e *Engine) emitNotify(
	ctx context.Context,
	eventType string,
	success bool,
	status int,
	response json.RawMessage,
	err error,
) {
	if e == nil || e.notify == nil {
		return
	}

	event := newEvent(eventType)
	event.Success = success
	event.Status = status
	event.Response = response
	if code := notifyErrorCode(status, err); code != "" {
		event.Error = string(code)
	}

	e.notify.Emit(ctx, event)
}

func notifyErrorCode(status int, err error) NotifyErrorCode {
	if err == nil {
		if status > 299 {
			return notifyErrApplication
		}
		return ""
	}

	switch {
	case errors.Is(err, ErrNoToken):
		return notifyErrNoToken
	case errors.Is(err, ErrTokenRejected):
		return notifyErrRejected
	case errors.Is(err, errTokenStoreUnavailable):
		return notifyErrStore
	case errors.Is(err, ErrMalformedResponse):
		return notifyErrMalformed
	case errors.Is(err, ErrTransport):
		return notifyErrTransport
	default:
		return notifyErrInternal
	}
}
