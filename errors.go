package authflow

import "errors"

var (
	// ErrTransport wraps network-level failures (DNS, refused connections,
	// timeouts) surfaced by the request pipeline. Settled responses with an
	// error status are never wrapped in ErrTransport.
	ErrTransport = errors.New("transport failure")
	// ErrNoToken is returned when loadUser runs with no token in session
	// state and none supplied; no network call is made.
	ErrNoToken = errors.New("no session token available")
	// ErrTokenRejected is returned when a request made with a stored token
	// fails in transport; the stored token is removed before it is returned.
	ErrTokenRejected = errors.New("session token rejected")
	// ErrQueueFull is returned by a trigger when the credential queue cannot
	// accept another request without blocking.
	ErrQueueFull = errors.New("credential queue full")
	// ErrAlreadyRunning is returned by Run when the orchestrator loop is
	// already active on another goroutine.
	ErrAlreadyRunning = errors.New("orchestrator already running")
	// ErrEngineNotReady is returned when an Engine method is called before
	// the engine was constructed through Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrMalformedResponse is returned when a success response cannot be
	// decoded into the shape the operation requires.
	ErrMalformedResponse = errors.New("malformed api response")
)
