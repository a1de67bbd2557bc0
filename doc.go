// Package authflow provides a client-side session-authentication engine: a
// single orchestrator goroutine that drives a user session through
// bootstrap-from-stored-token, credential acquisition, and logout, backed by a
// Redis token store and a JSON/HTTP request pipeline with a minimum-latency
// floor on network calls.
//
// Engines are built through [Builder.Build] and are safe for concurrent use:
// the orchestrator ([Engine.Run]) is the only writer for the login, signup,
// and load-user transitions, while triggers ([Engine.RequestLogin],
// [Engine.RequestLogout], [Engine.InjectToken]) and read accessors may be
// called from any goroutine.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Engine], [Builder], [Config],
// the notify side-channel ([Event], [Sink]), and metrics snapshots. Session
// state lives in the session sub-package and is mutated only through its named
// transition methods; ad-hoc mutation from outside the engine is not possible.
//
// # Response classification
//
// A settled HTTP exchange with status above 299 is an application-level
// error: it is never raised as a Go error. The body is returned to the caller
// and the raw response is published on the notify side-channel for telemetry
// consumers. Only transport failures (DNS, refused connections, timeouts)
// surface as errors, wrapped in [ErrTransport].
package authflow
