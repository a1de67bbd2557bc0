package session

import (
	"encoding/json"
	"sync"
)

// Failure records one failed operation. Status and Payload are set for
// application-level errors (settled response, status above 299); Message is
// set for transport failures and local validation short-circuits.
type Failure struct {
	Status  int             `json:"status,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Message string          `json:"message,omitempty"`
}

// State is the single mutable session record. It is created once per engine
// and lives for the engine's lifetime; it is never destroyed, only reset
// field by field. All methods are safe for concurrent use.
type State struct {
	mu sync.RWMutex

	user      json.RawMessage
	token     string
	tokenType string

	loginPending  bool
	signupPending bool
	userLoading   bool

	loginErr    *Failure
	signupErr   *Failure
	loadUserErr *Failure
	patchErr    *Failure

	patchResult json.RawMessage
}

// NewState creates an empty session record using the given auth-header
// token type.
func NewState(tokenType string) *State {
	return &State{tokenType: tokenType}
}

// User returns the current user payload, or nil when no user is loaded.
func (s *State) User() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the current credential token, or "" when absent.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TokenType returns the auth-header scheme, e.g. "Token".
func (s *State) TokenType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenType
}

// LoginPending reports whether a login operation is in flight.
func (s *State) LoginPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginPending
}

// SignupPending reports whether a signup operation is in flight.
func (s *State) SignupPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signupPending
}

// UserLoading reports whether a load-user operation is in flight.
func (s *State) UserLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLoading
}

// Authenticating reports whether any credential-establishing operation is in
// flight.
func (s *State) Authenticating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginPending || s.signupPending || s.userLoading
}

// LoginError returns the last login failure, or nil.
func (s *State) LoginError() *Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginErr
}

// SignupError returns the last signup failure, or nil.
func (s *State) SignupError() *Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signupErr
}

// LoadUserError returns the last load-user failure, or nil.
func (s *State) LoadUserError() *Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadUserErr
}

// PatchError returns the last patch-user failure, or nil.
func (s *State) PatchError() *Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patchErr
}

// PatchResult returns the body of the last successful patch-user call.
func (s *State) PatchResult() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patchResult
}

// SetUserToken injects a credential token directly, covering the
// token-arrived-externally case (deep link, bootstrap from store).
func (s *State) SetUserToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// LoginStarted marks a login operation in flight.
func (s *State) LoginStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginPending = true
}

// LoginSucceeded applies a successful login: user and token set, pending and
// error cleared.
func (s *State) LoginSucceeded(user json.RawMessage, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginPending = false
	s.loginErr = nil
	s.user = user
	s.token = token
}

// LoginFailed records a login failure and clears the pending flag.
func (s *State) LoginFailed(failure *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginPending = false
	s.loginErr = failure
}

// SignupStarted marks a signup operation in flight.
func (s *State) SignupStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signupPending = true
}

// SignupSucceeded applies a successful signup: user and token set, pending
// and error cleared.
func (s *State) SignupSucceeded(user json.RawMessage, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signupPending = false
	s.signupErr = nil
	s.user = user
	s.token = token
}

// SignupFailed records a signup failure and clears the pending flag.
func (s *State) SignupFailed(failure *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signupPending = false
	s.signupErr = failure
}

// LoadUserStarted marks a load-user operation in flight.
func (s *State) LoadUserStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLoading = true
}

// LoadUserSucceeded applies a loaded user payload.
func (s *State) LoadUserSucceeded(user json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLoading = false
	s.loadUserErr = nil
	s.user = user
}

// LoadUserFailed records a load-user failure and clears the pending flag.
func (s *State) LoadUserFailed(failure *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLoading = false
	s.loadUserErr = failure
}

// TokenRejected clears the credential token after invalid-token detection.
// The user payload is untouched; logout decisions belong to the orchestrator.
func (s *State) TokenRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// PatchSucceeded records the result of a successful patch-user call. It
// never mutates the user or token fields.
func (s *State) PatchSucceeded(result json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchErr = nil
	s.patchResult = result
}

// PatchFailed records a patch-user failure. It never mutates the user or
// token fields.
func (s *State) PatchFailed(failure *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchErr = failure
}

// LoggedOut clears the user and token, ending the session.
func (s *State) LoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// ClearErrors resets every per-operation failure slot.
func (s *State) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginErr = nil
	s.signupErr = nil
	s.loadUserErr = nil
	s.patchErr = nil
}
