package authflow

import (
	"errors"
	"strings"
	"time"
)

// Config defines the full engine configuration. Instances are copied at Build
// time and treated as immutable afterwards.
type Config struct {
	API     APIConfig
	Token   TokenConfig
	Request RequestConfig
	Queue   QueueConfig
	Notify  NotifyConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig names the API root and the relative paths of the authentication
// endpoints. Paths are joined as "{Root}/{path}" without further cleanup.
type APIConfig struct {
	Root       string
	LoginPath  string
	SignupPath string
	UserPath   string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls credential persistence and the auth-header scheme.
//
// When InspectJWTExpiry is set and the stored credential parses as a JWT, an
// already-expired token is rejected during loadUser without a network
// round-trip. Opaque (non-JWT) tokens are never touched by this check.
type TokenConfig struct {
	StoreKey         string
	Type             string // auth-header scheme, e.g. "Token" or "Bearer"
	InspectJWTExpiry bool
}

// RequestConfig controls request pipeline timing. MinLatency is the delay
// floor applied to login, signup, and load-user calls; it is not a timeout.
type RequestConfig struct {
	MinLatency time.Duration
	Timeout    time.Duration
}

// QueueConfig sizes the trigger channels feeding the orchestrator.
type QueueConfig struct {
	CredentialBuffer int
}

// NotifyConfig controls the side-channel event dispatcher.
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			LoginPath:  "api/login/",
			SignupPath: "api/signup/",
			UserPath:   "api/user/",
		},
		Token: TokenConfig{
			StoreKey: "_session_token",
			Type:     "Token",
		},
		Request: RequestConfig{
			MinLatency: 500 * time.Millisecond,
			Timeout:    15 * time.Second,
		},
		Queue: QueueConfig{
			CredentialBuffer: 16,
		},
		Notify: NotifyConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All sections are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate checks the configuration for values Build cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.Root) == "" {
		return errors.New("API Root is required")
	}
	if c.API.LoginPath == "" || c.API.SignupPath == "" || c.API.UserPath == "" {
		return errors.New("API endpoint paths must not be empty")
	}
	if c.Token.StoreKey == "" {
		return errors.New("Token StoreKey must not be empty")
	}
	if c.Token.Type == "" {
		return errors.New("Token Type must not be empty")
	}
	if c.Request.MinLatency < 0 {
		return errors.New("Request MinLatency must not be negative")
	}
	if c.Request.Timeout <= 0 {
		return errors.New("Request Timeout must be positive")
	}
	if c.Queue.CredentialBuffer <= 0 {
		return errors.New("Queue CredentialBuffer must be positive")
	}
	if c.Notify.Enabled && c.Notify.BufferSize <= 0 {
		return errors.New("Notify BufferSize must be positive when notify is enabled")
	}
	return nil
}
