package authflow

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/seralo/authflow/session"
)

// Builder assembles an [Engine] step by step. A Builder is single-use: Build
// may be called once.
type Builder struct {
	config     Config
	redis      *redis.Client
	httpClient *http.Client
	sink       Sink
	built      bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration. The value is copied; later
// mutation of cfg by the caller has no effect.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAPIRoot sets the API root URL without replacing the rest of the
// configuration.
func (b *Builder) WithAPIRoot(root string) *Builder {
	b.config.API.Root = root
	return b
}

// WithRedis sets the redis client backing the token store. Required.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the HTTP client used by the request pipeline. When
// unset, Build creates one with the configured request timeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithNotifySink sets the sink receiving side-channel events. When unset,
// events are discarded.
func (b *Builder) WithNotifySink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	b.built = true

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: b.config.Request.Timeout}
	}

	state := session.NewState(b.config.Token.Type)
	metrics := NewMetrics(b.config.Metrics)
	notify := newNotifyDispatcher(b.config.Notify, b.sink)

	e := &Engine{
		config:      b.config,
		state:       state,
		tokens:      newTokenStore(b.redis),
		notify:      notify,
		metrics:     metrics,
		credentials: make(chan credentialRequest, b.config.Queue.CredentialBuffer),
		logoutCh:    make(chan struct{}, 1),
	}
	e.api = newAPIClient(httpClient, b.config.API.Root, state, notify, metrics)

	return e, nil
}
