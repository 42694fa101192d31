package esi

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// Config represents agent configuration. It is copied by New and never
// modified afterwards; use Agent.Clone to derive an agent with different
// settings.
//
// # Rate limiting
//
// MaxConcurrentRequests and MinTimeBetweenRequests apply to the whole agent,
// not per route, and only to requests that reach the network. Cache hits and
// callers coalesced onto an in-flight request bypass both.
//
// # Retries
//
// The agent never retries. RetryMax enables transport-level retries for
// connection errors, 429 and 5xx; it is 0 unless set.
type Config struct {
	// BaseURL is the ESI root including the route version, e.g.
	// "https://esi.evetech.net/latest".
	BaseURL string
	// DataSource is sent as the datasource query parameter ("tranquility" or "singularity").
	DataSource string
	// UserAgent identifies the application to CCP. ESI asks for contact details here.
	UserAgent string
	// Language is sent as Accept-Language.
	Language string
	// Timeout bounds a single HTTP attempt. With HTTPClient set it bounds the
	// whole dispatch, retries included.
	Timeout time.Duration
	// MaxConcurrentRequests caps concurrent network requests. 0 means unlimited.
	MaxConcurrentRequests int
	// MinTimeBetweenRequests spaces dispatch starts. 0 disables spacing.
	MinTimeBetweenRequests time.Duration

	// DefaultTTL applies to responses without Cache-Control or Expires.
	DefaultTTL time.Duration
	// ErrorTTL is how long transport and status failures stay cached.
	ErrorTTL time.Duration
	// DisableErrorCaching turns off negative caching.
	DisableErrorCaching bool
	// CleanupInterval is the period of the expired-entry janitor. Negative disables it.
	CleanupInterval time.Duration

	// Routes replaces the built-in route table when non-nil.
	Routes Routes
	// Store is an optional second cache tier consulted before the network.
	// Only successful responses are written to it.
	Store Store

	// Logger receives agent and transport logs.
	Logger Logger
	// Debug enables per-request logging.
	Debug bool

	// RetryMax enables transport retries when > 0.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration
	// CircuitBreaker wraps the transport in a breaker when set.
	CircuitBreaker *CircuitBreakerConfig

	// MetricsRegisterer receives the agent's Prometheus collectors when set.
	MetricsRegisterer prometheus.Registerer
	// TracerProvider overrides the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider
	// HTTPClient replaces the underlying *http.Client. Its own Timeout is left as is.
	HTTPClient *http.Client
}

// CircuitBreakerConfig configures the transport circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open.
	Timeout time.Duration
	// Interval clears failure counts while closed.
	Interval time.Duration
}

// DefaultConfig returns the configuration used for zero fields.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         constants.DefaultBaseURL,
		DataSource:      constants.DefaultDataSource,
		UserAgent:       constants.DefaultUserAgent,
		Language:        constants.DefaultLanguage,
		Timeout:         constants.DefaultHTTPTimeout,
		DefaultTTL:      constants.DefaultCacheTTL,
		ErrorTTL:        constants.DefaultErrorTTL,
		CleanupInterval: constants.DefaultCleanupInterval,
	}
}

// withDefaults returns a copy with zero fields filled in.
func (c *Config) withDefaults() (Config, error) {
	cfg := *DefaultConfig()
	if c != nil {
		cfg = *c
	}

	defaults := DefaultConfig()

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}

	if cfg.DataSource == "" {
		cfg.DataSource = defaults.DataSource
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}

	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = defaults.DefaultTTL
	}

	if cfg.ErrorTTL == 0 {
		cfg.ErrorTTL = defaults.ErrorTTL
	}

	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	if cfg.Routes == nil {
		cfg.Routes = DefaultRoutes()
	} else {
		cfg.Routes = cfg.Routes.Merge(nil)
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("%w: base URL %q", ErrInvalidConfig, cfg.BaseURL)
	}

	if cfg.MaxConcurrentRequests < 0 || cfg.MinTimeBetweenRequests < 0 {
		return Config{}, fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}

	return cfg, nil
}
