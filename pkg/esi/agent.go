package esi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/esi-client/internal/constants"
	esihttp "github.com/fivetwenty-io/esi-client/internal/http"
	"github.com/fivetwenty-io/esi-client/internal/ratelimit"
	"github.com/fivetwenty-io/esi-client/internal/tracer"
)

type entryState int

const (
	statePending entryState = iota
	stateResolved
	stateFailed
)

// cacheEntry is pending while its future is in flight, then resolved or
// failed until expiresAt.
type cacheEntry struct {
	state     entryState
	future    *Future
	expiresAt time.Time
}

// Stats counts cache entries by state.
type Stats struct {
	Pending  int `json:"pending"  yaml:"pending"`
	Resolved int `json:"resolved" yaml:"resolved"`
	Failed   int `json:"failed"   yaml:"failed"`
}

// outcome of one flight. A zero expiresAt means the result is not cached.
type outcome struct {
	resp      *Response
	err       error
	expiresAt time.Time
}

// Agent turns route calls into cached, coalesced, rate-limited ESI requests.
// It is safe for concurrent use. Each agent owns its cache and limiter.
type Agent struct {
	cfg       Config
	transport *esihttp.Client
	limiter   *ratelimit.Limiter
	metrics   *metrics
	tracer    trace.Tracer
	namespace string

	mu      sync.Mutex
	entries map[string]*cacheEntry
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an agent. A nil config uses DefaultConfig.
func New(config *Config) (*Agent, error) {
	cfg, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(cfg.MetricsRegisterer)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	agent := &Agent{
		cfg:       cfg,
		transport: newTransport(cfg),
		limiter:   ratelimit.New(cfg.MaxConcurrentRequests, cfg.MinTimeBetweenRequests),
		metrics:   m,
		tracer:    tracer.Tracer(cfg.TracerProvider),
		namespace: storeNamespace(cfg),
		entries:   make(map[string]*cacheEntry),
		ctx:       ctx,
		cancel:    cancel,
	}

	if cfg.CleanupInterval > 0 {
		agent.wg.Add(1)

		go agent.janitor(cfg.CleanupInterval)
	}

	return agent, nil
}

func newTransport(cfg Config) *esihttp.Client {
	opts := []esihttp.Option{
		esihttp.WithUserAgent(cfg.UserAgent),
		esihttp.WithLogger(cfg.Logger),
		esihttp.WithDebug(cfg.Debug),
	}

	if cfg.HTTPClient != nil {
		opts = append(opts, esihttp.WithHTTPClient(cfg.HTTPClient))
	} else {
		opts = append(opts, esihttp.WithTimeout(cfg.Timeout))
	}

	if cfg.RetryMax > 0 {
		waitMin, waitMax := cfg.RetryWaitMin, cfg.RetryWaitMax
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, esihttp.WithRetryConfig(cfg.RetryMax, waitMin, waitMax))
	}

	if cfg.CircuitBreaker != nil {
		opts = append(opts, esihttp.WithCircuitBreaker(esihttp.CircuitBreakerConfig{
			MaxFailures: cfg.CircuitBreaker.MaxFailures,
			Timeout:     cfg.CircuitBreaker.Timeout,
			Interval:    cfg.CircuitBreaker.Interval,
		}))
	}

	return esihttp.NewClient(cfg.BaseURL, opts...)
}

// storeNamespace separates store records of agents that talk to different
// servers or languages but would otherwise compute equal Request Keys.
func storeNamespace(cfg Config) string {
	sum := sha256.Sum256([]byte(cfg.BaseURL + "\x00" + cfg.DataSource + "\x00" + cfg.Language))

	return hex.EncodeToString(sum[:6])
}

// Config returns a copy of the agent's configuration.
func (a *Agent) Config() Config {
	cfg := a.cfg
	cfg.Routes = a.cfg.Routes.Merge(nil)

	return cfg
}

// Routes returns a copy of the agent's route table.
func (a *Agent) Routes() Routes {
	return a.cfg.Routes.Merge(nil)
}

// Clone creates an agent with the same configuration modified by override.
// The clone has its own cache, limiter and transport.
func (a *Agent) Clone(override func(*Config)) (*Agent, error) {
	cfg := a.Config()

	if override != nil {
		override(&cfg)
	}

	return New(&cfg)
}

// Request performs a call and waits for its result. Canceling ctx abandons
// the wait only; the request itself still completes for other callers.
func (a *Agent) Request(ctx context.Context, routeID string, params *Params, token string) (*Response, error) {
	return a.Go(ctx, routeID, params, token).Wait(ctx)
}

// Go starts a call and returns its Future without waiting. An unexpired
// cached result is returned immediately. If an identical call is already in
// flight, its Future is returned and no new request is made.
func (a *Agent) Go(ctx context.Context, routeID string, params *Params, token string) *Future {
	route, ok := a.cfg.Routes.Lookup(routeID)
	if !ok {
		return settledFuture("", nil, &UnknownRouteError{RouteID: routeID})
	}

	key, err := RequestKey(routeID, params, token)
	if err != nil {
		return settledFuture("", nil, err)
	}

	a.mu.Lock()

	if a.closed {
		a.mu.Unlock()

		return settledFuture(key, nil, ErrAgentClosed)
	}

	if entry, exists := a.entries[key]; exists {
		switch {
		case entry.state == statePending:
			a.mu.Unlock()
			a.metrics.request(routeID, OutcomeCoalesced)
			a.debug("coalesced", route, key)

			return entry.future
		case time.Now().Before(entry.expiresAt):
			a.mu.Unlock()
			a.metrics.request(routeID, OutcomeHit)
			a.debug("cache hit", route, key)

			return entry.future
		}

		delete(a.entries, key)
	}

	future := newFuture(key)
	a.entries[key] = &cacheEntry{state: statePending, future: future}
	a.wg.Add(1)
	a.mu.Unlock()

	go a.fly(ctx, route, key, params, token, future)

	return future
}

// fly runs one request on a context detached from the caller and cancelled
// only by Close.
func (a *Agent) fly(callerCtx context.Context, route Route, key string, params *Params, token string, future *Future) {
	defer a.wg.Done()

	ctx, cancel := context.WithCancel(context.WithoutCancel(callerCtx))
	defer cancel()

	stop := context.AfterFunc(a.ctx, cancel)
	defer stop()

	out := a.fetch(ctx, route, key, params, token)

	a.mu.Lock()

	if entry, exists := a.entries[key]; exists && entry.future == future {
		switch {
		case out.expiresAt.IsZero():
			delete(a.entries, key)
		case out.err != nil:
			entry.state = stateFailed
			entry.expiresAt = out.expiresAt
		default:
			entry.state = stateResolved
			entry.expiresAt = out.expiresAt
		}
	}

	a.mu.Unlock()

	future.settle(out.resp, out.err)
}

func (a *Agent) fetch(ctx context.Context, route Route, key string, params *Params, token string) outcome {
	if a.cfg.Store != nil {
		if out, ok := a.fromStore(ctx, route, key); ok {
			return out
		}
	}

	req, err := a.buildRequest(route, params, token)
	if err != nil {
		return outcome{err: err}
	}

	release, err := a.limiter.Acquire(ctx)
	if err != nil {
		return outcome{err: &TransportError{RouteID: route.ID, Err: err}}
	}

	a.metrics.request(route.ID, OutcomeMiss)
	a.debug("dispatching", route, key)

	ctx, span := a.tracer.Start(ctx, "esi.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			tracer.StringAttr("esi.route", route.ID),
			tracer.StringAttr("http.request.method", route.Method),
		),
	)
	defer span.End()

	// a caller supplied client carries no timeout of ours
	dispatchCtx := ctx
	if a.cfg.HTTPClient != nil && a.cfg.Timeout > 0 {
		var cancelDispatch context.CancelFunc

		dispatchCtx, cancelDispatch = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancelDispatch()
	}

	a.metrics.inflight.Inc()
	start := time.Now()
	httpResp, err := a.transport.Do(dispatchCtx, req)
	elapsed := time.Since(start)
	a.metrics.inflight.Dec()
	release()

	now := time.Now()

	if httpResp == nil {
		a.metrics.dispatched(route.ID, 0, elapsed)

		transportErr := &TransportError{RouteID: route.ID, Err: err}
		tracer.RecordError(span, transportErr)
		a.cfg.Logger.Warn("ESI request failed", map[string]interface{}{
			"route": route.ID,
			"error": err.Error(),
		})

		return a.failure(transportErr, now.Add(a.cfg.ErrorTTL))
	}

	a.metrics.dispatched(route.ID, httpResp.StatusCode, elapsed)
	span.SetAttributes(tracer.IntAttr("http.response.status_code", httpResp.StatusCode))
	a.checkErrorLimit(route, httpResp.Headers)

	if err != nil {
		statusErr := newHTTPStatusError(route.ID, httpResp.StatusCode, httpResp.Headers, httpResp.Body)
		tracer.RecordError(span, statusErr)

		ttl := errorTTL(httpResp.StatusCode, httpResp.Headers, now, a.cfg.ErrorTTL)

		return a.failure(statusErr, now.Add(ttl))
	}

	resp, err := decodeResponse(route.ID, httpResp.StatusCode, httpResp.Headers, httpResp.Body)
	if err != nil {
		tracer.RecordError(span, err)

		return outcome{err: err}
	}

	tracer.SetOK(span)

	ttl, ok := responseTTL(httpResp.Headers, now, a.cfg.DefaultTTL)
	if !ok {
		return outcome{resp: resp}
	}

	resp.ExpiresAt = now.Add(ttl)
	a.toStore(ctx, key, resp)

	return outcome{resp: resp, expiresAt: resp.ExpiresAt}
}

func (a *Agent) failure(err error, expiresAt time.Time) outcome {
	if a.cfg.DisableErrorCaching {
		return outcome{err: err}
	}

	return outcome{err: err, expiresAt: expiresAt}
}

func (a *Agent) buildRequest(route Route, params *Params, token string) (*esihttp.Request, error) {
	if params == nil {
		params = &Params{}
	}

	path, err := route.expandPath(params.Path)
	if err != nil {
		return nil, err
	}

	query := url.Values{}

	for name, value := range params.Query {
		if value == nil {
			continue
		}

		query.Set(name, formatValue(value))
	}

	if !query.Has(constants.QueryDataSource) {
		query.Set(constants.QueryDataSource, a.cfg.DataSource)
	}

	req := &esihttp.Request{
		Method:  route.Method,
		Path:    path,
		Query:   query,
		Token:   token,
		Headers: map[string]string{"Accept-Language": a.cfg.Language},
	}

	if params.Body != nil && route.Method != http.MethodGet && route.Method != http.MethodHead {
		req.Body = params.Body
	}

	return req, nil
}

func decodeResponse(routeID string, statusCode int, header http.Header, body []byte) (*Response, error) {
	resp := &Response{
		StatusCode: statusCode,
		Header:     header,
		Pages:      pageCount(header),
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return resp, nil
	}

	err := json.Unmarshal(body, &resp.Data)
	if err != nil {
		return nil, &DecodeError{RouteID: routeID, Body: body, Err: err}
	}

	resp.Body = body

	return resp, nil
}

func pageCount(header http.Header) int {
	pages, err := strconv.Atoi(header.Get(constants.HeaderPages))
	if err != nil || pages < 0 {
		return 0
	}

	return pages
}

func (a *Agent) checkErrorLimit(route Route, header http.Header) {
	remain, err := strconv.Atoi(header.Get(constants.HeaderErrorLimitRemain))
	if err != nil || remain >= constants.ErrorLimitWarnThreshold {
		return
	}

	a.cfg.Logger.Warn("ESI error budget running low", map[string]interface{}{
		"route":  route.ID,
		"remain": remain,
		"reset":  header.Get(constants.HeaderErrorLimitReset),
	})
}

func (a *Agent) storeKey(key string) string {
	return a.namespace + "." + key
}

func (a *Agent) fromStore(ctx context.Context, route Route, key string) (outcome, bool) {
	record, err := a.cfg.Store.Get(ctx, a.storeKey(key))
	if err != nil {
		if !errors.Is(err, ErrStoreKeyNotFound) && !errors.Is(err, ErrStoreEntryExpired) &&
			!errors.Is(err, ErrStoreDisabled) && !errors.Is(err, ErrKeyNotFoundInAnyStore) {
			a.cfg.Logger.Warn("store lookup failed", map[string]interface{}{
				"route": route.ID,
				"error": err.Error(),
			})
		}

		return outcome{}, false
	}

	if !time.Now().Before(record.ExpiresAt) {
		return outcome{}, false
	}

	resp, err := decodeResponse(route.ID, record.StatusCode, record.Header, record.Body)
	if err != nil {
		return outcome{}, false
	}

	resp.ExpiresAt = record.ExpiresAt

	a.metrics.request(route.ID, OutcomeStoreHit)
	a.debug("store hit", route, key)

	return outcome{resp: resp, expiresAt: record.ExpiresAt}, true
}

func (a *Agent) toStore(ctx context.Context, key string, resp *Response) {
	if a.cfg.Store == nil {
		return
	}

	err := a.cfg.Store.Set(ctx, a.storeKey(key), &StoredResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		ExpiresAt:  resp.ExpiresAt,
	})
	if err != nil {
		a.cfg.Logger.Warn("store write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (a *Agent) debug(msg string, route Route, key string) {
	if !a.cfg.Debug {
		return
	}

	a.cfg.Logger.Debug(msg, map[string]interface{}{
		"route": route.ID,
		"key":   key,
	})
}

// Invalidate drops the cached result of one call from memory and the store.
// An in-flight request is not affected.
func (a *Agent) Invalidate(ctx context.Context, routeID string, params *Params, token string) error {
	key, err := RequestKey(routeID, params, token)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if entry, exists := a.entries[key]; exists && entry.state != statePending {
		delete(a.entries, key)
	}
	a.mu.Unlock()

	if a.cfg.Store != nil {
		return a.cfg.Store.Delete(ctx, a.storeKey(key)) //nolint:wrapcheck // store errors carry the key
	}

	return nil
}

// Purge drops every settled entry. In-flight requests are kept.
func (a *Agent) Purge() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, entry := range a.entries {
		if entry.state != statePending {
			delete(a.entries, key)
		}
	}
}

// Stats returns entry counts by state, including expired entries not yet evicted.
func (a *Agent) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	var stats Stats

	for _, entry := range a.entries {
		switch entry.state {
		case statePending:
			stats.Pending++
		case stateResolved:
			stats.Resolved++
		case stateFailed:
			stats.Failed++
		}
	}

	return stats
}

// BreakerState reports the transport circuit breaker state.
func (a *Agent) BreakerState() string {
	return a.transport.BreakerState()
}

// Close cancels in-flight requests, stops the janitor and waits for both.
// Waiters of cancelled requests receive a TransportError. The Store is not closed.
func (a *Agent) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()

		return nil
	}

	a.closed = true
	a.mu.Unlock()

	a.cancel()
	a.wg.Wait()

	return nil
}

func (a *Agent) janitor(interval time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			evicted := a.evictExpired()
			if evicted > 0 && a.cfg.Debug {
				a.cfg.Logger.Debug("evicted expired entries", map[string]interface{}{"count": evicted})
			}

			if a.cfg.Store != nil {
				if err := cleanupStore(a.cfg.Store); err != nil {
					a.cfg.Logger.Warn("store cleanup failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}
}

func (a *Agent) evictExpired() int {
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	evicted := 0

	for key, entry := range a.entries {
		if entry.state != statePending && !now.Before(entry.expiresAt) {
			delete(a.entries, key)

			evicted++
		}
	}

	return evicted
}
