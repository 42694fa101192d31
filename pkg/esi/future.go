package esi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Response is a successful ESI response. It is shared between every caller
// coalesced onto the same request and between cache hits, so treat it as
// read-only.
type Response struct {
	StatusCode int
	Header     http.Header
	// Body is the raw JSON payload.
	Body json.RawMessage
	// Data is Body decoded into generic values, nil for an empty body.
	Data any
	// ExpiresAt is when the cached copy expires, zero if it was not cached.
	ExpiresAt time.Time
	// Pages is the X-Pages header of paginated routes, 0 when absent.
	Pages int
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v) //nolint:wrapcheck // callers wrap with route context
}

// Future is the eventual outcome of a request. Every caller that asked for
// the same Request Key while it was in flight receives the same Future.
type Future struct {
	key  string
	done chan struct{}
	resp *Response
	err  error
}

func newFuture(key string) *Future {
	return &Future{key: key, done: make(chan struct{})}
}

func settledFuture(key string, resp *Response, err error) *Future {
	f := newFuture(key)
	f.settle(resp, err)

	return f
}

// Key returns the Request Key, empty when the request could not be keyed.
func (f *Future) Key() string {
	return f.key
}

// Done is closed once the outcome is known.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the outcome is known or ctx ends. Giving up on the wait
// does not cancel the request; other callers still receive its result.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err() //nolint:wrapcheck // context errors are returned as is
	}
}

// Result blocks until the outcome is known.
func (f *Future) Result() (*Response, error) {
	<-f.done

	return f.resp, f.err
}

// settle records the outcome and releases every waiter. It must be called once.
func (f *Future) settle(resp *Response, err error) {
	f.resp = resp
	f.err = err
	close(f.done)
}
