package esi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/fivetwenty-io/esi-client/pkg/esi"
)

const statusBody = `{"players":23456,"server_version":"2345678","start_time":"2026-10-17T11:05:00Z"}`

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		agent, err := esi.New(nil)
		require.NoError(t, err)

		defer func() { _ = agent.Close() }()

		cfg := agent.Config()
		assert.Equal(t, "https://esi.evetech.net/latest", cfg.BaseURL)
		assert.Equal(t, "tranquility", cfg.DataSource)
		assert.NotEmpty(t, cfg.UserAgent)
		assert.Positive(t, cfg.DefaultTTL)
		assert.Positive(t, cfg.ErrorTTL)

		_, ok := agent.Routes().Lookup("get_status")
		assert.True(t, ok)
	})

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := esi.New(&esi.Config{BaseURL: "not a url"})
		require.ErrorIs(t, err, esi.ErrInvalidConfig)
	})

	t.Run("negative limits", func(t *testing.T) {
		t.Parallel()

		_, err := esi.New(&esi.Config{MaxConcurrentRequests: -1})
		require.ErrorIs(t, err, esi.ErrInvalidConfig)

		_, err = esi.New(&esi.Config{MinTimeBetweenRequests: -time.Second})
		require.ErrorIs(t, err, esi.ErrInvalidConfig)
	})
}

func TestAgent_Coalescing(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}

		jsonHandler(http.StatusOK, statusBody, nil)(w, r)
	})

	agent := newTestAgent(t, server.URL, nil)
	ctx := context.Background()

	futures := make([]*esi.Future, 10)
	for i := range futures {
		futures[i] = agent.Go(ctx, "get_status", nil, "")
	}

	for _, future := range futures[1:] {
		assert.Same(t, futures[0], future)
	}

	assert.Equal(t, esi.Stats{Pending: 1}, agent.Stats())

	close(release)

	results := make([]*esi.Response, len(futures))

	var wg sync.WaitGroup
	for i, future := range futures {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := future.Wait(ctx)
			assert.NoError(t, err)

			results[i] = resp
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, server.Hits())

	for _, resp := range results[1:] {
		assert.Same(t, results[0], resp)
	}

	assert.Equal(t, esi.Stats{Resolved: 1}, agent.Stats())
}

func TestAgent_ConcurrentRequestsShareOneDispatch(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		jsonHandler(http.StatusOK, statusBody, nil)(w, r)
	})

	agent := newTestAgent(t, server.URL, nil)

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := agent.Request(context.Background(), "get_status", nil, "")
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, server.Hits())
}

//nolint:funlen
func TestAgent_Caching(t *testing.T) {
	t.Parallel()

	t.Run("cache hit returns the same response", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody,
			map[string]string{"Cache-Control": "public, max-age=60"}))
		agent := newTestAgent(t, server.URL, nil)

		first, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		second, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, server.Hits())
		assert.WithinDuration(t, time.Now().Add(time.Minute), first.ExpiresAt, 5*time.Second)
	})

	t.Run("expires header", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, map[string]string{
			"Date":    now.Format(http.TimeFormat),
			"Expires": now.Add(60 * time.Second).Format(http.TimeFormat),
		}))
		agent := newTestAgent(t, server.URL, nil)

		status, err := esi.Do[esi.ServerStatus](context.Background(), agent, "get_status", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 23456, status.Players)

		_, err = esi.Do[esi.ServerStatus](context.Background(), agent, "get_status", nil, "")
		require.NoError(t, err)

		assert.Equal(t, 1, server.Hits())
	})

	t.Run("default TTL expires", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.DefaultTTL = 50 * time.Millisecond
		})

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 1, server.Hits())

		time.Sleep(100 * time.Millisecond)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 2, server.Hits())
	})

	t.Run("no-store is not cached", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody,
			map[string]string{"Cache-Control": "no-store"}))
		agent := newTestAgent(t, server.URL, nil)

		for range 3 {
			resp, err := agent.Request(context.Background(), "get_status", nil, "")
			require.NoError(t, err)
			assert.True(t, resp.ExpiresAt.IsZero())
		}

		assert.Equal(t, 3, server.Hits())
		assert.Equal(t, esi.Stats{}, agent.Stats())
	})

	t.Run("max-age zero is not cached", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody,
			map[string]string{"Cache-Control": "max-age=0"}))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		assert.Equal(t, 2, server.Hits())
	})

	t.Run("past expires is not cached", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, map[string]string{
			"Expires": time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat),
		}))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		assert.Equal(t, 2, server.Hits())
	})
}

func TestAgent_KeySensitivity(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/alliances/"), "/")
		jsonHandler(http.StatusOK, `{"name":"alliance `+name+`","ticker":"T"}`,
			map[string]string{"Cache-Control": "max-age=300"})(w, r)
	})
	agent := newTestAgent(t, server.URL, nil)
	ctx := context.Background()

	one, err := esi.Do[esi.Alliance](ctx, agent, "get_alliances_alliance_id", allianceParams(1), "")
	require.NoError(t, err)

	two, err := esi.Do[esi.Alliance](ctx, agent, "get_alliances_alliance_id", allianceParams(2), "")
	require.NoError(t, err)

	assert.Equal(t, "alliance 1", one.Name)
	assert.Equal(t, "alliance 2", two.Name)
	assert.Equal(t, 2, server.Hits())

	_, err = agent.Request(ctx, "get_alliances_alliance_id", allianceParams(1), "")
	require.NoError(t, err)
	assert.Equal(t, 2, server.Hits())

	_, err = agent.Request(ctx, "get_alliances_alliance_id", allianceParams(1), "token-a")
	require.NoError(t, err)
	assert.Equal(t, 3, server.Hits())

	_, err = agent.Request(ctx, "get_alliances_alliance_id",
		&esi.Params{Path: map[string]any{"alliance_id": 1}, Query: map[string]any{"page": 1}}, "")
	require.NoError(t, err)
	assert.Equal(t, 4, server.Hits())
}

func TestAgent_OutboundRequest(t *testing.T) {
	t.Parallel()

	t.Run("GET with path, query and token", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, `[]`, nil))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.Language = "de"
		})

		params := &esi.Params{
			Path:  map[string]any{"region_id": 10000002},
			Query: map[string]any{"order_type": "sell", "type_id": []int{34, 35}, "skip": nil},
		}

		_, err := agent.Request(context.Background(), "get_markets_region_id_orders", params, "secret-token")
		require.NoError(t, err)

		req := server.LastRequest()
		require.NotNil(t, req)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/markets/10000002/orders/", req.URL.Path)
		assert.Equal(t, "sell", req.URL.Query().Get("order_type"))
		assert.Equal(t, "34,35", req.URL.Query().Get("type_id"))
		assert.False(t, req.URL.Query().Has("skip"))
		assert.Equal(t, "tranquility", req.URL.Query().Get("datasource"))
		assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
		assert.Equal(t, "de", req.Header.Get("Accept-Language"))
		assert.Equal(t, "esi-client-test", req.Header.Get("User-Agent"))
	})

	t.Run("explicit datasource wins", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_status",
			&esi.Params{Query: map[string]any{"datasource": "singularity"}}, "")
		require.NoError(t, err)

		assert.Equal(t, "singularity", server.LastRequest().URL.Query().Get("datasource"))
		assert.Empty(t, server.LastRequest().Header.Get("Authorization"))
	})

	t.Run("POST sends the body as JSON", func(t *testing.T) {
		t.Parallel()

		var received atomic.Value

		server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			received.Store(string(body))
			jsonHandler(http.StatusOK, `[{"id":95465499,"name":"CCP Bartender","category":"character"}]`, nil)(w, r)
		})
		agent := newTestAgent(t, server.URL, nil)

		names, err := esi.Do[[]esi.UniverseName](context.Background(), agent, "post_universe_names",
			&esi.Params{Body: []int64{95465499}}, "")
		require.NoError(t, err)
		require.Len(t, names, 1)
		assert.Equal(t, "CCP Bartender", names[0].Name)

		assert.Equal(t, http.MethodPost, server.LastRequest().Method)
		assert.JSONEq(t, `[95465499]`, received.Load().(string))
	})
}

func TestAgent_RateLimiting(t *testing.T) {
	t.Parallel()

	t.Run("max concurrent requests", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32

		server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}

			time.Sleep(20 * time.Millisecond)
			current.Add(-1)

			jsonHandler(http.StatusOK, `{}`, nil)(w, r)
		})

		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.MaxConcurrentRequests = 1
		})

		var wg sync.WaitGroup
		for id := 1; id <= 4; id++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := agent.Request(context.Background(), "get_alliances_alliance_id", allianceParams(id), "")
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		assert.Equal(t, 4, server.Hits())
		assert.Equal(t, int32(1), peak.Load())
	})

	t.Run("min time between requests", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, `{}`, nil))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.MinTimeBetweenRequests = 50 * time.Millisecond
		})

		start := time.Now()

		for id := 1; id <= 3; id++ {
			_, err := agent.Request(context.Background(), "get_alliances_alliance_id", allianceParams(id), "")
			require.NoError(t, err)
		}

		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
		assert.Equal(t, 3, server.Hits())
	})

	t.Run("cache hits bypass limits", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.MinTimeBetweenRequests = time.Second
		})

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)

		start := time.Now()

		for range 5 {
			_, err = agent.Request(context.Background(), "get_status", nil, "")
			require.NoError(t, err)
		}

		assert.Less(t, time.Since(start), 500*time.Millisecond)
		assert.Equal(t, 1, server.Hits())
	})
}

//nolint:funlen
func TestAgent_NegativeCaching(t *testing.T) {
	t.Parallel()

	t.Run("status error is cached for ErrorTTL", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusInternalServerError,
			`{"error":"Internal server error"}`, nil))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.ErrorTTL = 100 * time.Millisecond
		})

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.Error(t, err)

		var statusErr *esi.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, "Internal server error", statusErr.Message)
		assert.Equal(t, "get_status", statusErr.RouteID)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.Error(t, err)
		assert.Equal(t, 1, server.Hits())
		assert.Equal(t, esi.Stats{Failed: 1}, agent.Stats())

		time.Sleep(150 * time.Millisecond)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.Error(t, err)
		assert.Equal(t, 2, server.Hits())
	})

	t.Run("disabled error caching", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusNotFound, `{"error":"Alliance not found"}`, nil))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.DisableErrorCaching = true
		})

		for range 2 {
			_, err := agent.Request(context.Background(), "get_alliances_alliance_id", allianceParams(1), "")
			require.Error(t, err)
			assert.True(t, esi.IsNotFound(err))
		}

		assert.Equal(t, 2, server.Hits())
	})

	t.Run("retry-after extends the error TTL", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusServiceUnavailable, `{"error":"down"}`,
			map[string]string{"Retry-After": "120"}))
		agent := newTestAgent(t, server.URL, func(c *esi.Config) {
			c.ErrorTTL = 10 * time.Millisecond
		})

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.Error(t, err)

		time.Sleep(30 * time.Millisecond)

		_, err = agent.Request(context.Background(), "get_status", nil, "")
		require.Error(t, err)
		assert.Equal(t, 1, server.Hits())
	})

	t.Run("error limited", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(420, `{"error":"This software has exceeded the error limit for ESI."}`,
			map[string]string{"X-Esi-Error-Limit-Remain": "0", "X-Esi-Error-Limit-Reset": "30"}))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.Error(t, err)
		assert.True(t, esi.IsErrorLimited(err))
	})

	t.Run("transport error is cached", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
		baseURL := server.URL
		server.Close()

		agent := newTestAgent(t, baseURL, nil)

		first := agent.Go(context.Background(), "get_status", nil, "")

		_, err := first.Result()
		require.Error(t, err)
		assert.True(t, esi.IsTransport(err))

		second := agent.Go(context.Background(), "get_status", nil, "")
		assert.Same(t, first, second)
		assert.Equal(t, esi.Stats{Failed: 1}, agent.Stats())
	})
}

func TestAgent_NotCachedFailures(t *testing.T) {
	t.Parallel()

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_nonexistent_thing", nil, "")
		require.ErrorIs(t, err, esi.ErrUnknownRoute)

		var unknown *esi.UnknownRouteError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "get_nonexistent_thing", unknown.RouteID)

		assert.Equal(t, 0, server.Hits())
		assert.Equal(t, esi.Stats{}, agent.Stats())
	})

	t.Run("decode error", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, `<html>maintenance</html>`,
			map[string]string{"Cache-Control": "max-age=300"}))
		agent := newTestAgent(t, server.URL, nil)

		for range 2 {
			_, err := agent.Request(context.Background(), "get_status", nil, "")

			var decodeErr *esi.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, "get_status", decodeErr.RouteID)
		}

		assert.Equal(t, 2, server.Hits())
		assert.Equal(t, esi.Stats{}, agent.Stats())
	})

	t.Run("missing path parameter", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, `{}`, nil))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_alliances_alliance_id", nil, "")
		require.ErrorIs(t, err, esi.ErrMissingPathParameter)
		assert.Equal(t, 0, server.Hits())
	})

	t.Run("unserializable params", func(t *testing.T) {
		t.Parallel()

		server := newCountingServer(t, jsonHandler(http.StatusOK, `{}`, nil))
		agent := newTestAgent(t, server.URL, nil)

		_, err := agent.Request(context.Background(), "get_status",
			&esi.Params{Query: map[string]any{"bad": make(chan int)}}, "")
		require.ErrorIs(t, err, esi.ErrInvalidParams)
		assert.Equal(t, 0, server.Hits())
	})
}

func TestAgent_EmptyBody(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	agent := newTestAgent(t, server.URL, nil)

	resp, err := agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, resp.Data)
	assert.Empty(t, resp.Body)
}

func TestAgent_CallerCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}

		jsonHandler(http.StatusOK, statusBody, nil)(w, r)
	})
	agent := newTestAgent(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	future := agent.Go(ctx, "get_status", nil, "")

	require.Eventually(t, func() bool { return server.Hits() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	_, err := future.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	close(release)

	resp, err := future.Result()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, server.Hits())
}

func TestAgent_Close(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	agent, err := esi.New(&esi.Config{BaseURL: server.URL, CleanupInterval: -1})
	require.NoError(t, err)

	future := agent.Go(context.Background(), "get_status", nil, "")

	require.Eventually(t, func() bool { return server.Hits() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, agent.Close())

	select {
	case <-future.Done():
	default:
		t.Fatal("in-flight request was not settled by Close")
	}

	_, err = future.Result()
	require.Error(t, err)
	assert.True(t, esi.IsTransport(err))

	_, err = agent.Request(context.Background(), "get_status", nil, "")
	require.ErrorIs(t, err, esi.ErrAgentClosed)

	require.NoError(t, agent.Close())
}

func TestAgent_Clone(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
	agent := newTestAgent(t, server.URL, nil)

	clone, err := agent.Clone(func(c *esi.Config) {
		c.Language = "fr"
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = clone.Close() })

	_, err = agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)

	_, err = clone.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 2, server.Hits())
	assert.Equal(t, "fr", server.LastRequest().Header.Get("Accept-Language"))
	assert.Equal(t, "en", agent.Config().Language)
	assert.Equal(t, len(agent.Routes()), len(clone.Routes()))

	require.NoError(t, clone.Close())

	_, err = agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)
}

func TestAgent_RouteTableIsCopied(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
	routes := esi.DefaultRoutes()
	agent := newTestAgent(t, server.URL, func(c *esi.Config) { c.Routes = routes })

	delete(routes, "get_status")

	_, err := agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)

	agent.Routes()["get_injected"] = esi.Route{ID: "get_injected", Method: http.MethodGet, Path: "/injected/"}

	config := agent.Config()
	config.Routes["get_configured"] = esi.Route{ID: "get_configured", Method: http.MethodGet, Path: "/configured/"}

	for _, id := range []string{"get_injected", "get_configured"} {
		_, ok := agent.Routes().Lookup(id)
		assert.False(t, ok, id)

		_, err = agent.Request(context.Background(), id, nil, "")
		require.ErrorIs(t, err, esi.ErrUnknownRoute, id)
	}

	assert.Equal(t, 1, server.Hits())
}

func TestAgent_TimeoutWithCustomHTTPClient(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})

	agent := newTestAgent(t, server.URL, func(c *esi.Config) {
		c.HTTPClient = &http.Client{}
		c.Timeout = 50 * time.Millisecond
	})

	start := time.Now()
	_, err := agent.Request(context.Background(), "get_status", nil, "")

	require.Error(t, err)
	assert.True(t, esi.IsTransport(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAgent_Store(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody,
		map[string]string{"Cache-Control": "max-age=60"}))
	store := esi.NewMemoryStore(100)

	first := newTestAgent(t, server.URL, func(c *esi.Config) { c.Store = store })
	second := newTestAgent(t, server.URL, func(c *esi.Config) { c.Store = store })

	_, err := first.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	resp, err := second.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, server.Hits())
	assert.JSONEq(t, statusBody, string(resp.Body))
	assert.WithinDuration(t, time.Now().Add(time.Minute), resp.ExpiresAt, 5*time.Second)

	german := newTestAgent(t, server.URL, func(c *esi.Config) {
		c.Store = store
		c.Language = "de"
	})

	_, err = german.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, server.Hits())
}

func TestAgent_InvalidateAndPurge(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
	store := esi.NewMemoryStore(10)
	agent := newTestAgent(t, server.URL, func(c *esi.Config) { c.Store = store })
	ctx := context.Background()

	_, err := agent.Request(ctx, "get_status", nil, "")
	require.NoError(t, err)

	require.NoError(t, agent.Invalidate(ctx, "get_status", nil, ""))
	assert.Equal(t, esi.Stats{}, agent.Stats())
	assert.Equal(t, 0, store.Len())

	_, err = agent.Request(ctx, "get_status", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, server.Hits())

	_, err = agent.Request(ctx, "get_alliances_alliance_id", allianceParams(1), "")
	require.NoError(t, err)
	assert.Equal(t, esi.Stats{Resolved: 2}, agent.Stats())

	agent.Purge()
	assert.Equal(t, esi.Stats{}, agent.Stats())
}

func TestAgent_Janitor(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
	agent := newTestAgent(t, server.URL, func(c *esi.Config) {
		c.DefaultTTL = 20 * time.Millisecond
		c.CleanupInterval = 10 * time.Millisecond
	})

	_, err := agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return agent.Stats() == esi.Stats{}
	}, time.Second, 10*time.Millisecond)
}

func TestAgent_Metrics(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, jsonHandler(http.StatusOK, statusBody, nil))
	registry := prometheus.NewRegistry()
	agent := newTestAgent(t, server.URL, func(c *esi.Config) { c.MetricsRegisterer = registry })

	for range 3 {
		_, err := agent.Request(context.Background(), "get_status", nil, "")
		require.NoError(t, err)
	}

	expected := `
# HELP esi_requests_total Agent requests by route and cache outcome.
# TYPE esi_requests_total counter
esi_requests_total{outcome="hit",route="get_status"} 2
esi_requests_total{outcome="miss",route="get_status"} 1
# HELP esi_network_requests_total Requests sent to ESI by route and status code.
# TYPE esi_network_requests_total counter
esi_network_requests_total{code="200",route="get_status"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"esi_requests_total", "esi_network_requests_total"))

	clone, err := agent.Clone(nil)
	require.NoError(t, err)
	require.NoError(t, clone.Close())
}

func TestAgent_Tracing(t *testing.T) {
	t.Parallel()

	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/status") {
			jsonHandler(http.StatusOK, statusBody, nil)(w, r)

			return
		}

		jsonHandler(http.StatusForbidden, `{"error":"token not valid for scope"}`, nil)(w, r)
	})

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	agent := newTestAgent(t, server.URL, func(c *esi.Config) { c.TracerProvider = provider })

	_, err := agent.Request(context.Background(), "get_status", nil, "")
	require.NoError(t, err)

	_, err = agent.Request(context.Background(), "get_characters_character_id_wallet",
		&esi.Params{Path: map[string]any{"character_id": 90000001}}, "token")
	require.Error(t, err)
	assert.True(t, esi.IsForbidden(err))

	require.NoError(t, agent.Close())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	for _, span := range spans {
		assert.Equal(t, "esi.dispatch", span.Name)
	}

	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestResponse_Decode(t *testing.T) {
	t.Parallel()

	resp := &esi.Response{Body: json.RawMessage(statusBody)}

	var status esi.ServerStatus
	require.NoError(t, resp.Decode(&status))
	assert.Equal(t, "2345678", status.ServerVersion)

	bad := &esi.Response{Body: json.RawMessage(`{`)}
	assert.Error(t, bad.Decode(&status))
	assert.False(t, errors.Is(bad.Decode(&status), esi.ErrUnknownRoute))
}
