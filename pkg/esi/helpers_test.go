package esi_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/esi-client/pkg/esi"
)

// countingServer is an ESI stand-in that counts the requests it receives.
type countingServer struct {
	*httptest.Server

	hits atomic.Int32

	mu       sync.Mutex
	requests []*http.Request
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()

	server := &countingServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.hits.Add(1)

		server.mu.Lock()
		server.requests = append(server.requests, r.Clone(r.Context()))
		server.mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return server
}

func (s *countingServer) Hits() int {
	return int(s.hits.Load())
}

func (s *countingServer) LastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return nil
	}

	return s.requests[len(s.requests)-1]
}

// jsonHandler answers every request with status, body and extra headers.
func jsonHandler(status int, body string, headers map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		for key, value := range headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// newTestAgent creates an agent against baseURL with the janitor off. mutate
// may adjust the config before the agent is built.
func newTestAgent(t *testing.T, baseURL string, mutate func(*esi.Config)) *esi.Agent {
	t.Helper()

	config := &esi.Config{
		BaseURL:         baseURL,
		UserAgent:       "esi-client-test",
		CleanupInterval: -1,
	}

	if mutate != nil {
		mutate(config)
	}

	agent, err := esi.New(config)
	require.NoError(t, err)

	t.Cleanup(func() { _ = agent.Close() })

	return agent
}

func allianceParams(id int) *esi.Params {
	return &esi.Params{Path: map[string]any{"alliance_id": id}}
}
