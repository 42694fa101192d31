package esi

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes reported on esi_requests_total.
const (
	OutcomeHit       = "hit"
	OutcomeMiss      = "miss"
	OutcomeCoalesced = "coalesced"
	OutcomeStoreHit  = "store_hit"
)

type metrics struct {
	requests *prometheus.CounterVec
	network  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// newMetrics builds the agent collectors and registers them on reg when set.
// Agents sharing a registerer, such as clones, share the collectors.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esi",
			Name:      "requests_total",
			Help:      "Agent requests by route and cache outcome.",
		}, []string{"route", "outcome"}),
		network: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esi",
			Name:      "network_requests_total",
			Help:      "Requests sent to ESI by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esi",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to ESI.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "esi",
			Name:      "inflight_requests",
			Help:      "Requests currently waiting on ESI.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	var err error

	m.requests, err = register(reg, m.requests)
	if err != nil {
		return nil, err
	}

	m.network, err = register(reg, m.network)
	if err != nil {
		return nil, err
	}

	m.duration, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}

	m.inflight, err = register(reg, m.inflight)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	alreadyRegistered := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &alreadyRegistered) {
		if existing, ok := alreadyRegistered.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return collector, err //nolint:wrapcheck // registry errors are descriptive
}

func (m *metrics) request(route, outcome string) {
	m.requests.WithLabelValues(route, outcome).Inc()
}

func (m *metrics) dispatched(route string, code int, elapsed time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}

	m.network.WithLabelValues(route, label).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}
