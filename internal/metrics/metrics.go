// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Package metrics provides Prometheus instrumentation for the client and the
// sync pollers. Collectors are registered on the default registry via
// promauto and exposed at /metrics by the status server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts outbound REST calls by endpoint group and
	// outcome (success, error, rejected).
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palaver_api_requests_total",
			Help: "Total outbound API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// APIRequestDuration observes outbound request latency per endpoint group.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "palaver_api_request_duration_seconds",
			Help:    "Outbound API request latency",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"endpoint"},
	)

	// APIRateLimitRetries counts retries triggered by HTTP 429 responses.
	APIRateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "palaver_api_rate_limit_retries_total",
			Help: "Retries caused by HTTP 429 responses",
		},
	)

	// CircuitBreakerState reports the breaker state (0=closed, 1=half-open,
	// 2=open) per breaker name.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "palaver_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests counts breaker-wrapped calls by result
	// (success, failure, rejected).
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palaver_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"},
	)

	// PollTicks counts poll iterations by poller (conversation, inbox,
	// feed) and outcome (success, error).
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palaver_poll_ticks_total",
			Help: "Poller iterations",
		},
		[]string{"poller", "outcome"},
	)

	// MessagesSent counts dialog messages successfully confirmed by the
	// backend.
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "palaver_messages_sent_total",
			Help: "Dialog messages confirmed by the backend",
		},
	)

	// CacheHits and CacheMisses track the member lookup cache.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palaver_cache_hits_total",
			Help: "Cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palaver_cache_misses_total",
			Help: "Cache misses",
		},
		[]string{"cache"},
	)

	// SessionState reports the session lifecycle state (0=initializing,
	// 1=unauthenticated, 2=authenticated).
	SessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "palaver_session_state",
			Help: "Session state (0=initializing, 1=unauthenticated, 2=authenticated)",
		},
	)
)
