package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts sign-in attempts by provider and result (success|failure).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_login_attempts_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"provider", "result"},
	)

	// MemberSubmissions counts access request submissions by outcome (created|updated).
	MemberSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_member_submissions_total",
			Help: "Total number of access request submissions",
		},
		[]string{"outcome"},
	)

	// SearchQueries counts member searches by the branch of the search policy taken.
	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_search_queries_total",
			Help: "Total number of member searches",
		},
		[]string{"mode"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctuary_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
