// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionRequests counts SendConnectionRequest calls by outcome
	// (created, auto_accepted, duplicate, already_connected, forbidden, invalid, error).
	ConnectionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_network_connection_requests_total",
			Help: "Connection request attempts by outcome",
		},
		[]string{"outcome"},
	)

	RequestActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_network_connection_request_actions_total",
			Help: "Accept/reject/withdraw actions on connection requests",
		},
		[]string{"action", "result"},
	)

	FollowToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_network_follow_toggles_total",
			Help: "Follow toggles by resulting state",
		},
		[]string{"state"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edu_network_job_match_score",
			Help:    "Distribution of computed job match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_network_relationship_events_published_total",
			Help: "Relationship events handed to the publisher",
		},
		[]string{"type", "result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edu_network_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
