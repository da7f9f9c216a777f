package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_assignments_total",
		Help: "Agent assignment attempts by result.",
	}, []string{"result"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_status_transitions_total",
		Help: "Applied status transitions by target status.",
	}, []string{"status"})

	UpvoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_upvote_toggles_total",
		Help: "Upvote toggles by action (added, removed).",
	}, []string{"action"})

	Normalizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_normalizations_total",
		Help: "Sub-category normalization calls by outcome.",
	}, []string{"outcome"})

	HubViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_viewers",
		Help: "Connected live-update viewers on this instance.",
	})

	HubDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_dropped_messages_total",
		Help: "Broadcasts dropped because the hub queue was full.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
)

// Label values.
const (
	ResultAssigned = "assigned"
	ResultNoAgent  = "no_agent"
	ResultConflict = "conflict"

	OutcomeStandardized = "standardized"
	OutcomeFallback     = "fallback"
	OutcomeSkipped      = "skipped"
)
