// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes HTTP request latency per route and method.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seating",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// RequestTotal counts HTTP requests per route, method and status code.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// CheckInTotal counts badge check-ins, split by first scan versus repeat.
	CheckInTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "checkins_total",
			Help:      "Total number of guest check-ins",
		},
		[]string{"repeat"},
	)

	// SeatAssignmentTotal counts seat assignment attempts by outcome.
	SeatAssignmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "seat_assignments_total",
			Help:      "Total number of seat assignment attempts",
		},
		[]string{"outcome"},
	)

	// RSVPTotal counts public RSVP answers by resulting status.
	RSVPTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "rsvp_responses_total",
			Help:      "Total number of RSVP responses",
		},
		[]string{"status"},
	)
)
