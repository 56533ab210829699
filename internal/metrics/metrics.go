package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Auction metrics
	AuctionsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_auctions_received_total",
		Help: "Total number of auctions received on the solve endpoint",
	})

	AuctionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_auctions_rejected_total",
			Help: "Total number of auctions rejected before solving",
		},
		[]string{"reason"},
	)

	Solutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_solutions_total",
			Help: "Total number of solve outcomes",
		},
		[]string{"outcome"},
	)

	SolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_solve_duration_seconds",
		Help:    "Time spent parsing, validating and solving one auction",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// Notification metrics
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_notifications_total",
			Help: "Total number of driver notifications received",
		},
		[]string{"kind"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solver_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Telemetry metrics
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solver_ws_clients",
		Help: "Number of connected WebSocket clients",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_events_dropped_total",
		Help: "Total number of telemetry events dropped on full subscriber buffers",
	})
)
