package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote pipeline metrics
var (
	// VotesTotal tracks accepted votes by status label and meal period
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_total",
			Help: "Total accepted votes by status label and meal period",
		},
		[]string{"status", "period"},
	)

	// VotesRejectedTotal tracks votes rejected at the boundary
	VotesRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votes_rejected_total",
			Help: "Total votes rejected by validation",
		},
	)

	// ClassificationsTotal tracks classification outcomes by label and period
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Total classifications by resulting label and meal period",
		},
		[]string{"label", "period"},
	)

	// BusynessScore observes the blended score distribution per period
	BusynessScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "busyness_score",
			Help:    "Blended busyness score by meal period",
			Buckets: []float64{0, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 2.5, 3},
		},
		[]string{"period"},
	)

	// PublishErrors tracks failed status publishes (non-fatal)
	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_publish_errors_total",
			Help: "Total failed status publishes",
		},
	)
)

// Retention sweep metrics
var (
	// SweepRunsTotal tracks sweep executions by outcome
	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_sweep_runs_total",
			Help: "Total retention sweep runs by outcome",
		},
		[]string{"status"},
	)

	// SweepDeletedTotal tracks votes removed by the retention sweep
	SweepDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_sweep_deleted_votes_total",
			Help: "Total votes deleted by the retention sweep",
		},
	)
)

// WebSocket metrics
var (
	// WSClients tracks currently connected WebSocket clients
	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients_current",
			Help: "Currently connected WebSocket clients",
		},
	)

	// WSBroadcastsTotal tracks status payloads pushed to clients
	WSBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_broadcasts_total",
			Help: "Total status payloads broadcast to WebSocket clients",
		},
	)
)

// Redis operations metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
