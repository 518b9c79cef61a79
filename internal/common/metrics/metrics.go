package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_remote_calls_total",
			Help: "Calls to the prediction service by call and outcome",
		},
		[]string{"call", "outcome"},
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prediction_remote_call_duration_seconds",
			Help:    "Duration of prediction service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_stale_responses_discarded_total",
			Help: "Responses dropped because a newer request superseded them",
		},
		[]string{"call"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_submissions_total",
			Help: "Submission cycles by the phase they settled in",
		},
		[]string{"phase"},
	)

	HealthScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "derived_health_score",
			Help:    "Distribution of health scores of submitted profiles",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_sessions_active",
			Help: "Number of live dashboard sessions",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
