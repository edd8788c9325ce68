// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ApprovedSlotsRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "membership_slots_remaining",
			Help: "Open founding-member slots as of the last capacity check",
		},
	)

	LeadQualifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_lead_qualifications_total",
			Help: "Eligibility-test outcomes by result",
		},
		[]string{"outcome"},
	)

	ApplicationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_application_decisions_total",
			Help: "Admin review decisions by result",
		},
		[]string{"decision"},
	)
)
