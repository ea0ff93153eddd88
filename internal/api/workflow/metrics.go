package workflow

import (
	"errors"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as metric labels and span names
const (
	OpApply     = "apply"
	OpShortlist = "shortlist"
	OpClose     = "close"
)

// Result labels
const (
	resultSuccess  = "success"
	resultDegraded = "degraded"
	resultConflict = "conflict"
	resultNotFound = "not_found"
	resultError    = "error"
)

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_workflow_transitions_total",
		Help: "Apply, shortlist and close requests by result",
	}, []string{"operation", "result"})

	Emails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_workflow_emails_total",
		Help: "Email dispatch attempts made by the workflow",
	}, []string{"kind", "result"}) // result: sent, failed

	CloseFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_workflow_close_fanout_total",
		Help: "Per-applicant notifications attempted when a job closes",
	}, []string{"result"}) // result: notified, failed

	Duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobboard_workflow_duration_seconds",
		Help:    "Duration of workflow operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, domain.ErrConflict):
		return resultConflict
	case errors.Is(err, domain.ErrNotFound):
		return resultNotFound
	default:
		return resultError
	}
}
