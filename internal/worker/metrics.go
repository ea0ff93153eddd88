package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Deliveries counts settled queue messages by result
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Subsystem: "mailer",
		Name:      "deliveries_total",
		Help:      "Queued email messages by settlement result.",
	}, []string{"result"})

	SendRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jobboard",
		Subsystem: "mailer",
		Name:      "send_retries_total",
		Help:      "Failed send attempts that were retried or exhausted.",
	})

	SendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jobboard",
		Subsystem: "mailer",
		Name:      "send_duration_seconds",
		Help:      "Time spent in a single transport send.",
		Buckets:   prometheus.DefBuckets,
	})
)
