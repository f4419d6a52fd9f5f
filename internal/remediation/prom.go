package remediation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remediationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eribot_remediations_total",
		Help: "Remediation dispatches by issue type and result.",
	}, []string{"issue_type", "result"})

	remediationRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eribot_remediation_retries_total",
		Help: "Remediation attempts retried after a transport failure.",
	})

	remediationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eribot_remediation_duration_seconds",
		Help:    "Wall time of remediation dispatches including retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"issue_type"})
)
