package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eribot_checks_total",
			Help: "Total metric checks performed, by kind and result.",
		},
		[]string{"kind", "result"},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eribot_alert_transitions_total",
			Help: "Total alert state transitions, by kind and event.",
		},
		[]string{"kind", "event"},
	)

	tickSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eribot_tick_skips_total",
			Help: "Total ticks skipped because the previous tick overran the check interval.",
		},
	)

	tickDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eribot_tick_duration_seconds",
			Help: "Duration of the most recent evaluation tick in seconds.",
		},
	)
)
