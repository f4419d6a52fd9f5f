package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "eribot_notifications_total",
	Help: "Notification pipeline results by severity.",
}, []string{"severity", "result"})
