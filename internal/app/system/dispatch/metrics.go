package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_deliveries_total",
			Help: "Notification deliveries by sender and outcome (sent, failed, duplicate, skipped).",
		},
		[]string{"sender", "outcome"},
	)
	deliveryRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_delivery_retries_total",
			Help: "Delivery attempts that failed and were scheduled for retry.",
		},
		[]string{"sender"},
	)
	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifyhub_delivery_duration_seconds",
			Help:    "Duration of a single send attempt.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"sender"},
	)
	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifyhub_dispatch_queue_depth",
			Help: "Deliveries waiting for a worker.",
		},
	)
)
