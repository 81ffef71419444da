package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_resolutions_total",
			Help: "Recipient resolutions by event kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	recipientCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notifyhub_resolution_recipients",
			Help:    "Number of recipients per resolved event.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
)
