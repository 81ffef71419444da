package metricsstore

import (
	"context"

	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Counts is the set of totals exported on /metrics.
type Counts struct {
	Users            int64
	BlockedUsers     int64
	Projects         int64
	Subscriptions    int64
	QueuedDeliveries int64
	FailedDeliveries int64
}

// FetchCounts returns the high-level counts.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts
	count := func(dst *int64, coll string, filter bson.M) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count(&out.Users, "users", bson.M{})
	count(&out.BlockedUsers, "users", bson.M{"status": models.UserStatusBlocked})
	count(&out.Projects, "projects", bson.M{})
	count(&out.Subscriptions, "subscriptions", bson.M{"subscribed": true})
	count(&out.QueuedDeliveries, "sent_notifications", bson.M{"status": models.DeliveryQueued})
	count(&out.FailedDeliveries, "sent_notifications", bson.M{"status": models.DeliveryFailed})
	return out
}

// Collector exports Counts as gauges, querying MongoDB once per scrape.
type Collector struct {
	db  *mongo.Database
	log *zap.Logger

	users         *prometheus.Desc
	projects      *prometheus.Desc
	subscriptions *prometheus.Desc
	deliveries    *prometheus.Desc
}

func NewCollector(db *mongo.Database, logger *zap.Logger) *Collector {
	return &Collector{
		db:  db,
		log: logger,
		users: prometheus.NewDesc("notifyhub_users",
			"Accounts by status.", []string{"status"}, nil),
		projects: prometheus.NewDesc("notifyhub_projects",
			"Projects known to the resolver.", nil, nil),
		subscriptions: prometheus.NewDesc("notifyhub_active_subscriptions",
			"Explicit subscriptions with subscribed=true.", nil, nil),
		deliveries: prometheus.NewDesc("notifyhub_sent_notifications",
			"Sent-notification markers that are not yet delivered, by status.", []string{"status"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.users
	ch <- c.projects
	ch <- c.subscriptions
	ch <- c.deliveries
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Short(), c.log, "collect store counts")
	defer cancel()
	n := FetchCounts(ctx, c.db)

	ch <- prometheus.MustNewConstMetric(c.users, prometheus.GaugeValue, float64(n.Users-n.BlockedUsers), models.UserStatusActive)
	ch <- prometheus.MustNewConstMetric(c.users, prometheus.GaugeValue, float64(n.BlockedUsers), models.UserStatusBlocked)
	ch <- prometheus.MustNewConstMetric(c.projects, prometheus.GaugeValue, float64(n.Projects))
	ch <- prometheus.MustNewConstMetric(c.subscriptions, prometheus.GaugeValue, float64(n.Subscriptions))
	ch <- prometheus.MustNewConstMetric(c.deliveries, prometheus.GaugeValue, float64(n.QueuedDeliveries), models.DeliveryQueued)
	ch <- prometheus.MustNewConstMetric(c.deliveries, prometheus.GaugeValue, float64(n.FailedDeliveries), models.DeliveryFailed)
}
