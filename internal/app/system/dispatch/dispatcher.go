// Package dispatch delivers resolved recipient sets.
//
// Each recipient becomes an independent job on a bounded queue drained by a
// fixed worker pool. A sent-notification marker per (event, recipient) makes
// redelivery of an event a no-op for recipients already sent to, and every
// job retries with exponential backoff on its own, so one bad address never
// holds up the rest.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrStopped is returned by Deliver after Stop.
var ErrStopped = errors.New("dispatch: dispatcher stopped")

var errNoEventID = errors.New("dispatch: event has no id")

// MarkerStore persists the per-(event, recipient) delivery markers.
type MarkerStore interface {
	Record(ctx context.Context, m models.SentNotification) (models.SentNotification, bool, error)
	MarkAttempt(ctx context.Context, id primitive.ObjectID) error
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, lastErr string) error
}

// UserLookup loads recipient accounts.
type UserLookup interface {
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Config tunes the worker pool.
type Config struct {
	Workers   int
	QueueSize int
	// RatePerSecond caps sends across all workers. Zero means no limit.
	RatePerSecond float64
	MaxAttempts   int
	// Backoff is the delay before the first retry. It doubles per attempt.
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Backoff <= 0 {
		c.Backoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Minute
	}
	return c
}

// Dispatcher implements notify.Dispatcher.
type Dispatcher struct {
	cfg     Config
	markers MarkerStore
	users   UserLookup
	sender  Sender
	limiter *rate.Limiter
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Delivery
	wg     sync.WaitGroup
	start  sync.Once
	stop   sync.Once
}

var _ notify.Dispatcher = (*Dispatcher)(nil)

// New creates a dispatcher. Call Start before Deliver.
func New(cfg Config, markers MarkerStore, users UserLookup, sender Sender, logger *zap.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	d := &Dispatcher{
		cfg:     cfg,
		markers: markers,
		users:   users,
		sender:  sender,
		log:     logger.Named("dispatch"),
		queue:   make(chan Delivery, cfg.QueueSize),
	}
	if cfg.RatePerSecond > 0 {
		burst := max(1, int(cfg.RatePerSecond))
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return d
}

// Start launches the workers. ctx bounds retries and rate-limit waits; when
// it is cancelled, queued jobs are marked failed instead of being sent.
func (d *Dispatcher) Start(ctx context.Context) {
	d.start.Do(func() {
		for range d.cfg.Workers {
			d.wg.Add(1)
			go d.worker(ctx)
		}
		d.log.Info("dispatcher started",
			zap.String("sender", d.sender.Name()),
			zap.Int("workers", d.cfg.Workers),
			zap.Int("queue_size", d.cfg.QueueSize),
			zap.Float64("rate_per_second", d.cfg.RatePerSecond))
	})
}

// Stop rejects new deliveries, drains the queue and waits for the workers.
func (d *Dispatcher) Stop() {
	d.stop.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
		d.log.Info("dispatcher stopped")
	})
}

// Deliver records a marker for every recipient and queues the ones not yet
// sent. It returns once the jobs are queued; sending happens in the
// background. Blocks while the queue is full.
func (d *Dispatcher) Deliver(ctx context.Context, recipients notify.UserSet, ev notify.Event) error {
	if ev.ID == "" {
		return errNoEventID
	}
	if recipients.Len() == 0 {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrStopped
	}

	users, err := d.users.ListByIDs(ctx, recipients.Sorted())
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}

	for _, u := range users {
		marker, created, err := d.markers.Record(ctx, markerFor(ev, u.ID))
		if err != nil {
			return fmt.Errorf("record delivery for %s: %w", u.ID.Hex(), err)
		}
		if !created && marker.Status == models.DeliverySent {
			deliveriesTotal.WithLabelValues(d.sender.Name(), "duplicate").Inc()
			d.log.Debug("already delivered",
				zap.String("event_id", ev.ID),
				zap.String("recipient", u.ID.Hex()))
			continue
		}

		select {
		case d.queue <- Delivery{Marker: marker, Recipient: u, Event: ev}:
			queueDepth.Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func markerFor(ev notify.Event, recipient primitive.ObjectID) models.SentNotification {
	m := models.SentNotification{
		EventID:     ev.ID,
		EventKind:   string(ev.Kind),
		RecipientID: recipient,
		ProjectID:   ev.Project.ID,
	}
	if ev.Item != nil {
		id := ev.Item.ID
		m.ItemID = &id
		m.ItemType = string(ev.Item.Kind)
	}
	return m
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for dl := range d.queue {
		queueDepth.Dec()
		d.deliver(ctx, dl)
	}
}

// deliver runs one job to completion: sent, or failed after the last attempt.
func (d *Dispatcher) deliver(ctx context.Context, dl Delivery) {
	name := d.sender.Name()
	log := d.log.With(
		zap.String("event_id", dl.Event.ID),
		zap.String("event_kind", string(dl.Event.Kind)),
		zap.String("recipient", dl.Recipient.ID.Hex()))

	for attempt := 1; ; attempt++ {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				d.fail(dl, log, err)
				return
			}
		}
		d.mark(func(c context.Context) error { return d.markers.MarkAttempt(c, dl.Marker.ID) }, log)

		sendCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Delivery(), log, "send notification")
		start := time.Now()
		err := d.sender.Send(sendCtx, dl)
		cancel()
		deliveryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err == nil {
			d.mark(func(c context.Context) error { return d.markers.MarkSent(c, dl.Marker.ID) }, log)
			deliveriesTotal.WithLabelValues(name, "sent").Inc()
			log.Debug("notification sent", zap.Int("attempt", attempt))
			return
		}
		if IsPermanent(err) || attempt >= d.cfg.MaxAttempts {
			d.fail(dl, log, err)
			return
		}

		deliveryRetries.WithLabelValues(name).Inc()
		wait := d.backoff(attempt)
		log.Warn("send failed, will retry",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			d.fail(dl, log, errors.Join(err, ctx.Err()))
			return
		}
	}
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	if attempt > 30 {
		return d.cfg.MaxBackoff
	}
	wait := d.cfg.Backoff << (attempt - 1)
	if wait <= 0 || wait > d.cfg.MaxBackoff {
		return d.cfg.MaxBackoff
	}
	return wait
}

func (d *Dispatcher) fail(dl Delivery, log *zap.Logger, err error) {
	d.mark(func(c context.Context) error { return d.markers.MarkFailed(c, dl.Marker.ID, err.Error()) }, log)
	deliveriesTotal.WithLabelValues(d.sender.Name(), "failed").Inc()
	log.Error("notification not delivered", zap.Error(err))
}

// mark updates the marker on a context detached from the worker's, so a
// shutdown does not lose the outcome of a job that already ran.
func (d *Dispatcher) mark(update func(context.Context) error, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()
	if err := update(ctx); err != nil {
		log.Warn("update delivery marker", zap.Error(err))
	}
}
