// internal/app/bootstrap/services.go
package bootstrap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/dispatch"
	"github.com/dalemusser/notifyhub/internal/app/system/mailer"
	"github.com/dalemusser/notifyhub/internal/app/system/mentions"
	"github.com/dalemusser/notifyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/notifyhub/internal/app/system/tasks"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/dalemusser/notifyhub/internal/app/system/unsubscribe"
	"github.com/dalemusser/notifyhub/internal/app/system/workers"
	"go.uber.org/zap"
)

// services is the long-lived object graph shared by the lifecycle hooks.
type services struct {
	stores     notifier.Stores
	notifier   *notifier.Service
	dispatcher *dispatch.Dispatcher
	codec      *unsubscribe.Codec
	limiter    *ratelimit.Limiter
	runner     *workers.Runner
	cancel     context.CancelFunc
}

var (
	mu      sync.Mutex
	current *services
)

var errNotStarted = errors.New("bootstrap: Startup has not run")

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	stores := notifier.NewStores(deps.NotifyHubMongoDatabase)
	engine := notify.NewEngine(stores.EngineDeps(mentions.New()), logger.Named("notify"))

	codec := unsubscribe.NewCodec(
		[]byte(appCfg.UnsubscribeHashKey),
		blockKey(appCfg.UnsubscribeBlockKey),
		appCfg.SentNotificationRetention)

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger.Named("mailer"))

	sender := dispatch.NewMailSender(dispatch.MailSenderConfig{
		Mailer:   mail,
		Projects: stores.Projects,
		Items:    stores.Items,
		Actors:   stores.Users,
		Tokens:   codec,
		SiteName: appCfg.SiteName,
		BaseURL:  appCfg.BaseURL,
	})

	disp := dispatch.New(dispatch.Config{
		Workers:       appCfg.DispatchWorkers,
		QueueSize:     appCfg.DispatchQueueSize,
		RatePerSecond: float64(appCfg.DispatchRatePerSecond),
		MaxAttempts:   appCfg.DispatchMaxAttempts,
	}, stores.Sent, stores.Users, sender, logger.Named("dispatch"))

	runner := workers.NewRunner(logger, timeouts.Long(),
		tasks.SentNotificationCleanupJob(stores.Sent, logger, appCfg.SentNotificationRetention))

	return &services{
		stores:     stores,
		notifier:   notifier.New(stores, engine, disp, logger.Named("notifier")),
		dispatcher: disp,
		codec:      codec,
		limiter:    ratelimit.New(appCfg.UnsubscribeRateLimit, time.Minute),
		runner:     runner,
	}
}

func blockKey(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}

func (s *services) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.dispatcher.Start(ctx)
	s.runner.Start()
}

// stop drains pending deliveries before cancelling the workers' context,
// so queued mail still goes out on a clean shutdown.
func (s *services) stop() {
	s.runner.Stop()
	s.dispatcher.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.limiter.Stop()
}
