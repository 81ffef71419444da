package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/mentions"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var errReadOnly = errors.New("notifyctl is read-only")

// readOnly rejects deliveries so a stray Notify call cannot send mail.
type readOnly struct{}

func (readOnly) Deliver(context.Context, notify.UserSet, notify.Event) error { return errReadOnly }

// openService connects to MongoDB and builds a notifier over it. The
// returned func disconnects.
func openService(ctx context.Context) (*notifier.Service, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURI).
		SetServerSelectionTimeout(timeouts.Medium()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB at %s: %w", mongoURI, err)
	}

	logger := zap.NewNop()
	stores := notifier.NewStores(client.Database(database))
	engine := notify.NewEngine(stores.EngineDeps(mentions.New()), logger)
	svc := notifier.New(stores, engine, readOnly{}, logger)

	closeFn := func() { _ = client.Disconnect(context.Background()) }
	return svc, closeFn, nil
}
