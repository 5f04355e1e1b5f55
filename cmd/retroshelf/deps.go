package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/errors"
	"github.com/cristianoliveira/retroshelf/internal/kvstore"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"github.com/cristianoliveira/retroshelf/internal/prefs"
	"github.com/cristianoliveira/retroshelf/internal/query"
	"github.com/cristianoliveira/retroshelf/internal/session"
)

// app is everything a command needs, built once per process.
type app struct {
	logger  logging.Logger
	store   kvstore.Store
	prefs   *prefs.Store
	client  *api.Client
	session *session.Session
	cache   *query.Cache
	catalog *catalog.Service
	handler errors.ErrorHandler
}

// appLoader builds or returns the app. Commands take one so tests can
// supply an app wired to a test server.
type appLoader func(ctx context.Context) (*app, error)

var (
	appOnce   sync.Once
	sharedApp *app
	appErr    error
)

// loadApp wires the app from configuration on first use.
func loadApp(ctx context.Context) (*app, error) {
	appOnce.Do(func() {
		sharedApp, appErr = newApp(ctx)
	})
	return sharedApp, appErr
}

func newApp(ctx context.Context) (*app, error) {
	logger := logging.GetGlobal()
	store := kvstore.NewFromConfig()

	client, err := api.NewFromConfig(nil, api.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	sess := session.New(store, client, logger)
	client.SetTokenSource(sess)
	if err := sess.Initialize(ctx); err != nil {
		logger.Warn("session restore failed", "error", err)
	}

	cache := query.NewFromConfig(sess, query.WithLogger(logger))
	return &app{
		logger:  logger,
		store:   store,
		prefs:   prefs.NewStore(store, logger),
		client:  client,
		session: sess,
		cache:   cache,
		catalog: catalog.NewService(client, cache),
		handler: errors.NewDefaultCLIHandler(),
	}, nil
}

// close releases the store. Safe on a nil app.
func (a *app) close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", "error", err)
	}
}

// report sends err through the error dispatcher. The returned error marks
// the failure as already shown.
func (a *app) report(err error) error {
	if err == nil {
		return nil
	}
	errors.Dispatch(err, a.handler, a.session.ClearLocal)
	return fmt.Errorf("%w: %w", errReported, err)
}
