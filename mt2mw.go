// Package mt2mw migrates a MindTouch wiki into a MediaWiki installation.
//
// The whole source page tree is fetched first, then every page is written to
// the target in pre-order together with its attachments, and finally the
// target's main page setting is pointed at the migrated homepage.
//
// Basic usage:
//
//	cfg, err := config.LoadConfig(".env", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := mt2mw.New(mt2mw.WithConfig(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	summary, err := client.Run(ctx)
package mt2mw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/mt2mw/application/service"
	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/infrastructure/ingest"
	"github.com/helixml/mt2mw/infrastructure/markup"
	"github.com/helixml/mt2mw/infrastructure/mediawiki"
	"github.com/helixml/mt2mw/infrastructure/mindtouch"
	"github.com/helixml/mt2mw/infrastructure/persistence"
	"github.com/helixml/mt2mw/infrastructure/tracking"
	"github.com/helixml/mt2mw/infrastructure/transport"
	"github.com/helixml/mt2mw/internal/config"
	"github.com/helixml/mt2mw/internal/database"
	"github.com/helixml/mt2mw/internal/log"
)

// Client runs migrations between one source and one target wiki.
type Client struct {
	app       config.AppConfig
	migration *service.Migration
	target    *mediawiki.Client
	metrics   *tracking.MetricsReporter
	db        *database.Database
	logger    *log.Logger
	now       func() time.Time
	closed    atomic.Bool
	mu        sync.Mutex
}

// New creates a Client. The configuration is validated and, for direct
// storage, the storage database is opened; no wiki is contacted yet.
// Every error returned is a *migration.FatalError.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.appSet {
		return nil, migration.NewFatalError(migration.StageConfig, ErrNoConfig)
	}
	app := cfg.app

	publishOptions := migration.PublishOptions{
		CopyPages:     app.Publish().CopyPages(),
		CopyFiles:     app.Publish().CopyFiles(),
		ShowSubpages:  app.Publish().ShowSubpages(),
		ShowFiles:     app.Publish().ShowFiles(),
		Hierarchical:  app.Publish().Hierarchical(),
		SkipPatterns:  app.Publish().SkipPaths(),
		MainPageTitle: app.Target().MainPage(),
	}
	if err := errors.Join(app.Validate(), publishOptions.Validate()); err != nil {
		return nil, migration.NewFatalError(migration.StageConfig, err)
	}

	var logger *log.Logger
	if cfg.logWriter != nil {
		logger = log.NewLoggerWithWriter(cfg.logWriter, app.LogFormat(), app.LogLevel())
	} else {
		logger = log.NewLogger(app)
	}
	slogger := logger.Slog()

	sourceHTTP, err := sourceClient(app, cfg.transport)
	if err != nil {
		_ = logger.Close()
		return nil, migration.NewFatalError(migration.StageConfig, err)
	}
	targetHTTP := &http.Client{Timeout: app.HTTPTimeout(), Transport: cfg.transport}
	target, err := mediawiki.NewClient(app.Target().URL(), targetHTTP, slogger)
	if err != nil {
		_ = logger.Close()
		return nil, migration.NewFatalError(migration.StageConfig, err)
	}

	metrics := tracking.NewMetricsReporter()
	tracker := tracking.NewTracker(slogger)
	tracker.Subscribe(tracking.NewLoggingReporter(slogger))
	tracker.Subscribe(metrics)

	client := &Client{
		app:     app,
		target:  target,
		metrics: metrics,
		logger:  logger,
		now:     cfg.now,
	}

	var ingester migration.FileIngester
	if app.Storage().Direct() {
		direct, err := client.directStorage(cfg, sourceHTTP)
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		ingester = direct
	} else {
		var remoteOpts []ingest.RemoteOption
		if cfg.sleeper != nil {
			remoteOpts = append(remoteOpts, ingest.WithSleeper(cfg.sleeper))
		}
		ingester = ingest.NewRemoteUpload(target, app.UploadDelay(), slogger, remoteOpts...)
	}

	source := mindtouch.NewClient(app.Source().URL(), sourceHTTP,
		mindtouch.WithReporter(tracker),
		mindtouch.WithLogger(slogger),
	)
	publisher := service.NewPublisher(source, target, ingester, markup.NewConverter(app.Source().URL()), publishOptions,
		service.WithReporter(tracker),
		service.WithLogger(slogger),
	)
	client.migration = service.NewMigration(source, publisher, cfg.dumpPath, slogger)
	return client, nil
}

// sourceClient builds the HTTP client for the source wiki: credentials are
// only sent to the source host, and XML responses are cached when a cache
// directory is configured.
func sourceClient(app config.AppConfig, base http.RoundTripper) (*http.Client, error) {
	rt := base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if dir := app.Source().CacheDir(); dir != "" {
		cache, err := transport.NewCache(dir, rt)
		if err != nil {
			return nil, err
		}
		rt = cache
	}
	if app.Source().HasCredentials() {
		auth, err := transport.NewBasicAuth(app.Source().URL(), app.Source().Username(), app.Source().Password(), rt)
		if err != nil {
			return nil, err
		}
		rt = auth
	}
	return &http.Client{Timeout: app.HTTPTimeout(), Transport: rt}, nil
}

func (c *Client) directStorage(cfg *clientConfig, downloads *http.Client) (*ingest.DirectStorage, error) {
	storage := c.app.Storage()
	ctx := context.Background()

	db, err := database.NewDatabase(ctx, storage.DBURL())
	if err != nil {
		return nil, migration.NewFatalError(migration.StageStorage, err)
	}
	if !db.IsPostgres() {
		if err := persistence.AutoMigrate(ctx, db, storage.Table()); err != nil {
			return nil, migration.NewFatalError(migration.StageStorage, errors.Join(err, db.Close()))
		}
	}
	c.db = &db

	return ingest.NewDirectStorage(
		persistence.NewImageStore(db, storage.Table()),
		downloads,
		ingest.NewLayout(storage.DataRoot()),
		c.logger.Slog(),
		ingest.WithUploader(storage.UserID(), c.app.Target().Username()),
		ingest.WithClock(cfg.now),
	), nil
}

// Run logs in to the target and performs one full migration. Only fatal
// conditions are returned as errors (a *migration.FatalError, or ctx.Err()
// when cancelled); per-page and per-file failures are in the summary.
func (c *Client) Run(ctx context.Context) (migration.Summary, error) {
	if c.closed.Load() {
		return migration.Summary{}, ErrClientClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, runID := log.WithRunID(ctx)
	started := c.now()
	c.logger.InfoContext(ctx, "starting migration",
		slog.String("run_id", runID),
		slog.String("source", c.app.Source().URL()),
		slog.String("target", c.app.Target().URL()),
		slog.Bool("direct_storage", c.app.Storage().Direct()),
	)

	if err := c.target.Login(ctx, c.app.Target().Username(), c.app.Target().Password()); err != nil {
		return migration.Summary{}, migration.NewFatalError(migration.StageTargetAuth, err)
	}

	summary, err := c.migration.Run(ctx)
	c.finish(ctx, started)
	if err != nil {
		c.logger.ErrorContext(ctx, "migration aborted", slog.String("error", err.Error()))
		return summary, err
	}
	c.logger.Slog().LogAttrs(ctx, slog.LevelInfo, "migration finished", summary.LogAttrs()...)
	return summary, nil
}

func (c *Client) finish(ctx context.Context, started time.Time) {
	c.metrics.Finish(started, c.now())
	path := c.app.MetricsFile()
	if path == "" {
		return
	}
	if err := c.metrics.WriteTextfile(path); err != nil {
		c.logger.Slog().WarnContext(ctx, "failed to write metrics", slog.String("error", err.Error()))
	}
}

// Metrics returns the reporter holding the run counters.
func (c *Client) Metrics() *tracking.MetricsReporter {
	return c.metrics
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger.Slog()
}

// Close logs out of the target and releases the storage handle and log file.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if err := c.target.Logout(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("logout: %w", err))
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	c.logger.Debug("mt2mw client closed")
	if err := c.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log: %w", err))
	}
	return errors.Join(errs...)
}
