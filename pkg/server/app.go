package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/usecase"
	"TradeSim/pkg/config"
	xhttp "TradeSim/pkg/http"
	pkgkafka "TradeSim/pkg/kafka"
	applogger "TradeSim/pkg/logger"
)

// Closer is an infrastructure client released on shutdown.
type Closer struct {
	Name string
	io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server

	feed      domrepo.PriceFeed
	consumer  *pkgkafka.Consumer
	snapshots pkgkafka.MessageHandler
	refresher *usecase.WatchlistRefresher
	closers   []Closer

	housekeepEvery time.Duration
	housekeep      func()
}

// Option attaches an optional component to App.
type Option func(*App)

// WithPriceFeed streams prices for the watchlist while the app runs.
func WithPriceFeed(feed domrepo.PriceFeed) Option {
	return func(a *App) { a.feed = feed }
}

// WithSnapshotConsumer consumes pushed indicator snapshots.
func WithSnapshotConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.snapshots = h
	}
}

// WithRefresher runs the scheduled watchlist refresh.
func WithRefresher(r *usecase.WatchlistRefresher) Option {
	return func(a *App) { a.refresher = r }
}

// WithHousekeeping runs task every interval while the app runs.
func WithHousekeeping(every time.Duration, task func()) Option {
	return func(a *App) {
		a.housekeepEvery = every
		a.housekeep = task
	}
}

// WithClosers registers clients closed last, in order.
func WithClosers(cs ...Closer) Option {
	return func(a *App) { a.closers = append(a.closers, cs...) }
}

// New creates a new App serving handler.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler, opts ...Option) *App {
	a := &App{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(a)
	}
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath(cfg)),
		xhttp.WithLogger(log),
	)
	return a
}

func metricsPath(cfg *config.Config) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	return cfg.Metrics.Path
}

// Run starts every component and blocks until ctx is done, SIGINT/SIGTERM arrives
// or the HTTP listener fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.feed != nil {
		a.startFeed(ctx)
	}

	if a.consumer != nil && a.snapshots != nil {
		a.consumer.RegisterHandler(a.snapshots)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.snapshots.Topic()))
	}

	if a.refresher != nil {
		if err := a.refresher.Register(a.cfg.Scheduler.Spec); err != nil {
			return err
		}
		a.refresher.Start()
		a.log.Info("watchlist refresher started",
			applogger.String("spec", a.cfg.Scheduler.Spec),
			applogger.Strings("watchlist", a.cfg.Scheduler.Watchlist),
		)
	}

	if a.housekeep != nil && a.housekeepEvery > 0 {
		go a.runHousekeeping(ctx)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-a.httpServer.Start():
		if ok && err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	return errors.Join(runErr, a.shutdown())
}

func (a *App) startFeed(ctx context.Context) {
	watch := a.cfg.Scheduler.Watchlist
	if err := a.feed.Connect(ctx); err != nil {
		// Run keeps retrying with the reconnect delay
		a.log.Warn("price feed connect failed", applogger.Error(err))
	} else if len(watch) > 0 {
		if err := a.feed.Subscribe(ctx, watch); err != nil {
			a.log.Warn("price feed subscribe failed", applogger.Error(err))
		}
	}
	go func() {
		if err := a.feed.Run(ctx); err != nil {
			a.log.Error("price feed stopped", applogger.Error(err))
		}
	}()
}

func (a *App) runHousekeeping(ctx context.Context) {
	ticker := time.NewTicker(a.housekeepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.housekeep()
		}
	}
}

// shutdown stops components in reverse start order.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	a.log.Info("shutting down")

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.refresher != nil {
		a.refresher.Stop()
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.feed != nil {
		if err := a.feed.Close(); err != nil {
			a.log.Warn("price feed close error", applogger.Error(err))
		}
	}
	// flush aggregated logs while the producer is still open
	a.log.RemoveCollector()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("component", c.Name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", c.Name, err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 15 * time.Second
}
