package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	"StockCast/internal/usecase"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    *api.ForecastHandler
	pipeline   *usecase.Pipeline
	publisher  repository.SignalPublisher
	chClient   *pkgch.Client
	tuneQueue  *queue.RedisQueue
	httpServer *xhttp.Server
}

// New creates an App instance with all dependencies. tuneQueue is nil when
// background tuning is not configured.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler *api.ForecastHandler,
	pipeline *usecase.Pipeline,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
	tuneQueue *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		pipeline:  pipeline,
		publisher: publisher,
		chClient:  chClient,
		tuneQueue: tuneQueue,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.chClient != nil {
		a.handler.SetHealthCheck(func(c echo.Context) error {
			return a.chClient.Health(c.Request().Context())
		})
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.log, 2*time.Second),
	)

	if a.tuneQueue != nil {
		if err := a.tuneQueue.Start(); err != nil {
			a.log.Error("tune queue start error", applogger.Error(err))
			return err
		}
	}

	// Train and signal the configured symbols in the background; the API
	// serves whatever artifacts already exist in the meantime.
	go func() {
		if err := a.pipeline.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("pipeline run error", applogger.Error(err))
		}
	}()
	a.log.Info("pipeline started", applogger.Strings("symbols", a.cfg.Symbols))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.tuneQueue != nil {
		if err := a.tuneQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("tune queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
