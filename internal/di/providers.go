package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/services/features"
	"StockCast/internal/services/forecaster"
	"StockCast/internal/services/indicators"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/queue"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and bootstraps the
// quotes schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := internalrepo.NewCHQuoteStore(client, cfg.ClickHouse.QuotesTable)
	stmts := append([]string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}, store.Schema()...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideQuoteStore creates the ClickHouse-backed quote repository.
func ProvideQuoteStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.QuoteStore {
	store := internalrepo.NewCHQuoteStore(ch, cfg.ClickHouse.QuotesTable)
	store.SetLogger(l)
	return store
}

// ProvideModelStore creates the filesystem artifact store.
func ProvideModelStore(cfg *config.Config, l *applogger.Logger) (repository.ModelStore, error) {
	return internalrepo.NewFSModelStore(cfg.Forecaster.ModelDir, l)
}

// ProvideSignalPublisher creates a Kafka publisher when enabled, otherwise a
// logging no-op.
func ProvideSignalPublisher(cfg *config.Config, l *applogger.Logger) (repository.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewNopSignalPublisher(l), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, 0),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic, l), nil
}

// ProvideRedisCache creates the shared Redis connection, or nil when the
// memory backend is configured.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if cfg.Cache.Backend != "redis" {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix("stockcast"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache creates the indicator cache backend: an in-process memory
// layer over Redis when Redis is configured, plain memory otherwise.
func ProvideCache(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(rc)
}

// ProvideMemoizer creates the indicator memoizer over the cache backend.
func ProvideMemoizer(c cache.Service, cfg *config.Config) *indicators.Memoizer {
	return indicators.NewMemoizer(c, cfg.Cache.TTL)
}

// ProvideEngineer creates the market feature engineer.
func ProvideEngineer(memo *indicators.Memoizer, l *applogger.Logger) *features.Engineer {
	return features.NewEngineer(memo, l)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideForecaster creates the HTTP client to the external model service.
func ProvideForecaster(cfg *config.Config, l *applogger.Logger) service.SequenceForecaster {
	return forecaster.NewHTTPForecaster(cfg, l)
}

// ProvideTuner creates the grid-search tuner.
func ProvideTuner(fc service.SequenceForecaster, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.Tuner {
	return usecase.NewTuner(fc, m, cfg, l)
}

// ProvidePredictor creates the prediction engine.
func ProvidePredictor(
	quotes repository.QuoteStore,
	store repository.ModelStore,
	fc service.SequenceForecaster,
	engineer *features.Engineer,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Predictor {
	return usecase.NewPredictor(quotes, store, fc, engineer, m, cfg, l)
}

// ProvidePipeline creates the per-symbol orchestrator.
func ProvidePipeline(
	quotes repository.QuoteStore,
	engineer *features.Engineer,
	tuner *usecase.Tuner,
	predictor *usecase.Predictor,
	fc service.SequenceForecaster,
	store repository.ModelStore,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(quotes, engineer, tuner, predictor, fc, store, publisher, m, cfg, l)
}

// ProvideTuneQueue creates the background retrain queue when the redis cache
// backend is configured; otherwise background tuning is unavailable.
func ProvideTuneQueue(rc *cache.RedisCache, pipeline *usecase.Pipeline, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil {
		l.Info("background tuning disabled, no redis backend configured")
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 1,
		RetryDelay: time.Minute,
	}, rc.Client(), queue.WithKeyPrefix("stockcast:tune"))
	q.RegisterJob(usecase.NewRetrainJob(pipeline, l))
	return q
}

// ProvideHandler creates the Echo API handler.
func ProvideHandler(l *applogger.Logger, pipeline *usecase.Pipeline, predictor *usecase.Predictor, q *queue.RedisQueue) *api.ForecastHandler {
	// The handler checks its queue for nil; a typed nil inside the
	// interface would defeat that check.
	var svc queue.QueueService
	if q != nil {
		svc = q
	}
	return api.NewForecastHandler(l, pipeline, predictor, svc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.ForecastHandler,
	pipeline *usecase.Pipeline,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
	tuneQueue *queue.RedisQueue,
) *server.App {
	return server.New(cfg, l, handler, pipeline, publisher, chClient, tuneQueue)
}
