package di

import (
	"context"
	"fmt"
	"time"

	"TradeSim/internal/domain/repository"
	domsvc "TradeSim/internal/domain/service"
	"TradeSim/internal/handler/api"
	internalrepo "TradeSim/internal/repository"
	icache "TradeSim/internal/service/cache"
	"TradeSim/internal/services/analytics"
	"TradeSim/internal/services/technical"
	"TradeSim/internal/usecase"
	pkgch "TradeSim/pkg/clickhouse"
	"TradeSim/pkg/config"
	pkgkafka "TradeSim/pkg/kafka"
	applogger "TradeSim/pkg/logger"
	"TradeSim/pkg/metrics"
	"TradeSim/pkg/server"
)

// ProvideLogger creates the application logger. Error logs are mirrored to
// Kafka when a producer and log.topic are configured.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Log.Topic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			Service:   "tradesim",
			Topic:     cfg.Log.Topic,
			Publisher: producer,
			Levels:    []string{"error", "warn"},
		})
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and report schema. Nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.Migrate(ctx, internalrepo.ReportSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer. Nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEvaluator returns the signal classifier.
func ProvideEvaluator() domsvc.TechnicalEvaluator {
	return technical.Evaluator{}
}

// ProvideAnalyticsClient creates the analytics backend REST client.
func ProvideAnalyticsClient(cfg *config.Config) *analytics.Client {
	return analytics.NewClient(cfg)
}

// ProvidePriceFeed creates the streamed price feed. Nil when no websocket URL is configured.
func ProvidePriceFeed(cfg *config.Config, l *applogger.Logger) repository.PriceFeed {
	if cfg.Analytics.PriceWSURL == "" {
		return nil
	}
	return analytics.NewPriceFeed(
		cfg.Analytics.PriceWSURL,
		cfg.Analytics.Token,
		cfg.Analytics.ReconnectDelay,
		cfg.Analytics.PingInterval,
		l.With(applogger.String("component", "price_feed")),
	)
}

// ProvideReportStore prefers ClickHouse and falls back to an in-process store.
func ProvideReportStore(ch *pkgch.Client, l *applogger.Logger) repository.ReportStore {
	if ch == nil {
		return internalrepo.NewMemoryReportStore(0)
	}
	store := internalrepo.NewCHReportStore(ch)
	store.SetLogger(l)
	return store
}

// ProvideReportPublisher publishes reports to Kafka. Nil when Kafka is disabled.
func ProvideReportPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.ReportsTopic)
}

// ProvideTechnicalSummaryUseCase wires the summary use case with its optional collaborators.
func ProvideTechnicalSummaryUseCase(
	cfg *config.Config,
	client *analytics.Client,
	evaluator domsvc.TechnicalEvaluator,
	m repository.Metrics,
	l *applogger.Logger,
	feed repository.PriceFeed,
	store repository.ReportStore,
	publisher repository.ReportPublisher,
) *usecase.TechnicalSummaryUseCase {
	opts := []usecase.SummaryOption{
		usecase.WithTimeout(cfg.Analytics.RequestTimeout),
		usecase.WithReportStore(store),
	}
	if feed != nil {
		opts = append(opts, usecase.WithPriceFeed(feed, cfg.Analytics.PriceMaxAge))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithReportPublisher(publisher))
	}
	return usecase.NewTechnicalSummaryUseCase(client, client, evaluator, m, l, opts...)
}

// ProvideClassifyUseCase creates the offline classification use case.
func ProvideClassifyUseCase(evaluator domsvc.TechnicalEvaluator, m repository.Metrics) *usecase.ClassifyUseCase {
	return usecase.NewClassifyUseCase(evaluator, m)
}

// ProvideCache returns Redis when enabled, otherwise an in-process TTL cache.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideTechnicalHandler creates the Echo handler with cache, rate limit and health checks.
func ProvideTechnicalHandler(
	cfg *config.Config,
	l *applogger.Logger,
	summary *usecase.TechnicalSummaryUseCase,
	classify *usecase.ClassifyUseCase,
	cache icache.BytesCache,
	store repository.ReportStore,
	feed repository.PriceFeed,
) *api.TechnicalHandler {
	opts := []api.HandlerOption{
		api.WithCache(cache, cfg.Cache.TTL),
		api.WithRateLimit(cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window),
		api.WithHealthCheck("report_store", store.Health),
	}
	if rc, ok := cache.(*icache.RedisCache); ok {
		opts = append(opts, api.WithHealthCheck("redis", rc.Ping))
	}
	if feed != nil {
		opts = append(opts, api.WithHealthCheck("price_feed", func(context.Context) error {
			if !feed.IsConnected() {
				return fmt.Errorf("price feed disconnected")
			}
			return nil
		}))
	}
	return api.NewTechnicalHandler(l.With(applogger.String("component", "http")), summary, classify, opts...)
}

// ProvideKafkaConsumer creates the snapshot consumer. Nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.SnapshotsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerStartOffset(cfg.Kafka.Consumer.StartOffset),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l.With(applogger.String("component", "kafka_consumer"))),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TracingHook(),
		pkgkafka.ErrorLogHook(l, func(topic string) { m.RecordError("consume_" + topic) }),
	))
	return consumer, nil
}

// ProvideKafkaSnapshotsHandler handles snapshots pushed by the analytics backend.
func ProvideKafkaSnapshotsHandler(cfg *config.Config, summary *usecase.TechnicalSummaryUseCase, m repository.Metrics) *usecase.KafkaSnapshotsHandler {
	return usecase.NewKafkaSnapshotsHandler(cfg.Kafka.SnapshotsTopic, summary, m)
}

// ProvideWatchlistRefresher creates the scheduled refresher. Nil when the scheduler is disabled.
func ProvideWatchlistRefresher(cfg *config.Config, summary *usecase.TechnicalSummaryUseCase, l *applogger.Logger) *usecase.WatchlistRefresher {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return usecase.NewWatchlistRefresher(summary, cfg.Scheduler.Watchlist, cfg.Scheduler.Intervals,
		l.With(applogger.String("component", "scheduler")))
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.TechnicalHandler,
	feed repository.PriceFeed,
	consumer *pkgkafka.Consumer,
	snapshots *usecase.KafkaSnapshotsHandler,
	refresher *usecase.WatchlistRefresher,
	cache icache.BytesCache,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
) *server.App {
	opts := []server.Option{
		server.WithHousekeeping(time.Minute, func() { handler.Housekeep(cfg.Server.RateLimit.Window) }),
	}
	if feed != nil {
		opts = append(opts, server.WithPriceFeed(feed))
	}
	if consumer != nil {
		opts = append(opts, server.WithSnapshotConsumer(consumer, snapshots))
	}
	if refresher != nil {
		opts = append(opts, server.WithRefresher(refresher))
	}
	if rc, ok := cache.(*icache.RedisCache); ok {
		opts = append(opts, server.WithClosers(server.Closer{Name: "redis", Closer: rc}))
	}
	if producer != nil {
		opts = append(opts, server.WithClosers(server.Closer{Name: "kafka_producer", Closer: producer}))
	}
	if chClient != nil {
		opts = append(opts, server.WithClosers(server.Closer{Name: "clickhouse", Closer: chClient}))
	}
	return server.New(cfg, l, handler, opts...)
}
