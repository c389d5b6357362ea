package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"RetailPulse/internal/domain/repository"
	domsvc "RetailPulse/internal/domain/service"
	"RetailPulse/internal/handler/api"
	mid "RetailPulse/internal/middleware"
	internalrepo "RetailPulse/internal/repository"
	icache "RetailPulse/internal/service/cache"
	fmetrics "RetailPulse/internal/service/metrics"
	"RetailPulse/internal/service/posfeed"
	"RetailPulse/internal/services/forecast"
	"RetailPulse/internal/services/signals"
	"RetailPulse/internal/usecase"
	pkgcache "RetailPulse/pkg/cache"
	pkgch "RetailPulse/pkg/clickhouse"
	"RetailPulse/pkg/config"
	xhttp "RetailPulse/pkg/http"
	pkgkafka "RetailPulse/pkg/kafka"
	applogger "RetailPulse/pkg/logger"
	"RetailPulse/pkg/metrics"
	pkgqueue "RetailPulse/pkg/queue"
	"RetailPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger. Outside development the
// logger aggregates repeated error lines and ships them to Kafka.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
	if err != nil {
		return nil, err
	}
	if cfg.Environment != "development" && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "retailpulse.logs",
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	return l, nil
}

type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (k kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.producer.Publish(ctx, topic, nil, payload)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".sales_raw (ts DateTime, product_id String, store_id String, qty Float64, price Float64, source String, event_id String) ENGINE=MergeTree ORDER BY (product_id, store_id, ts)",
		"CREATE TABLE IF NOT EXISTS " + db + ".forecasts (generated_at DateTime, product_id String, store_id String, horizon String, method String, base_forecast Float64, final_forecast Float64, lower Float64, upper Float64, adjustments String) ENGINE=MergeTree ORDER BY (product_id, generated_at)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisClient creates the shared Redis client for cache and queue.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	addr := cfg.Redis.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCacheService builds the shared cache: a memory-over-Redis
// layered cache when Redis is enabled, an in-process cache otherwise.
func ProvideCacheService(cfg *config.Config) pkgcache.Service {
	if cfg.Redis.Enabled {
		if c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(redisHost(cfg.Redis.Addr)),
			pkgcache.WithRedisPort(redisPort(cfg.Redis.Addr)),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		); err == nil {
			return pkgcache.NewLayeredCache(c)
		}
	}
	return pkgcache.NewMemoryCache()
}

func redisHost(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}

func redisPort(addr string) int {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		if p, err := strconv.Atoi(addr[i+1:]); err == nil {
			return p
		}
	}
	return 6379
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideForecastMetrics creates the forecasting metrics set.
func ProvideForecastMetrics() *fmetrics.ForecastMetrics {
	return fmetrics.NewForecastMetrics()
}

// ProvideSalesStorage creates ClickHouse storage repository.
func ProvideSalesStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseSalesStorage(chClient.DB(), cfg.ClickHouse.Database+".sales_raw")
}

// ProvideSalesPublisher creates Kafka publisher repository.
func ProvideSalesPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaSalesPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePosFeedStream creates the point-of-sale WebSocket stream.
func ProvidePosFeedStream(cfg *config.Config) repository.SalesStream {
	return posfeed.New(
		cfg.PosFeed.APIKey,
		cfg.PosFeed.WebSocketURL,
		cfg.PosFeed.StoreIDs,
		cfg.PosFeed.ReconnectDelay,
		cfg.PosFeed.PingInterval,
	)
}

// ProvideSalesProcessor creates the sales processor use case.
func ProvideSalesProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SalesProcessor {
	return usecase.NewSalesProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideSalesCollector creates the sales collector use case.
func ProvideSalesCollector(
	stream repository.SalesStream,
	processor *usecase.SalesProcessor,
	m repository.Metrics,
) *usecase.SalesCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewSalesCollector(stream, processor, m, pipe)
}

// ProvideKafkaSalesHandler registers the handler for the sales topic.
func ProvideKafkaSalesHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaSalesHandler {
	return usecase.NewKafkaSalesHandler(cfg.Kafka.Topic, store, m)
}

// ProvideHistoryProvider serves daily demand series from ClickHouse.
func ProvideHistoryProvider(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.HistoryProvider {
	store := internalrepo.NewCHHistoryStore(chClient, cfg.ClickHouse.Database+".sales_raw")
	store.SetLogger(l)
	return store
}

// ProvideForecastLog records generated forecasts in ClickHouse.
func ProvideForecastLog(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.ForecastLog {
	return internalrepo.NewCHForecastLog(chClient, cfg.ClickHouse.Database+".forecasts", l)
}

// ProvideSignalFeed creates the in-memory signal feed.
func ProvideSignalFeed(cfg *config.Config) *signals.SignalFeed {
	maxAge := cfg.Forecast.SignalMaxAge
	if maxAge <= 0 {
		maxAge = 6 * time.Hour
	}
	return signals.NewSignalFeed(maxAge)
}

// ProvideForecaster creates the base forecaster.
func ProvideForecaster(l *applogger.Logger) domsvc.BaseForecaster {
	return forecast.NewSeasonalTrendForecaster(l)
}

// ProvideAdjusters creates the signal adjuster set.
func ProvideAdjusters(feed *signals.SignalFeed, l *applogger.Logger) []domsvc.SignalAdjuster {
	return []domsvc.SignalAdjuster{
		signals.NewSocialAdjuster(feed, l),
		signals.NewWeatherAdjuster(feed, l),
		signals.NewEventAdjuster(feed, l),
	}
}

// ProvideForecastEngine composes the forecast engine.
func ProvideForecastEngine(
	cfg *config.Config,
	history repository.HistoryProvider,
	forecaster domsvc.BaseForecaster,
	adjusters []domsvc.SignalAdjuster,
	flog repository.ForecastLog,
	fm *fmetrics.ForecastMetrics,
	l *applogger.Logger,
) *usecase.ForecastEngine {
	return usecase.NewForecastEngine(usecase.EngineConfig{
		SignalTimeout: cfg.Forecast.SignalTimeout,
	}, history, forecaster, adjusters, flog, fm, l)
}

// ProvideBatchForecaster creates the batch runner.
func ProvideBatchForecaster(engine *usecase.ForecastEngine, cfg *config.Config, l *applogger.Logger) *usecase.BatchForecaster {
	return usecase.NewBatchForecaster(engine, cfg.Forecast.BatchWorkers, l)
}

// ProvideThresholdStore keeps thresholds in memory with cache write-through.
func ProvideThresholdStore(c pkgcache.Service) repository.ThresholdStore {
	return internalrepo.NewMemoryThresholdStore(c, 48*time.Hour)
}

// ProvidePerishableStore tracks perishable inventory state.
func ProvidePerishableStore() repository.PerishableStore {
	return internalrepo.NewMemoryPerishableStore()
}

// ProvideThresholdCalculator derives replenishment thresholds.
func ProvideThresholdCalculator(
	history repository.HistoryProvider,
	store repository.ThresholdStore,
	fm *fmetrics.ForecastMetrics,
	l *applogger.Logger,
) *usecase.ThresholdCalculator {
	return usecase.NewThresholdCalculator(history, store, fm, l)
}

// ProvideMarkdownPolicy manages the perishable markdown lifecycle.
func ProvideMarkdownPolicy(
	store repository.PerishableStore,
	fm *fmetrics.ForecastMetrics,
	l *applogger.Logger,
) *usecase.MarkdownPolicy {
	return usecase.NewMarkdownPolicy(store, usecase.DefaultMarkdownCurve, fm, l)
}

// ProvideJobQueue builds the Redis-backed job queue with registered jobs.
func ProvideJobQueue(
	cfg *config.Config,
	l *applogger.Logger,
	client *redis.Client,
	calc *usecase.ThresholdCalculator,
	policy *usecase.MarkdownPolicy,
) *pkgqueue.RedisQueue {
	qcfg := &pkgqueue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	if qcfg.Workers <= 0 {
		qcfg.Workers = 4
	}
	if qcfg.QueueSize <= 0 {
		qcfg.QueueSize = 1000
	}
	if qcfg.RetryLimit <= 0 {
		qcfg.RetryLimit = 3
	}
	if qcfg.RetryDelay <= 0 {
		qcfg.RetryDelay = 30 * time.Second
	}
	jobs := []pkgqueue.Job{
		usecase.NewThresholdRecalcJob(calc, l),
		usecase.NewPerishableTickJob(policy, l),
	}
	return pkgqueue.NewRedisConsumer(l, qcfg, client, jobs)
}

// ProvideScheduler creates the replenishment scheduler.
func ProvideScheduler(
	cfg *config.Config,
	q *pkgqueue.RedisQueue,
	history repository.HistoryProvider,
	l *applogger.Logger,
) *usecase.ReplenishmentScheduler {
	return usecase.NewReplenishmentScheduler(usecase.SchedulerConfig{
		RecalcInterval: cfg.Replenishment.RecalcInterval,
		TickInterval:   cfg.Replenishment.TickInterval,
		StoreIDs:       cfg.PosFeed.StoreIDs,
		LeadTimeDays:   cfg.Replenishment.LeadTimeDays,
	}, q, history, l)
}

// ProvideAPIHandler wires the HTTP handler with cache and health probe.
func ProvideAPIHandler(
	cfg *config.Config,
	l *applogger.Logger,
	engine *usecase.ForecastEngine,
	batch *usecase.BatchForecaster,
	calc *usecase.ThresholdCalculator,
	policy *usecase.MarkdownPolicy,
	feed *signals.SignalFeed,
	fm *fmetrics.ForecastMetrics,
	store repository.Storage,
) xhttp.Handler {
	h := api.NewHandler(l, engine, batch, calc, policy, feed, fm)
	if cfg.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	h.SetHealthCheck(store.Health)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.SalesCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSalesHandler,
	chClient *pkgch.Client,
	q *pkgqueue.RedisQueue,
	sched *usecase.ReplenishmentScheduler,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	app.SetQueue(q)
	app.SetScheduler(sched)
	if collector != nil {
		app.SalesProc = collector.Processor()
	}
	return app
}
