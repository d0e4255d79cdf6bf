package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/order-intake/internal/health"
	"github.com/vladislavdragonenkov/order-intake/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-intake/internal/metrics"
	"github.com/vladislavdragonenkov/order-intake/internal/service/intake"
	"github.com/vladislavdragonenkov/order-intake/internal/service/rest"
	"github.com/vladislavdragonenkov/order-intake/internal/service/sequence"
	"github.com/vladislavdragonenkov/order-intake/internal/storage/memory"
	"github.com/vladislavdragonenkov/order-intake/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/order-intake/internal/storage/redis"
	"github.com/vladislavdragonenkov/order-intake/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает зависимости по конфигурации и держит оба HTTP-сервера
// (API и метрики) до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	intakeMetrics := metrics.NewIntakeMetrics()
	healthHandler := healthcheck.NewHandler(version.String())

	deps, err := buildDependencies(ctx, cfg, healthHandler, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	scanner := sequence.NewScanner(deps.RecordStore, log.WithField("component", "sequence-scanner"))
	generator := sequence.NewGenerator(deps.SequenceCache, scanner, location, log.WithField("component", "sequence-generator")).
		WithMetrics(intakeMetrics)

	var publisher intake.EventPublisher
	if deps.Producer != nil {
		publisher = deps.Producer
	}

	service := intake.NewService(generator, deps.RecordStore, publisher, intakeMetrics, log.WithField("component", "intake-service")).
		WithRetryDelay(cfg.PersistRetryDelay)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	rest.NewOrderHandler(service, log.WithField("component", "rest-handler")).Register(router)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API сервер слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics, /healthz и /livez.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

// ensureKafkaProducer создаёт producer, если заданы брокеры.
// Недоступный Kafka не мешает запуску: публикация событий best-effort.
func ensureKafkaProducer(cfg Config, logger *log.Entry) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}
	logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
	return producer
}

// buildDependencies инициализирует хранилища по выбранным драйверам
// и регистрирует их health-проверки.
func buildDependencies(ctx context.Context, cfg Config, healthHandler *healthcheck.Handler, logger *log.Entry) (*Dependencies, error) {
	deps := &Dependencies{}

	switch cfg.CacheDriver {
	case CacheDriverRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		deps.redisClient = client
		deps.SequenceCache = redisstore.NewSequenceCache(client, cfg.CounterTTL)
		healthHandler.RegisterChecker("sequence-cache", healthcheck.NewSimpleChecker("sequence-cache", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return client.Ping(pingCtx).Err()
		}))
		logger.WithField("addr", cfg.RedisAddr).Info("redis sequence cache initialized")
	case CacheDriverMemory:
		deps.SequenceCache = memory.NewSequenceCache()
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			deps.Close(logger)
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				deps.Close(logger)
				return nil, err
			}
		}
		deps.pgStore = store
		deps.RecordStore = postgres.NewRecordStore(store)
		healthHandler.RegisterChecker("record-store", healthcheck.NewSimpleChecker("record-store", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
		logger.Info("postgres record store initialized")
	case StorageDriverMemory:
		deps.RecordStore = memory.NewRecordStore()
	default:
		deps.Close(logger)
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	deps.Producer = ensureKafkaProducer(cfg, logger)

	return deps, nil
}
