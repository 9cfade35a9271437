package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/md-rashed-zaman/apptcrm/libs/clock"
	"github.com/md-rashed-zaman/apptcrm/libs/config"
	"github.com/md-rashed-zaman/apptcrm/libs/db"
	"github.com/md-rashed-zaman/apptcrm/libs/grpcx"
	"github.com/md-rashed-zaman/apptcrm/libs/httpx"
	"github.com/md-rashed-zaman/apptcrm/libs/kafkax"
	otelx "github.com/md-rashed-zaman/apptcrm/libs/otel"
	"github.com/md-rashed-zaman/apptcrm/libs/runtime"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/grpcserver"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/profile"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/migrations"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}
	service := config.String("SERVICE_NAME", "booking-service")
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	if err := run(logger, service); err != nil {
		logger.Error("booking service failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, service string) error {
	port, err := config.Port("PORT", "8083")
	if err != nil {
		return err
	}
	grpcPort, err := config.Port("GRPC_PORT", "9083")
	if err != nil {
		return err
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		return err
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(config.String("BUSINESS_TIMEZONE", "UTC"))
	if err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE: %w", err)
	}

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	if config.Bool("AUTO_MIGRATE", false) {
		version, err := migrations.Up(dbURL)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database migrated", "version", version)
	}

	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 1)),
	})
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(reg)

	clk := clock.NewSystem()
	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	bookings := booking.NewService(repo, outboxRepo, clk, logger, bookingMetrics, booking.Config{
		SlotStep: time.Duration(config.Int("SLOT_STEP_MINUTES", 30)) * time.Minute,
		Location: loc,
	})

	var cache *profile.Cache
	if rdb != nil {
		cache = profile.NewCache(rdb, config.Duration("PROFILE_CACHE_TTL", profile.DefaultCacheTTL))
	}
	profiles := profile.NewService(repo, cache, clk, logger)

	if brokers := kafkax.SplitBrokers(config.String("KAFKA_BROKERS", "")); len(brokers) > 0 {
		writer := kafkax.NewWriter(brokers)
		defer func() { _ = writer.Close() }()
		publisher := outbox.NewPublisher(pool, outboxRepo, writer, logger, outbox.PublisherConfig{
			PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
		})
		go publisher.Run(ctx)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(strings.Join(brokers, ","))})
	} else {
		logger.Info("kafka disabled; appointment events stay in the outbox")
	}

	var publicLimiter httpx.Middleware
	if limit := config.Int("RATE_LIMIT_PER_MINUTE", 120); limit > 0 {
		trustProxy := config.Bool("TRUST_PROXY_HEADERS", false)
		if rdb != nil {
			publicLimiter = httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "rl:public").
				TrustForwardedFor(trustProxy).
				Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		} else {
			publicLimiter = httpx.NewRateLimiter(limit, time.Minute).TrustForwardedFor(trustProxy).Middleware()
		}
	}

	grpcSrv := grpcx.NewServer(grpc.ChainUnaryInterceptor(grpcx.UnaryServerAccessLogInterceptor(logger)))
	health := grpcserver.Register(grpcSrv, logger, checks...)
	go health.Run(ctx, config.Duration("GRPC_HEALTH_INTERVAL", 10*time.Second))
	lis, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()
	defer func() {
		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			grpcSrv.Stop()
		}
	}()

	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/api/", handlers.New(bookings, profiles, logger).Routes(handlers.RouterConfig{
		JWTSecret:     jwtSecret,
		PublicLimiter: publicLimiter,
	}))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", handlers.HeaderIdempotencyKey, httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 15))*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return runtime.ServeHTTP(ctx, srv, logger, 10*time.Second)
}
