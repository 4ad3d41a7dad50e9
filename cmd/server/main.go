package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"clubgate/internal/audit"
	"clubgate/internal/identity"
	"clubgate/internal/notify"
	"clubgate/internal/platform/config"
	"clubgate/internal/platform/httpserver"
	"clubgate/internal/platform/logger"
	platformredis "clubgate/internal/platform/redis"
	"clubgate/internal/registration"
	reghandler "clubgate/internal/registration/handler"
	regmetrics "clubgate/internal/registration/metrics"
	"clubgate/internal/sessiontoken"
	"clubgate/internal/throttle"
	httptransport "clubgate/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clubgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Environment)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: postgres when a DSN is configured, in-memory otherwise.
	var (
		store     registration.Store
		auditSink audit.Sink
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		store = registration.NewPostgresStore(db)
		auditSink = audit.NewPostgresSink(db)
		log.Info("using postgres stores")
	} else {
		store = registration.NewInMemoryStore()
		auditSink = audit.NewInMemorySink()
		log.Warn("no POSTGRES_DSN configured, using in-memory stores")
	}

	auditSinks := []audit.Sink{auditSink}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return fmt.Errorf("create kafka audit sink: %w", err)
		}
		defer kafkaSink.Close()
		auditSinks = append(auditSinks, kafkaSink)
		log.Info("audit events mirrored to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	auditPub := audit.NewPublisher(log, auditSinks...)

	// Identity directory: cognito pool in production, in-memory in dev.
	var directory identity.Directory
	if cfg.Cognito.PoolID != "" {
		directory, err = identity.NewCognitoDirectory(ctx, cfg.Cognito.PoolID)
		if err != nil {
			return fmt.Errorf("create cognito directory: %w", err)
		}
	} else {
		directory = identity.NewInMemoryDirectory()
		log.Warn("no COGNITO_POOL_ID configured, using in-memory directory")
	}

	// Email: SES when configured, log-only otherwise.
	var sender notify.Sender
	if cfg.SES.Sender != "" {
		sender, err = notify.NewSESSender(ctx, cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, cfg.SES.Region, cfg.SES.Sender)
		if err != nil {
			return fmt.Errorf("create ses sender: %w", err)
		}
	} else {
		sender = notify.NewLogSender(log)
		log.Warn("no SES_SENDER configured, emails will only be logged")
	}
	dispatcher := notify.NewDispatcher(sender, log)

	// Throttle counter: redis when configured, in-process otherwise.
	var counter throttle.Counter
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		counter = throttle.NewRedisCounter(redisClient.Client)
	} else {
		counter = throttle.NewMemoryCounter()
		log.Warn("no REDIS_URL configured, throttling is per-process")
	}
	limiter := throttle.NewLimiter(counter, cfg.Throttle.Limit, cfg.Throttle.Window, log,
		throttle.WithMetrics(throttle.NewMetrics()),
	)

	verifier := sessiontoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	service := registration.NewService(store, directory, dispatcher, auditPub, log, cfg.BaseURL,
		registration.WithMetrics(regmetrics.New()),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Registrations: reghandler.New(service, log),
		Verifier:      verifier,
		Limiter:       limiter,
		Logger:        log,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting clubgate", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
