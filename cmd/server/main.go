package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"portfolio/internal/cases/handler"
	casemetrics "portfolio/internal/cases/metrics"
	"portfolio/internal/cases/service"
	casestore "portfolio/internal/cases/store"
	"portfolio/internal/dispatch"
	"portfolio/internal/events"
	"portfolio/internal/gateway"
	"portfolio/internal/individuallending"
	jwttoken "portfolio/internal/jwt_token"
	"portfolio/internal/platform/config"
	"portfolio/internal/platform/httpserver"
	"portfolio/internal/platform/logger"
	"portfolio/internal/platform/middleware"
	platformredis "portfolio/internal/platform/redis"
	"portfolio/internal/products"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		caseStore  casestore.Store
		catalog    products.Catalog
		eventStore events.Store
		db         *sql.DB
	)
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		caseStore = casestore.NewPostgresStore(db)
		catalog = products.NewPostgresCatalog(db)
		eventStore = events.NewPostgresStore(db)
		log.Info("storage configured", "backend", "postgres")
	} else {
		memoryCatalog := products.NewInMemoryCatalog()
		registerDefaultProducts(memoryCatalog)
		caseStore = casestore.NewInMemoryStore()
		catalog = memoryCatalog
		eventStore = events.NewInMemoryStore()
		log.Info("storage configured", "backend", "memory")
	}

	// Event publisher, with a Kafka sink when brokers are configured.
	publisherOpts := []events.Option{events.WithAsyncBuffer(1024)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := events.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, events.WithSink(sink))
		log.Info("kafka event sink configured", "topic", cfg.Kafka.Topic)
	}
	publisher := events.NewPublisher(eventStore, log, publisherOpts...)
	defer publisher.Close()

	// Command dedup: Redis when configured, in-process otherwise.
	var dedup gateway.DedupStore = gateway.NewInMemoryDedup()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		dedup = gateway.NewRedisDedup(redisClient.Client)
		log.Info("redis command dedup configured")
	}

	commandGateway := gateway.NewInProcess(caseStore, dedup, log, cfg.Gateway.InboxSize)
	defer commandGateway.Close()

	// Product pattern dispatchers.
	schedules := individuallending.NewScheduleStore()
	registry := dispatch.NewRegistry()
	registry.Register("individual-lending", individuallending.NewDispatcher(
		caseStore, catalog, individuallending.NewPlanner(), schedules, publisher, log))

	svc := service.New(caseStore, catalog, registry, commandGateway, publisher, casemetrics.New(), log)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwttoken.NewMiddlewareAdapter(jwtService), log))
		handler.New(svc, schedules, publisher, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting portfolio service", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	log.Info("portfolio service stopped")
	return err
}

// Default charge amounts for the seeded development product: 1% interest per
// period, a flat processing fee.
var (
	interestRate  = decimal.NewFromInt(1)
	processingFee = decimal.NewFromInt(10)
)

// registerDefaultProducts seeds the in-memory catalog so the service is
// usable without a database. Production deployments load products from
// Postgres instead.
func registerDefaultProducts(catalog *products.InMemoryCatalog) {
	catalog.Register(products.Product{
		Identifier:       "individual-lending",
		Name:             "Individual Lending",
		PatternPackage:   "individuallending",
		TermRangeMaximum: 60,
		Enabled:          true,
		ChargeDefinitions: []products.ChargeDefinition{
			{
				Identifier:  "loan-interest",
				Name:        "Interest",
				Method:      products.ChargeProportional,
				Amount:      interestRate,
				FromAccount: "customer-loan",
				ToAccount:   "interest-income",
			},
			{
				Identifier:  "processing-fee",
				Name:        "Processing fee",
				Method:      products.ChargeFixed,
				Amount:      processingFee,
				FromAccount: "customer-loan",
				ToAccount:   "fee-income",
			},
			{
				Identifier:     "repayment",
				Name:           "Repayment",
				Method:         products.ChargeFixed,
				FromAccount:    "customer",
				ToAccount:      "customer-loan",
				ReducesBalance: true,
			},
		},
	})
}
