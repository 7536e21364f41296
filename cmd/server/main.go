package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lcvet/internal/events"
	jwttoken "lcvet/internal/jwt_token"
	"lcvet/internal/oracle"
	"lcvet/internal/platform/config"
	"lcvet/internal/platform/httpserver"
	"lcvet/internal/platform/logger"
	"lcvet/internal/platform/metrics"
	"lcvet/internal/platform/postgres"
	"lcvet/internal/platform/redis"
	rulehandler "lcvet/internal/rules/handler"
	ruleservice "lcvet/internal/rules/service"
	rulestore "lcvet/internal/rules/store"
	"lcvet/internal/validation/engine"
	validationhandler "lcvet/internal/validation/handler"
	"lcvet/internal/validation/history"
	"lcvet/internal/validation/logic"
	validationstore "lcvet/internal/validation/store"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	var ruleStore rulestore.Store = rulestore.NewPostgresStore(db)
	if redisClient != nil {
		ruleStore = rulestore.NewCachedStore(ruleStore, redisClient, log)
		log.Info("rule cache enabled")
	}
	recordStore := validationstore.NewPostgresStore(db)

	oracleClient := oracle.NewChatClient(cfg.Oracle)

	publisher, err := events.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("failed to build event publisher", "error", err.Error())
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	engineOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(m),
		engine.WithLogicOptions(logic.Options{StrictUnmatched: cfg.StrictLogic}),
	}
	if publisher != nil {
		engineOpts = append(engineOpts, engine.WithEventPublisher(publisher))
	}
	validationEngine, err := engine.New(ruleStore, recordStore, oracleClient, engineOpts...)
	if err != nil {
		log.Error("failed to build validation engine", "error", err.Error())
		os.Exit(1)
	}

	historyService, err := history.New(recordStore, log)
	if err != nil {
		log.Error("failed to build history service", "error", err.Error())
		os.Exit(1)
	}

	ruleService, err := ruleservice.New(ruleStore, oracleClient,
		ruleservice.WithLogger(log),
		ruleservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to build rule service", "error", err.Error())
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "lcvet", "lcvet-api")
	jwtAdapter := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	validationhandler.New(validationEngine, historyService, log, m).Register(router)
	rulehandler.New(ruleService, log, m, jwtAdapter).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting lcvet", "addr", cfg.Addr, "strict_logic", cfg.StrictLogic)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
