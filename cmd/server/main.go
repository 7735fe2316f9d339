package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpapi "pledge/internal/http"
	"pledge/internal/notify"
	"pledge/internal/payment"
	"pledge/internal/platform/config"
	"pledge/internal/platform/httpserver"
	"pledge/internal/platform/kafka"
	"pledge/internal/platform/logger"
	"pledge/internal/platform/metrics"
	platformredis "pledge/internal/platform/redis"
	"pledge/internal/pledge/handler"
	"pledge/internal/pledge/service"
	"pledge/internal/pledge/store"
	"pledge/internal/total"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Every backing service is optional: without Postgres, Redis, or Kafka the
// process falls back to in-memory equivalents so it runs standalone.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	checks := map[string]httpapi.HealthCheck{}

	var pledges store.Store
	if cfg.Postgres.URL != "" {
		db, err := store.Open(cfg.Postgres.URL)
		if err != nil {
			fatal(log, "postgres connection failed", err)
		}
		defer db.Close()
		checks["postgres"] = db.PingContext
		pledges = store.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, pledges held in memory")
		pledges = store.NewInMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		fatal(log, "redis connection failed", err)
	}
	var cache total.Cache
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		cache = total.NewRedisCache(redisClient)
	} else {
		log.Warn("REDIS_URL not set, total cached in memory")
		cache = total.NewMemoryCache()
	}
	totals := total.New(cache, pledges, m, log, config.TotalCacheTTL)

	var charger payment.Charger
	if cfg.Stripe.SecretKey != "" {
		charger = payment.NewStripeCharger(cfg.Stripe)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, charges are faked")
		charger = &payment.Fake{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		fatal(log, "kafka connection failed", err)
	}
	var queue notify.Queue
	if producer != nil {
		defer producer.Close()
		queue = notify.NewKafkaQueue(producer, cfg.Kafka.Topic)
	} else {
		log.Warn("KAFKA_BROKERS not set, mail worker runs in-process")
		memQueue := notify.NewMemoryQueue(256)
		queue = memQueue

		templates, err := notify.LoadTemplates(cfg.Mail.TemplateDir)
		if err != nil {
			fatal(log, "mail templates unavailable", err)
		}
		notifier := notify.NewNotifier(notify.NewSMTPSender(cfg.Mail), templates, m, log)
		worker := notify.NewWorker(notifier, memQueue.Tasks(), log)
		group.Go(func() error {
			if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	intake := service.New(pledges, charger, queue, m, log, cfg.FundraisingRound)
	h := handler.New(intake, totals, m, log, cfg.RequirePhone)
	router := httpapi.NewRouter(h, log, m, checks)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting pledge server", "addr", cfg.Addr, "round", cfg.FundraisingRound)

	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	cancel()

	if err := group.Wait(); err != nil {
		fatal(log, "server error", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err.Error())
	os.Exit(1)
}
