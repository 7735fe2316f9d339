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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pledge/internal/notify"
	"pledge/internal/platform/config"
	"pledge/internal/platform/httpserver"
	"pledge/internal/platform/kafka/consumer"
	"pledge/internal/platform/logger"
	"pledge/internal/platform/metrics"
)

// The mail worker consumes thank-you tasks from the mail topic and sends
// the emails, decoupled from the request path. Delivery failures leave the
// batch uncommitted so the broker redelivers.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	if len(cfg.Kafka.Brokers) == 0 {
		fatal(log, "configuration error", errors.New("KAFKA_BROKERS is required for the mail worker"))
	}

	templates, err := notify.LoadTemplates(cfg.Mail.TemplateDir)
	if err != nil {
		fatal(log, "mail templates unavailable", err)
	}
	notifier := notify.NewNotifier(notify.NewSMTPSender(cfg.Mail), templates, m, log)

	cons, err := consumer.New(cfg.Kafka, log)
	if err != nil {
		fatal(log, "kafka connection failed", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := httpserver.New(metricsAddr(), mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	log.Info("starting mail worker",
		"topic", cfg.Kafka.Topic,
		"group", cfg.Kafka.Group,
	)

	group.Go(func() error {
		err := cons.Run(ctx, notify.NewTaskHandler(notifier))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		cons.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		fatal(log, "worker error", err)
	}
}

func metricsAddr() string {
	if addr := os.Getenv("WORKER_METRICS_ADDR"); addr != "" {
		return addr
	}
	return ":9100"
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err.Error())
	os.Exit(1)
}
