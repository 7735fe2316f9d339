package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// TotalCacheTTL bounds staleness of the cached pledge total.
var TotalCacheTTL = 300 * time.Second

// Server captures process-level configuration for the pledge service.
type Server struct {
	Addr string

	// FundraisingRound tags every pledge with the current campaign round.
	FundraisingRound string

	// RequirePhone controls whether an empty phone rejects a submission.
	// The upstream form has always accepted an empty phone even though the
	// field must be present, so this defaults to off.
	RequirePhone bool

	Stripe   Stripe
	Postgres Postgres
	Redis    RedisConfig
	Kafka    Kafka
	Mail     Mail
}

// Stripe holds payment processor credentials, injected into the charge
// adapter rather than set on a package global.
type Stripe struct {
	SecretKey string
}

// Postgres holds datastore connection settings.
type Postgres struct {
	URL string
}

// RedisConfig holds cache connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds task queue settings. An empty broker list means the queue
// runs in-process.
type Kafka struct {
	Brokers []string
	Topic   string
	Group   string
}

// Mail holds SMTP settings and the on-disk template location for the
// thank-you notifier.
type Mail struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Sender      string
	TemplateDir string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:             envOr("PLEDGE_ADDR", ":8080"),
		FundraisingRound: envOr("FUNDRAISING_ROUND", "1"),
		RequirePhone:     os.Getenv("REQUIRE_PHONE") == "true",
		Stripe: Stripe{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		},
		Postgres: Postgres{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("MAIL_TOPIC", "mail"),
			Group:   envOr("MAIL_GROUP", "mail-workers"),
		},
		Mail: Mail{
			Host:        envOr("SMTP_HOST", "localhost"),
			Port:        envInt("SMTP_PORT", 587),
			Username:    os.Getenv("SMTP_USERNAME"),
			Password:    os.Getenv("SMTP_PASSWORD"),
			Sender:      envOr("MAIL_SENDER", "no-reply <noreply@pledge.local>"),
			TemplateDir: envOr("MAIL_TEMPLATE_DIR", "email"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
