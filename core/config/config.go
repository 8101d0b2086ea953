package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"fritakagp.app/backend/core/db"
)

type Config struct {
	OTel           OTelConfig
	Sentry         SentryConfig
	Worker         WorkerConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	Bucket         BucketConfig
	Integrations   IntegrationsConfig
	Datapakke      DatapakkeConfig
	Env            string `env:"FRITAKAGP_ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL"`
	FrontendURL    string `env:"FRONTEND_APP_URL" envDefault:"https://arbeidsgiver.nav.no/fritakagp"`
	IdentityHeader string `env:"IDENTITY_HEADER" envDefault:"X-Identitetsnummer"`
	NodeID         int64  `env:"NODE_ID" envDefault:"1"`
	DB             db.Config
}

type OTelConfig struct {
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers        string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"fritakagp"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" envDefault:"dev"`
}

type SentryConfig struct {
	DSN string `env:"SENTRY_DSN"`
}

type WorkerConfig struct {
	// Lets the API server run the dispatcher in-process, like a single-binary deployment.
	RunInServer   bool          `env:"RUN_BACKGROUND_WORKERS" envDefault:"false"`
	Concurrency   int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	PollInterval  time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"1s"`
	ShutdownGrace time.Duration `env:"WORKER_SHUTDOWN_GRACE" envDefault:"30s"`
	LeaseTimeout  time.Duration `env:"WORKER_LEASE_TIMEOUT" envDefault:"15m"`
	ReclaimEvery  time.Duration `env:"WORKER_RECLAIM_INTERVAL" envDefault:"1m"`
	BackoffBase   time.Duration `env:"WORKER_BACKOFF_BASE" envDefault:"1m"`
	BackoffMax    time.Duration `env:"WORKER_BACKOFF_MAX" envDefault:"6h"`
}

type RedisConfig struct {
	URL     string        `env:"REDIS_URL"`
	LockTTL time.Duration `env:"SUBMISSION_LOCK_TTL" envDefault:"20m"`
}

type KafkaConfig struct {
	Brokers           []string      `env:"KAFKA_BROKERS" envSeparator:","`
	ClaimTopic        string        `env:"KAFKA_CLAIM_TOPIC" envDefault:"helsearbeidsgiver.fritakagp-krav"`
	ApplicationTopic  string        `env:"KAFKA_APPLICATION_TOPIC" envDefault:"helsearbeidsgiver.fritakagp-soeknad"`
	NotificationTopic string        `env:"KAFKA_NOTIFICATION_TOPIC" envDefault:"min-side.aapen-brukervarsel-v1"`
	WriteTimeout      time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"10s"`
}

type BucketConfig struct {
	Name            string `env:"GCP_BUCKET_NAME"`
	CredentialsFile string `env:"GCP_CREDENTIALS_FILE"`
}

type IntegrationsConfig struct {
	ArchiveURL        string        `env:"DOKARKIV_URL"`
	TaskURL           string        `env:"OPPGAVE_URL"`
	PersonRegistryURL string        `env:"PDL_URL"`
	OrgRegistryURL    string        `env:"BRREG_URL"`
	PDFGenURL         string        `env:"PDFGEN_URL"`
	CorrespondenceURL string        `env:"ALTINN_MELDING_URL"`
	VirusScanURL      string        `env:"CLAMAV_URL"`
	Timeout           time.Duration `env:"INTEGRATION_TIMEOUT" envDefault:"30s"`
}

type DatapakkeConfig struct {
	URL        string        `env:"DATAPAKKE_API_URL"`
	ID         string        `env:"DATAPAKKE_ID"`
	Interval   time.Duration `env:"DATAPAKKE_INTERVAL" envDefault:"1h"`
	WeeklyOnly bool          `env:"DATAPAKKE_WEEKLY_ONLY" envDefault:"false"`
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the background worker
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if envOr("FRITAKAGP_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if serviceType == ServiceTypeWorker || cfg.Worker.RunInServer {
		if cfg.Worker.Concurrency <= 0 {
			return Config{}, fmt.Errorf("WORKER_CONCURRENCY must be positive")
		}
		if len(cfg.Kafka.Brokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when background workers run")
		}
		// A lock that expires before the lease lets a reclaimed copy of the
		// job run next to the original.
		if cfg.Redis.Enabled() && cfg.Redis.LockTTL < cfg.Worker.LeaseTimeout {
			return Config{}, fmt.Errorf("SUBMISSION_LOCK_TTL (%s) must not be shorter than WORKER_LEASE_TIMEOUT (%s)",
				cfg.Redis.LockTTL, cfg.Worker.LeaseTimeout)
		}
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// RunsWorkers reports whether this process should host the job dispatcher.
func (c Config) RunsWorkers(serviceType ServiceType) bool {
	return serviceType == ServiceTypeWorker || c.Worker.RunInServer
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c BucketConfig) Enabled() bool {
	return c.Name != ""
}

func (c DatapakkeConfig) Enabled() bool {
	return c.URL != "" && c.ID != ""
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
