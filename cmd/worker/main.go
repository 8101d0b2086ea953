package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fritakagp.app/backend/common/errtrack"
	"fritakagp.app/backend/common/id"
	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/common/otel"
	"fritakagp.app/backend/core/config"
	"fritakagp.app/backend/core/db"
	"fritakagp.app/backend/internal/bootstrap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if enabled, err := errtrack.Setup(cfg, "fritakagp-worker"); err != nil {
		slog.ErrorContext(ctx, "failed to initialize sentry", "error", err)
		os.Exit(1)
	} else if enabled {
		defer errtrack.Flush(2 * time.Second)
	}

	slog.InfoContext(ctx, "fritakagp worker starting",
		"env", cfg.Env,
		"concurrency", cfg.Worker.Concurrency,
		"brokers", cfg.Kafka.Brokers)

	// NODE_ID must differ from the server's so event ids never collide
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		slog.InfoContext(ctx, "redis connected, submission locking enabled")
	}

	integrations, err := bootstrap.NewIntegrations(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create integration clients", "error", err)
		os.Exit(1)
	}
	defer integrations.Close()

	background, err := bootstrap.NewBackground(cfg, database, redisClient, integrations)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create background workers", "error", err)
		os.Exit(1)
	}
	background.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	// Stop blocks for at most the dispatcher's shutdown grace
	background.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
  __      _ _        _                      
 / _|_ __(_) |_ __ _| | ____ _  __ _ _ __   
| |_| '__| | __/ _' | |/ / _' |/ _' | '_ \  
|  _| |  | | || (_| |   < (_| | (_| | |_) | 
|_| |_|  |_|\__\__,_|_|\_\__,_|\__, | .__/  
                               |___/|_|  worker
`
