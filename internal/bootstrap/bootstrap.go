// Package bootstrap builds the integration clients and background workers
// shared by cmd/server and cmd/worker.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"fritakagp.app/backend/core/config"
	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/altinn"
	"fritakagp.app/backend/internal/integration/brreg"
	"fritakagp.app/backend/internal/integration/bucket"
	"fritakagp.app/backend/internal/integration/clamav"
	"fritakagp.app/backend/internal/integration/dokarkiv"
	"fritakagp.app/backend/internal/integration/oppgave"
	"fritakagp.app/backend/internal/integration/pdfgen"
	"fritakagp.app/backend/internal/integration/pdl"
	"fritakagp.app/backend/internal/lock"
)

// Integrations holds the clients for the external systems.
type Integrations struct {
	Archive        integration.Archive
	Tasks          integration.TaskClient
	Files          integration.FileStorage
	Renderer       integration.Renderer
	Persons        integration.PersonLookup
	Orgs           integration.OrgLookup
	Correspondence integration.Correspondence
	Scanner        integration.VirusScanner

	closers []func() error
}

func NewIntegrations(ctx context.Context, cfg config.Config) (*Integrations, error) {
	ic := cfg.Integrations
	i := &Integrations{
		Archive:        dokarkiv.New(ic.ArchiveURL, ic.Timeout),
		Tasks:          oppgave.New(ic.TaskURL, ic.Timeout),
		Renderer:       pdfgen.New(ic.PDFGenURL, ic.Timeout),
		Persons:        pdl.New(ic.PersonRegistryURL, ic.Timeout),
		Orgs:           brreg.New(ic.OrgRegistryURL, ic.Timeout),
		Correspondence: altinn.New(ic.CorrespondenceURL, ic.Timeout),
		Scanner:        clamav.New(ic.VirusScanURL, ic.Timeout),
	}

	if cfg.Bucket.Enabled() {
		gcs, err := bucket.NewGCS(ctx, cfg.Bucket.Name, cfg.Bucket.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("creating bucket client: %w", err)
		}
		i.Files = gcs
		i.closers = append(i.closers, gcs.Close)
		slog.InfoContext(ctx, "attachment bucket configured", "bucket", cfg.Bucket.Name)
	} else {
		if cfg.IsProduction() {
			return nil, errors.New("GCP_BUCKET_NAME is required in production")
		}
		i.Files = bucket.NewMemory()
		slog.WarnContext(ctx, "no bucket configured, attachments are kept in memory")
	}

	return i, nil
}

func (i *Integrations) Close() {
	for _, closeFn := range i.closers {
		if err := closeFn(); err != nil {
			slog.Error("failed to close integration client", "error", err)
		}
	}
}

// ConnectRedis returns nil when no Redis URL is configured.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// NewLocker uses Redis when a client is available and no locking otherwise.
func NewLocker(client *redis.Client, cfg config.RedisConfig) lock.Locker {
	if client == nil {
		return lock.Noop{}
	}
	return lock.NewRedisLocker(client, cfg.LockTTL)
}
