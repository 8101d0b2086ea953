package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"fritakagp.app/backend/common/errtrack"
	"fritakagp.app/backend/core/config"
	"fritakagp.app/backend/core/db"
	"fritakagp.app/backend/internal/integration/kafka"
	"fritakagp.app/backend/internal/processing"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/stats"
	"fritakagp.app/backend/internal/store"
	"fritakagp.app/backend/internal/worker"
)

// Background runs the job dispatcher, the stale job reclaimer and, when
// configured, the statistics publisher.
type Background struct {
	dispatcher *worker.Dispatcher
	reclaimer  *worker.Reclaimer
	stats      *stats.Publisher
	publisher  *kafka.Publisher

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewBackground(cfg config.Config, database *db.DB, redisClient *redis.Client, integrations *Integrations) (*Background, error) {
	stores := store.NewStores(database.Queries())
	consumer := queue.NewPostgresConsumer(stores.Jobs())

	metrics, err := processing.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout)

	dispatcher := worker.New(consumer, worker.Config{
		Concurrency:   cfg.Worker.Concurrency,
		PollInterval:  cfg.Worker.PollInterval,
		ShutdownGrace: cfg.Worker.ShutdownGrace,
		Backoff: worker.BackoffConfig{
			Base: cfg.Worker.BackoffBase,
			Max:  cfg.Worker.BackoffMax,
		},
	}).WithReporter(errtrack.NewReporter())

	deps := processing.Deps{
		Stores:         stores,
		Tx:             processing.NewTxRunner(database),
		Producer:       queue.NewProducer(slog.Default()),
		Locker:         NewLocker(redisClient, cfg.Redis),
		Archive:        integrations.Archive,
		Tasks:          integrations.Tasks,
		Files:          integrations.Files,
		Renderer:       integrations.Renderer,
		Persons:        integrations.Persons,
		Orgs:           integrations.Orgs,
		Publisher:      publisher,
		Correspondence: integrations.Correspondence,
		Metrics:        metrics,
	}
	if err := processing.RegisterAll(dispatcher, deps, processing.Config{
		FrontendURL:       cfg.FrontendURL,
		ClaimTopic:        cfg.Kafka.ClaimTopic,
		ApplicationTopic:  cfg.Kafka.ApplicationTopic,
		NotificationTopic: cfg.Kafka.NotificationTopic,
	}); err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("registering processors: %w", err)
	}

	b := &Background{
		dispatcher: dispatcher,
		reclaimer: worker.NewReclaimer(consumer, worker.ReclaimerConfig{
			Lease:    cfg.Worker.LeaseTimeout,
			Interval: cfg.Worker.ReclaimEvery,
		}),
		publisher: publisher,
	}

	if cfg.Datapakke.Enabled() {
		b.stats = stats.NewPublisher(stats.NewStoreCounter(stores), stats.Config{
			URL:        cfg.Datapakke.URL,
			ID:         cfg.Datapakke.ID,
			Interval:   cfg.Datapakke.Interval,
			WeeklyOnly: cfg.Datapakke.WeeklyOnly,
			Timeout:    cfg.Integrations.Timeout,
		})
	}

	return b, nil
}

// Start launches the loops in the background.
func (b *Background) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		if err := b.dispatcher.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "dispatcher exited", "error", err)
		}
	}()
	go func() {
		defer b.wg.Done()
		b.reclaimer.Run(ctx)
	}()

	if b.stats != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.stats.Run(ctx)
		}()
	}

	slog.InfoContext(ctx, "background workers running", "job_types", len(b.dispatcher.Types()))
}

// Stop halts polling, waits for in-flight jobs within the shutdown grace and
// flushes the event publisher. Calls after the first are no-ops.
func (b *Background) Stop() {
	b.stopOnce.Do(func() {
		b.reclaimer.Stop()
		if b.stats != nil {
			b.stats.Stop()
		}
		b.dispatcher.Stop()

		b.mu.Lock()
		started := b.started
		b.mu.Unlock()
		if started {
			b.wg.Wait()
		}

		if err := b.publisher.Close(); err != nil {
			slog.Error("failed to close kafka publisher", "error", err)
		}
	})
}
