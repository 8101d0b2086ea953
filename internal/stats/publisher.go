// Package stats publishes submission statistics to the public data package.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/internal/integration/httpclient"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/store"
)

// Counter reports how many submissions exist of each kind.
type Counter interface {
	Count(ctx context.Context) (map[model.SubmissionKind]int64, error)
}

type storeCounter struct {
	stores store.SubmissionStores
}

func NewStoreCounter(stores store.SubmissionStores) Counter {
	return &storeCounter{stores: stores}
}

func (c *storeCounter) Count(ctx context.Context) (map[model.SubmissionKind]int64, error) {
	counters := map[model.SubmissionKind]func(context.Context) (int64, error){
		model.KindChronicClaim:         c.stores.ChronicClaims().Count,
		model.KindChronicApplication:   c.stores.ChronicApplications().Count,
		model.KindPregnancyClaim:       c.stores.PregnancyClaims().Count,
		model.KindPregnancyApplication: c.stores.PregnancyApplications().Count,
	}
	out := make(map[model.SubmissionKind]int64, len(counters))
	for kind, count := range counters {
		n, err := count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", kind, err)
		}
		out[kind] = n
	}
	return out, nil
}

type Config struct {
	URL        string
	ID         string
	Interval   time.Duration
	WeeklyOnly bool
	Timeout    time.Duration
}

type row struct {
	Kind  string `json:"type"`
	Count int64  `json:"antall"`
}

type view struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Rows  []row  `json:"data"`
}

// Package is the document stored in the data package service.
type Package struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated"`
	Views       []view    `json:"views"`
}

// Publisher replaces the data package on a fixed interval.
type Publisher struct {
	counter Counter
	http    *httpclient.Client
	cfg     Config
	now     func() time.Time

	mu        sync.Mutex
	started   bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewPublisher(counter Counter, cfg Config) *Publisher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Publisher{
		counter:   counter,
		http:      httpclient.New("datapakke", cfg.URL, cfg.Timeout),
		cfg:       cfg,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run publishes every interval until Stop is called.
func (p *Publisher) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "fritakagp.stats.publisher",
	})

	p.mu.Lock()
	p.started = true
	p.mu.Unlock()
	defer close(p.stoppedCh)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "stats publisher started",
		"interval", p.cfg.Interval,
		"weekly_only", p.cfg.WeeklyOnly)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if _, err := p.PublishOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "publishing stats failed", "error", err)
			}
		}
	}
}

func (p *Publisher) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.stoppedCh
	}
}

// PublishOnce pushes the current counts. In weekly mode it only does so in
// the first hour of Monday and reports false otherwise.
func (p *Publisher) PublishOnce(ctx context.Context) (bool, error) {
	now := p.now()
	if p.cfg.WeeklyOnly && (now.Weekday() != time.Monday || now.Hour() != 0) {
		return false, nil
	}

	counts, err := p.counter.Count(ctx)
	if err != nil {
		return false, err
	}

	doc := Build(counts, now)
	if err := p.http.JSON(ctx, http.MethodPut, "/"+p.cfg.ID, doc, nil); err != nil {
		return false, fmt.Errorf("updating data package %s: %w", p.cfg.ID, err)
	}

	slog.InfoContext(ctx, "data package updated", "datapakke_id", p.cfg.ID)
	return true, nil
}

// Build lays the counts out in a fixed kind order.
func Build(counts map[model.SubmissionKind]int64, now time.Time) Package {
	rows := make([]row, 0, len(model.AllKinds))
	for _, kind := range model.AllKinds {
		rows = append(rows, row{Kind: string(kind), Count: counts[kind]})
	}
	return Package{
		Title:       "Fritak fra arbeidsgiverperioden",
		Description: "Antall søknader og refusjonskrav om fritak fra arbeidsgiverperioden",
		UpdatedAt:   now,
		Views: []view{{
			Title: "Innsendte skjema",
			Type:  "table",
			Rows:  rows,
		}},
	}
}
