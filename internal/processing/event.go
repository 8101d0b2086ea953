package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
)

// EventProcessor publishes the stored submission to the claims or applications topic.
type EventProcessor[T model.Record] struct {
	deps  Deps
	topic string
}

func NewEventProcessor[T model.Record](deps Deps, cfg Config) *EventProcessor[T] {
	topic := cfg.ApplicationTopic
	if kindOf[T]().IsClaim() {
		topic = cfg.ClaimTopic
	}
	return &EventProcessor[T]{deps: deps.withDefaults(), topic: topic}
}

func (p *EventProcessor[T]) Process(ctx context.Context, job *model.Job) error {
	ctx, payload, err := decode[T](ctx, job)
	if err != nil {
		return err
	}
	record, err := load[T](ctx, p.deps.Stores, payload.SubmissionID)
	if err != nil {
		return err
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	eventType := profiles[record.Kind()].eventType

	if err := p.deps.Publisher.Publish(ctx, integration.Message{
		Topic:   p.topic,
		Key:     payload.SubmissionID.String(),
		Value:   value,
		Headers: map[string]string{"type": eventType},
	}); err != nil {
		return fmt.Errorf("publishing %s: %w", eventType, err)
	}

	inc(ctx, p.deps.Metrics.events, record.Kind())
	slog.InfoContext(ctx, "submission event published", "topic", p.topic, "type", eventType)
	return nil
}
