package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/worker"
)

const (
	notificationText          = "Arbeidsgiveren din har søkt om utvidet støtte fra NAV angående sykepenger til deg."
	notificationSecurityLevel = 4
	notificationVisibleDays   = 31
)

// Notification is the message the user sees on their personal page.
type Notification struct {
	EventID       string    `json:"eventId"`
	PersonID      string    `json:"fodselsnummer"`
	GroupingID    string    `json:"grupperingsId"`
	Text          string    `json:"tekst"`
	Link          string    `json:"link"`
	SecurityLevel int       `json:"sikkerhetsnivaa"`
	CreatedAt     time.Time `json:"tidspunkt"`
	VisibleUntil  time.Time `json:"synligFremTil"`
}

// NotificationProcessor tells the employee that a submission concerning them
// was received. It serves every submission kind.
type NotificationProcessor struct {
	deps    Deps
	topic   string
	baseURL string
}

func NewNotificationProcessor(deps Deps, cfg Config) *NotificationProcessor {
	return &NotificationProcessor{
		deps:    deps.withDefaults(),
		topic:   cfg.NotificationTopic,
		baseURL: strings.TrimSuffix(cfg.FrontendURL, "/"),
	}
}

func (p *NotificationProcessor) Process(ctx context.Context, job *model.Job) error {
	payload, err := queue.ParsePayload(job.Data)
	if err != nil {
		return worker.Permanent(err)
	}
	record, err := loadAny(ctx, p.deps.Stores, payload)
	if err != nil {
		return err
	}

	now := p.deps.Now()
	msg := Notification{
		EventID:       p.deps.NewEventID(),
		PersonID:      record.Base().PersonID,
		GroupingID:    payload.SubmissionID.String(),
		Text:          notificationText,
		Link:          p.Link(payload.Kind, payload.SubmissionID.String()),
		SecurityLevel: notificationSecurityLevel,
		CreatedAt:     record.Base().CreatedAt,
		VisibleUntil:  now.AddDate(0, 0, notificationVisibleDays),
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	if err := p.deps.Publisher.Publish(ctx, integration.Message{
		Topic: p.topic,
		Key:   msg.EventID,
		Value: value,
	}); err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	inc(ctx, p.deps.Metrics.notifications, payload.Kind)
	slog.InfoContext(ctx, "user notification published", "event_id", msg.EventID)
	return nil
}

// Link is the deep link into the frontend, e.g. <base>/kronisk/krav/<id>.
func (p *NotificationProcessor) Link(kind model.SubmissionKind, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s", p.baseURL, kind.Domain(), kind.Form(), id)
}
