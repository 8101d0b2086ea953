// Package errtrack forwards terminal job failures to Sentry.
package errtrack

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"fritakagp.app/backend/core/config"
)

// Setup initializes the global Sentry client. Returns false when no DSN is configured.
func Setup(cfg config.Config, serverName string) (bool, error) {
	if !cfg.Sentry.Enabled() {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		AttachStacktrace: true,
		ServerName:       serverName,
		Release:          cfg.OTel.ServiceVersion,
		Environment:      cfg.Env,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Reporter captures errors with tags describing where they came from.
type Reporter struct {
	hub *sentry.Hub
}

func NewReporter() *Reporter {
	return &Reporter{hub: sentry.CurrentHub()}
}

func (r *Reporter) Report(_ context.Context, err error, tags map[string]string) {
	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}
