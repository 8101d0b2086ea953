package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and workers enrich the context once; every slog call below them picks the
// fields up without passing them around.
type LogFields struct {
	JobID          *string // Background job UUID
	JobType        *string // Background job type tag
	SubmissionID   *string // Application or claim UUID
	SubmissionKind *string // e.g. "ChronicClaim"
	Attempt        *int    // Attempt number of the running job
	Component      string  // e.g. "fritakagp.worker.dispatcher"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, update LogFields) LogFields {
	result := existing

	if update.JobID != nil {
		result.JobID = update.JobID
	}
	if update.JobType != nil {
		result.JobType = update.JobType
	}
	if update.SubmissionID != nil {
		result.SubmissionID = update.SubmissionID
	}
	if update.SubmissionKind != nil {
		result.SubmissionKind = update.SubmissionKind
	}
	if update.Attempt != nil {
		result.Attempt = update.Attempt
	}
	if update.Component != "" {
		result.Component = update.Component
	}

	return result
}

func (f LogFields) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 6)
	for _, s := range []struct {
		key   string
		value *string
	}{
		{"job_id", f.JobID},
		{"job_type", f.JobType},
		{"submission_id", f.SubmissionID},
		{"submission_kind", f.SubmissionKind},
	} {
		if s.value != nil {
			attrs = append(attrs, slog.String(s.key, *s.value))
		}
	}
	if f.Attempt != nil {
		attrs = append(attrs, slog.Int("attempt", *f.Attempt))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{JobType: logger.Ptr(job.Type)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
