package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
)

// Job is a durable unit of background work. Data is opaque to the dispatcher
// and decoded by the processor registered for Type.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	Status      JobStatus       `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	RunAt       time.Time       `json:"run_at"`
	LastError   *string         `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	// LeaseToken identifies the worker run that took the job. Outcome writes
	// carrying an older token are rejected.
	LeaseToken uuid.UUID `json:"-"`
}

func NewJob(jobType string, data json.RawMessage, maxAttempts int, runAt time.Time) *Job {
	return &Job{
		ID:          uuid.New(),
		Type:        jobType,
		Data:        data,
		Status:      JobStatusPending,
		MaxAttempts: maxAttempts,
		RunAt:       runAt,
	}
}

func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}
