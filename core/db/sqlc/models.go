package sqlc

import (
	"time"

	"github.com/google/uuid"
)

type BackgroundJob struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Data        []byte     `json:"data"`
	Status      string     `json:"status"`
	Attempts    int32      `json:"attempts"`
	MaxAttempts int32      `json:"max_attempts"`
	RunAt       time.Time  `json:"run_at"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LeaseToken  *uuid.UUID `json:"lease_token"`
}

// Submission is a row in any of the JSONB submission tables.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Version   int64     `json:"version"`
}

// SubmissionTable names one of the per-kind submission tables.
type SubmissionTable string

const (
	TableChronicApplication   SubmissionTable = "chronic_application"
	TableChronicClaim         SubmissionTable = "chronic_claim"
	TablePregnancyApplication SubmissionTable = "pregnancy_application"
	TablePregnancyClaim       SubmissionTable = "pregnancy_claim"
)

func (t SubmissionTable) Valid() bool {
	switch t {
	case TableChronicApplication, TableChronicClaim, TablePregnancyApplication, TablePregnancyClaim:
		return true
	}
	return false
}
