package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type SubmissionKind string

const (
	KindChronicClaim         SubmissionKind = "ChronicClaim"
	KindChronicApplication   SubmissionKind = "ChronicApplication"
	KindPregnancyClaim       SubmissionKind = "PregnancyClaim"
	KindPregnancyApplication SubmissionKind = "PregnancyApplication"
)

var AllKinds = []SubmissionKind{
	KindChronicClaim,
	KindChronicApplication,
	KindPregnancyClaim,
	KindPregnancyApplication,
}

func (k SubmissionKind) Valid() bool {
	switch k {
	case KindChronicClaim, KindChronicApplication, KindPregnancyClaim, KindPregnancyApplication:
		return true
	}
	return false
}

func (k SubmissionKind) IsClaim() bool {
	return k == KindChronicClaim || k == KindPregnancyClaim
}

// Domain is the benefit area in URL form: "kronisk" or "gravid".
func (k SubmissionKind) Domain() string {
	if k == KindChronicClaim || k == KindChronicApplication {
		return "kronisk"
	}
	return "gravid"
}

// Form is "krav" for claims and "soeknad" for applications.
func (k SubmissionKind) Form() string {
	if k.IsClaim() {
		return "krav"
	}
	return "soeknad"
}

// Stage is the pipeline position derived from the progress markers.
type Stage string

const (
	StageNotStarted  Stage = "not_started"
	StageArchived    Stage = "archived"
	StageTaskCreated Stage = "task_created"
)

var ErrRefAlreadySet = errors.New("reference already set")

// Submission holds the fields shared by every application and claim.
// ArchiveRef and TaskRef are set at most once and never cleared.
type Submission struct {
	ID              uuid.UUID `json:"id"`
	CreatedAt       time.Time `json:"opprettet"`
	SubmittedBy     string    `json:"sendtAv"`
	SubmittedByName *string   `json:"sendtAvNavn,omitempty"`
	PersonID        string    `json:"identitetsnummer"`
	PersonName      *string   `json:"navn,omitempty"`
	OrgNumber       string    `json:"virksomhetsnummer"`
	OrgName         *string   `json:"virksomhetsnavn,omitempty"`
	HasAttachment   bool      `json:"harVedlegg"`
	ArchiveRef      *string   `json:"journalpostId,omitempty"`
	TaskRef         *string   `json:"oppgaveId,omitempty"`
}

func NewSubmission(submittedBy, personID, orgNumber string) Submission {
	return Submission{
		ID:          uuid.New(),
		CreatedAt:   time.Now(),
		SubmittedBy: submittedBy,
		PersonID:    personID,
		OrgNumber:   orgNumber,
	}
}

func (s *Submission) Base() *Submission {
	return s
}

func (s *Submission) Stage() Stage {
	switch {
	case s.TaskRef != nil:
		return StageTaskCreated
	case s.ArchiveRef != nil:
		return StageArchived
	default:
		return StageNotStarted
	}
}

func (s *Submission) SetArchiveRef(ref string) error {
	if s.ArchiveRef != nil {
		return ErrRefAlreadySet
	}
	s.ArchiveRef = &ref
	return nil
}

func (s *Submission) SetTaskRef(ref string) error {
	if s.TaskRef != nil {
		return ErrRefAlreadySet
	}
	s.TaskRef = &ref
	return nil
}

// Record is implemented by the four concrete submission types.
type Record interface {
	Base() *Submission
	Kind() SubmissionKind
}

// ClaimRecord is a Record that can be withdrawn.
type ClaimRecord interface {
	Record
	Claim() *ClaimMeta
}
