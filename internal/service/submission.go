package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/store"
)

var (
	// ErrNotFound covers both missing submissions and ones the requester did not send.
	ErrNotFound       = errors.New("submission not found")
	ErrInfected       = errors.New("attachment did not pass the virus scan")
	ErrAlreadyDeleted = errors.New("claim is already withdrawn")
)

// Attachment is supporting documentation uploaded with a submission.
type Attachment struct {
	Content  []byte
	FileType string
}

type SubmissionService[T model.Record] interface {
	// Create stores a new submission and schedules its processing and receipt
	// jobs in the same transaction.
	Create(ctx context.Context, requester string, record T, attachment *Attachment) (T, error)
	// Get returns the submission if requester sent it or is the employee it concerns.
	Get(ctx context.Context, requester string, id uuid.UUID) (T, error)
}

type ClaimService[T model.ClaimRecord] interface {
	SubmissionService[T]
	// Delete withdraws the claim and schedules the withdrawal job.
	Delete(ctx context.Context, requester string, id uuid.UUID) (T, error)
}

type submissionService[T model.Record] struct {
	stores   StoreProvider
	tx       TxRunner
	producer queue.Producer
	files    integration.FileStorage
	scanner  integration.VirusScanner
	persons  integration.PersonLookup
	orgs     integration.OrgLookup
	now      func() time.Time
}

func newSubmissionService[T model.Record](d Deps) *submissionService[T] {
	return &submissionService[T]{
		stores:   d.Stores,
		tx:       d.Tx,
		producer: d.Producer,
		files:    d.Files,
		scanner:  d.Scanner,
		persons:  d.Persons,
		orgs:     d.Orgs,
		now:      d.now(),
	}
}

func NewSubmissionService[T model.Record](d Deps) SubmissionService[T] {
	return newSubmissionService[T](d)
}

func (s *submissionService[T]) Create(ctx context.Context, requester string, record T, attachment *Attachment) (T, error) {
	var zero T
	base := record.Base()
	base.ID = uuid.New()
	base.CreatedAt = s.now()
	base.SubmittedBy = requester
	base.ArchiveRef, base.TaskRef = nil, nil
	base.HasAttachment = false
	if claim, ok := any(record).(model.ClaimRecord); ok {
		*claim.Claim() = model.ClaimMeta{Status: model.ClaimStatusCreated}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SubmissionID:   logger.Ptr(base.ID.String()),
		SubmissionKind: logger.Ptr(string(record.Kind())),
	})

	s.fillNames(ctx, base)

	if attachment != nil {
		clean, err := s.scanner.Scan(ctx, attachment.Content)
		if err != nil {
			return zero, fmt.Errorf("scanning attachment: %w", err)
		}
		if !clean {
			slog.WarnContext(ctx, "rejected infected attachment")
			return zero, ErrInfected
		}
		if err := s.files.Put(ctx, base.ID, integration.Document{
			Content:  attachment.Content,
			FileType: attachment.FileType,
		}); err != nil {
			return zero, fmt.Errorf("storing attachment: %w", err)
		}
		base.HasAttachment = true
	}

	payload := queue.NewPayload(record)
	err := s.tx.WithTx(ctx, func(stores StoreProvider) error {
		if err := store.Submissions[T](stores).Insert(ctx, record); err != nil {
			return fmt.Errorf("inserting %s: %w", record.Kind(), err)
		}
		tasks := []queue.Task{
			{Type: queue.ProcessTask(record.Kind()), Payload: payload, MaxAttempts: queue.ProcessingMaxAttempts},
			{Type: queue.ReceiptTask(record.Kind()), Payload: payload, MaxAttempts: queue.ReceiptMaxAttempts},
		}
		for _, task := range tasks {
			if _, err := s.producer.Enqueue(ctx, stores.Jobs(), task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create submission", "error", err)
		return zero, err
	}

	slog.InfoContext(ctx, "submission created", "has_attachment", base.HasAttachment)
	return record, nil
}

// fillNames looks up display names. Missing names do not block a submission.
func (s *submissionService[T]) fillNames(ctx context.Context, base *model.Submission) {
	if s.persons != nil {
		if person, err := s.persons.Lookup(ctx, base.PersonID); err != nil {
			slog.WarnContext(ctx, "person lookup failed", "error", err)
		} else {
			base.PersonName = &person.Name
		}
		if person, err := s.persons.Lookup(ctx, base.SubmittedBy); err != nil {
			slog.WarnContext(ctx, "submitter lookup failed", "error", err)
		} else {
			base.SubmittedByName = &person.Name
		}
	}
	if s.orgs != nil && base.OrgName == nil {
		if name, err := s.orgs.OrgName(ctx, base.OrgNumber); err != nil {
			slog.WarnContext(ctx, "org lookup failed", "error", err)
		} else {
			base.OrgName = &name
		}
	}
}

func (s *submissionService[T]) Get(ctx context.Context, requester string, id uuid.UUID) (T, error) {
	var zero T
	record, err := store.Submissions[T](s.stores).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("getting submission: %w", err)
	}
	if base := record.Base(); base.SubmittedBy != requester && base.PersonID != requester {
		return zero, ErrNotFound
	}
	return record, nil
}

type claimService[T model.ClaimRecord] struct {
	*submissionService[T]
}

func NewClaimService[T model.ClaimRecord](d Deps) ClaimService[T] {
	return &claimService[T]{submissionService: newSubmissionService[T](d)}
}

func (s *claimService[T]) Delete(ctx context.Context, requester string, id uuid.UUID) (T, error) {
	var zero T
	record, err := s.Get(ctx, requester, id)
	if err != nil {
		return zero, err
	}
	if record.Base().SubmittedBy != requester {
		return zero, ErrNotFound
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SubmissionID:   logger.Ptr(id.String()),
		SubmissionKind: logger.Ptr(string(record.Kind())),
	})

	var byName *string
	if s.persons != nil {
		if person, err := s.persons.Lookup(ctx, requester); err == nil {
			byName = &person.Name
		}
	}
	err = s.tx.WithTx(ctx, func(stores StoreProvider) error {
		withdrawn, err := store.Submissions[T](stores).Modify(ctx, id, func(current T) error {
			if !current.Claim().MarkDeleted(requester, byName, s.now()) {
				return ErrAlreadyDeleted
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("withdrawing %s: %w", record.Kind(), err)
		}
		record = withdrawn
		_, err = s.producer.Enqueue(ctx, stores.Jobs(), queue.Task{
			Type:        queue.DeleteTask(record.Kind()),
			Payload:     queue.NewPayload(record),
			MaxAttempts: queue.ProcessingMaxAttempts,
		})
		return err
	})
	if errors.Is(err, ErrAlreadyDeleted) {
		return zero, ErrAlreadyDeleted
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to withdraw claim", "error", err)
		return zero, err
	}

	slog.InfoContext(ctx, "claim withdrawn")
	return record, nil
}
