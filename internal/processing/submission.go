package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
)

const unknownOrgName = "Ukjent arbeidsgiver"

// SubmissionProcessor drives a new application or claim through the archive
// and case-task steps and then schedules its event and notification jobs.
// Each step is skipped when its marker is already set, so a retried job
// repeats only the work that did not finish.
type SubmissionProcessor[T model.Record] struct {
	deps Deps
	cfg  Config
}

func NewSubmissionProcessor[T model.Record](deps Deps, cfg Config) *SubmissionProcessor[T] {
	return &SubmissionProcessor[T]{deps: deps.withDefaults(), cfg: cfg.withDefaults()}
}

func (p *SubmissionProcessor[T]) Process(ctx context.Context, job *model.Job) error {
	ctx, payload, err := decode[T](ctx, job)
	if err != nil {
		return err
	}

	unlock, err := p.deps.lockSubmission(ctx, payload.SubmissionID, p.cfg.LockRetryAfter)
	if err != nil {
		return err
	}
	defer unlock()

	record, err := load[T](ctx, p.deps.Stores, payload.SubmissionID)
	if err != nil {
		return err
	}
	id := record.Base().ID

	if record.Base().ArchiveRef == nil {
		ref, err := p.archive(ctx, record)
		if err != nil {
			return err
		}
		record, err = modify(ctx, p.deps.Stores, id, func(r T) error {
			return r.Base().SetArchiveRef(ref)
		})
		if err != nil {
			return err
		}
		inc(ctx, p.deps.Metrics.archived, record.Kind())
		slog.InfoContext(ctx, "submission archived", "archive_ref", ref)
	}

	// The attachment is only needed for archiving and is removed whether or
	// not this run did the archiving.
	if err := p.deps.Files.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}

	var taskRef string
	if record.Base().TaskRef == nil {
		taskRef, err = p.createTask(ctx, record)
		if err != nil {
			return err
		}
	}

	if err := p.fanOut(ctx, record, taskRef); err != nil {
		return err
	}
	if taskRef != "" {
		inc(ctx, p.deps.Metrics.tasksCreated, record.Kind())
		slog.InfoContext(ctx, "case-task created", "task_id", taskRef)
	}
	return nil
}

// OnPermanentFailure creates a distribution task so a caseworker picks the
// submission up manually.
func (p *SubmissionProcessor[T]) OnPermanentFailure(ctx context.Context, job *model.Job) error {
	ctx, payload, err := decode[T](ctx, job)
	if err != nil {
		return err
	}
	record, err := load[T](ctx, p.deps.Stores, payload.SubmissionID)
	if err != nil {
		return err
	}
	var archiveRef string
	if ref := record.Base().ArchiveRef; ref != nil {
		archiveRef = *ref
	}
	desc := fmt.Sprintf("Klarte ikke å opprette oppgave og/eller journalføre for %s: %s",
		profiles[record.Kind()].noun, record.Base().ID)
	return p.deps.createDistributionTask(ctx, record, desc, archiveRef)
}

func (p *SubmissionProcessor[T]) archive(ctx context.Context, record T) (string, error) {
	base := record.Base()
	prof := profiles[record.Kind()]

	pdf, err := p.deps.Renderer.Render(ctx, prof.template, record)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", prof.template, err)
	}
	original, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding original document: %w", err)
	}

	docs := []integration.ArchiveDocument{{
		Title: prof.title,
		Code:  prof.documentCode,
		Variants: []integration.DocumentVariant{
			{FileType: "PDFA", Format: integration.VariantArchive, Content: pdf},
			{FileType: "JSON", Format: integration.VariantOriginal, Content: original},
		},
	}}

	attachment, err := p.deps.Files.Get(ctx, base.ID)
	if err != nil {
		return "", fmt.Errorf("fetching attachment: %w", err)
	}
	if attachment != nil {
		docs = append(docs, integration.ArchiveDocument{
			Title: "Tilleggsdokumentasjon",
			Code:  supplementaryCode,
			Variants: []integration.DocumentVariant{
				{FileType: strings.ToUpper(attachment.FileType), Format: integration.VariantArchive, Content: attachment.Content},
				{FileType: "JSON", Format: integration.VariantOriginal, Content: attachment.Content},
			},
		})
	}

	return p.deps.Archive.Archive(ctx, integration.ArchiveRequest{
		Title:       prof.title,
		PersonID:    base.PersonID,
		OrgNumber:   base.OrgNumber,
		OrgName:     p.orgName(ctx, base),
		ExternalRef: base.ID.String(),
		Documents:   docs,
	})
}

func (p *SubmissionProcessor[T]) orgName(ctx context.Context, base *model.Submission) string {
	if base.OrgName != nil {
		return *base.OrgName
	}
	if p.deps.Orgs == nil {
		return unknownOrgName
	}
	name, err := p.deps.Orgs.OrgName(ctx, base.OrgNumber)
	if err != nil {
		slog.WarnContext(ctx, "org name lookup failed", "error", err)
		return unknownOrgName
	}
	return name
}

func (p *SubmissionProcessor[T]) createTask(ctx context.Context, record T) (string, error) {
	base := record.Base()

	person, err := p.deps.Persons.Lookup(ctx, base.PersonID)
	if err != nil {
		return "", fmt.Errorf("looking up person: %w", err)
	}
	desc, err := taskDescription(record, profiles[record.Kind()].discriminator)
	if err != nil {
		return "", err
	}

	ref, err := p.deps.Tasks.CreateTask(ctx, integration.TaskRequest{
		TaskType:    integration.TaskTypeRobot,
		Description: desc,
		ArchiveRef:  *base.ArchiveRef,
		ActorID:     person.ActorID,
		GeoArea:     person.GeoArea,
		DueDate:     p.deps.dueDate(),
	})
	if err != nil {
		return "", fmt.Errorf("creating case-task: %w", err)
	}
	return ref, nil
}

// fanOut stores the case-task reference created by this run, if any, and
// schedules the downstream jobs in one transaction. A claim withdrawn before
// it got this far still has its event published, but the employee is not
// notified about it.
func (p *SubmissionProcessor[T]) fanOut(ctx context.Context, record T, taskRef string) error {
	return p.deps.Tx.WithTx(ctx, func(stores StoreProvider) error {
		current := record
		if taskRef != "" {
			updated, err := modify(ctx, stores, record.Base().ID, func(r T) error {
				return r.Base().SetTaskRef(taskRef)
			})
			if err != nil {
				return err
			}
			current = updated
		}

		taskTypes := []queue.TaskType{queue.EventTask(current.Kind())}
		if !withdrawn(current) {
			taskTypes = append(taskTypes, queue.TaskTypeUserNotification)
		}

		payload := queue.NewPayload(current)
		for _, taskType := range taskTypes {
			if _, err := p.deps.Producer.Enqueue(ctx, stores.Jobs(), queue.Task{
				Type:        taskType,
				Payload:     payload,
				MaxAttempts: queue.FanOutMaxAttempts,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func withdrawn(record model.Record) bool {
	claim, ok := record.(model.ClaimRecord)
	return ok && claim.Claim().IsDeleted()
}
