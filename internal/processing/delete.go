package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/worker"
)

var ErrNotArchived = errors.New("claim was never archived")

// ClaimDeleteProcessor journals the withdrawal of a claim and creates a task
// for it. Only claims that reached the archive can be withdrawn there: while
// the claim's own processing job is still open the withdrawal waits for it.
type ClaimDeleteProcessor[T model.ClaimRecord] struct {
	deps Deps
	cfg  Config
}

func NewClaimDeleteProcessor[T model.ClaimRecord](deps Deps, cfg Config) *ClaimDeleteProcessor[T] {
	return &ClaimDeleteProcessor[T]{deps: deps.withDefaults(), cfg: cfg.withDefaults()}
}

func (p *ClaimDeleteProcessor[T]) Process(ctx context.Context, job *model.Job) error {
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
		pending, err := p.deps.Stores.Jobs().HasOpen(ctx, string(queue.ProcessTask(record.Kind())), id)
		if err != nil {
			return fmt.Errorf("checking processing job: %w", err)
		}
		if pending {
			return worker.Deferred("claim is not archived yet", p.cfg.ArchiveWaitAfter)
		}
		return worker.Permanent(fmt.Errorf("withdrawing %s: %w", id, ErrNotArchived))
	}

	if record.Claim().DeleteArchiveRef == nil {
		ref, err := p.archiveDeletion(ctx, record)
		if err != nil {
			return err
		}
		record, err = modify(ctx, p.deps.Stores, id, func(r T) error {
			return setOnce(&r.Claim().DeleteArchiveRef, ref)
		})
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "claim withdrawal archived", "archive_ref", ref)
	}

	if record.Claim().DeleteTaskRef == nil {
		ref, err := p.createDeletionTask(ctx, record)
		if err != nil {
			return err
		}
		if _, err := modify(ctx, p.deps.Stores, id, func(r T) error {
			return setOnce(&r.Claim().DeleteTaskRef, ref)
		}); err != nil {
			return err
		}
		slog.InfoContext(ctx, "claim withdrawal task created", "task_id", ref)
	}

	return nil
}

func setOnce(field **string, ref string) error {
	if *field != nil {
		return model.ErrRefAlreadySet
	}
	*field = &ref
	return nil
}

func (p *ClaimDeleteProcessor[T]) OnPermanentFailure(ctx context.Context, job *model.Job) error {
	ctx, payload, err := decode[T](ctx, job)
	if err != nil {
		return err
	}
	record, err := load[T](ctx, p.deps.Stores, payload.SubmissionID)
	if err != nil {
		return err
	}
	archiveRef := ""
	if ref := record.Claim().DeleteArchiveRef; ref != nil {
		archiveRef = *ref
	} else if ref := record.Base().ArchiveRef; ref != nil {
		archiveRef = *ref
	}
	desc := fmt.Sprintf("Klarte ikke å journalføre og/eller opprette oppgave for sletting av %s: %s",
		profiles[record.Kind()].noun, record.Base().ID)
	return p.deps.createDistributionTask(ctx, record, desc, archiveRef)
}

func (p *ClaimDeleteProcessor[T]) archiveDeletion(ctx context.Context, record T) (string, error) {
	base := record.Base()
	prof := profiles[record.Kind()]

	pdf, err := p.deps.Renderer.Render(ctx, prof.deleteTemplate, record)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", prof.deleteTemplate, err)
	}
	original, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding original document: %w", err)
	}

	orgName := unknownOrgName
	if base.OrgName != nil {
		orgName = *base.OrgName
	}

	return p.deps.Archive.Archive(ctx, integration.ArchiveRequest{
		Title:       prof.deleteTitle,
		PersonID:    base.PersonID,
		OrgNumber:   base.OrgNumber,
		OrgName:     orgName,
		ExternalRef: "slett-" + base.ID.String(),
		Documents: []integration.ArchiveDocument{{
			Title: prof.deleteTitle,
			Code:  prof.deleteCode,
			Variants: []integration.DocumentVariant{
				{FileType: "PDFA", Format: integration.VariantArchive, Content: pdf},
				{FileType: "JSON", Format: integration.VariantOriginal, Content: original},
			},
		}},
	})
}

func (p *ClaimDeleteProcessor[T]) createDeletionTask(ctx context.Context, record T) (string, error) {
	base, claim := record.Base(), record.Claim()

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
		ArchiveRef:  *claim.DeleteArchiveRef,
		ActorID:     person.ActorID,
		GeoArea:     person.GeoArea,
		DueDate:     p.deps.dueDate(),
	})
	if err != nil {
		return "", fmt.Errorf("creating withdrawal task: %w", err)
	}
	return ref, nil
}
