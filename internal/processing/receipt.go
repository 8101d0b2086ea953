package processing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
)

// ReceiptProcessor sends the employer a confirmation with a rendered copy of
// the submission. It touches no markers, so a failed attempt is retried whole.
type ReceiptProcessor[T model.Record] struct {
	deps Deps
}

func NewReceiptProcessor[T model.Record](deps Deps) *ReceiptProcessor[T] {
	return &ReceiptProcessor[T]{deps: deps.withDefaults()}
}

func (p *ReceiptProcessor[T]) Process(ctx context.Context, job *model.Job) error {
	ctx, payload, err := decode[T](ctx, job)
	if err != nil {
		return err
	}
	record, err := load[T](ctx, p.deps.Stores, payload.SubmissionID)
	if err != nil {
		return err
	}
	base := record.Base()
	prof := profiles[record.Kind()]

	pdf, err := p.deps.Renderer.Render(ctx, prof.receiptTmpl, record)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", prof.receiptTmpl, err)
	}

	if err := p.deps.Correspondence.Send(ctx, integration.Receipt{
		SubmissionID: base.ID,
		OrgNumber:    base.OrgNumber,
		Title:        prof.receiptTitle,
		Body:         fmt.Sprintf("%s er mottatt %s.", strings.ToUpper(prof.noun[:1])+prof.noun[1:], base.CreatedAt.Format("02.01.2006 15:04")),
		Attachment:   pdf,
	}); err != nil {
		return fmt.Errorf("sending receipt: %w", err)
	}

	inc(ctx, p.deps.Metrics.receipts, record.Kind())
	slog.InfoContext(ctx, "receipt sent")
	return nil
}
