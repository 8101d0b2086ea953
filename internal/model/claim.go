package model

import "time"

type ClaimStatus string

const (
	ClaimStatusCreated ClaimStatus = "OPPRETTET"
	ClaimStatusDeleted ClaimStatus = "SLETTET"
)

// ClaimMeta tracks withdrawal of a claim. DeleteArchiveRef and DeleteTaskRef
// mirror the submission markers for the delete pipeline.
type ClaimMeta struct {
	Status           ClaimStatus `json:"status"`
	DeleteArchiveRef *string     `json:"sletteJournalpostId,omitempty"`
	DeleteTaskRef    *string     `json:"sletteOppgaveId,omitempty"`
	DeletedBy        *string     `json:"slettetAv,omitempty"`
	DeletedByName    *string     `json:"slettetAvNavn,omitempty"`
	ChangedAt        *time.Time  `json:"endretDato,omitempty"`
}

func (c *ClaimMeta) Claim() *ClaimMeta {
	return c
}

func (c *ClaimMeta) IsDeleted() bool {
	return c.Status == ClaimStatusDeleted
}

// MarkDeleted records who withdrew the claim. Returns false if already deleted.
func (c *ClaimMeta) MarkDeleted(by string, byName *string, at time.Time) bool {
	if c.IsDeleted() {
		return false
	}
	c.Status = ClaimStatusDeleted
	c.DeletedBy = &by
	c.DeletedByName = byName
	c.ChangedAt = &at
	return true
}

// EmployerPeriod is one employer-paid sick period a refund is claimed for.
type EmployerPeriod struct {
	From          Date    `json:"fom"`
	To            Date    `json:"tom"`
	RefundDays    int     `json:"antallDagerMedRefusjon"`
	MonthlyIncome float64 `json:"månedsinntekt"`
	Grading       float64 `json:"gradering"`
	Amount        float64 `json:"beloep"`
}

type ChronicClaim struct {
	Submission
	ClaimMeta
	Periods     []EmployerPeriod `json:"perioder"`
	ControlDays *int             `json:"kontrollDager,omitempty"`
	DayCount    int              `json:"antallDager"`
}

func (*ChronicClaim) Kind() SubmissionKind { return KindChronicClaim }

type PregnancyClaim struct {
	Submission
	ClaimMeta
	Periods  []EmployerPeriod `json:"perioder"`
	DayCount int              `json:"antallDager"`
}

func (*PregnancyClaim) Kind() SubmissionKind { return KindPregnancyClaim }
