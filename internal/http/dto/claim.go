package dto

import (
	"fmt"

	"fritakagp.app/backend/internal/http/validation"
	"fritakagp.app/backend/internal/model"
)

const maxMonthlyIncome = 10_000_000

type EmployerPeriodRequest struct {
	From          model.Date `json:"fom"`
	To            model.Date `json:"tom"`
	RefundDays    int        `json:"antallDagerMedRefusjon" binding:"gte=0"`
	MonthlyIncome float64    `json:"månedsinntekt" binding:"gte=0"`
	Grading       float64    `json:"gradering" binding:"gte=0.2,lte=1"`
}

type ChronicClaimRequest struct {
	OrgNumber     string                  `json:"virksomhetsnummer" binding:"required,orgnr"`
	PersonID      string                  `json:"identitetsnummer" binding:"required,identitetsnummer"`
	Periods       []EmployerPeriodRequest `json:"perioder" binding:"required,min=1,dive"`
	Confirmed     bool                    `json:"bekreftet" binding:"required"`
	ControlDays   *int                    `json:"kontrollDager,omitempty" binding:"omitempty,gte=0"`
	DayCount      int                     `json:"antallDager" binding:"gte=0"`
	Documentation string                  `json:"dokumentasjon,omitempty"`
}

func (r ChronicClaimRequest) Check() []validation.FieldError {
	return checkPeriods(r.Periods)
}

func (r ChronicClaimRequest) ToRecord() *model.ChronicClaim {
	return &model.ChronicClaim{
		Submission: model.Submission{
			PersonID:  r.PersonID,
			OrgNumber: r.OrgNumber,
		},
		Periods:     toPeriods(r.Periods),
		ControlDays: r.ControlDays,
		DayCount:    r.DayCount,
	}
}

func (r ChronicClaimRequest) Attachment() string { return r.Documentation }

type PregnancyClaimRequest struct {
	OrgNumber     string                  `json:"virksomhetsnummer" binding:"required,orgnr"`
	PersonID      string                  `json:"identitetsnummer" binding:"required,identitetsnummer"`
	Periods       []EmployerPeriodRequest `json:"perioder" binding:"required,min=1,dive"`
	Confirmed     bool                    `json:"bekreftet" binding:"required"`
	DayCount      int                     `json:"antallDager" binding:"gte=0"`
	Documentation string                  `json:"dokumentasjon,omitempty"`
}

func (r PregnancyClaimRequest) Check() []validation.FieldError {
	return checkPeriods(r.Periods)
}

func (r PregnancyClaimRequest) ToRecord() *model.PregnancyClaim {
	return &model.PregnancyClaim{
		Submission: model.Submission{
			PersonID:  r.PersonID,
			OrgNumber: r.OrgNumber,
		},
		Periods:  toPeriods(r.Periods),
		DayCount: r.DayCount,
	}
}

func (r PregnancyClaimRequest) Attachment() string { return r.Documentation }

func checkPeriods(periods []EmployerPeriodRequest) []validation.FieldError {
	var errs []validation.FieldError
	for i, p := range periods {
		path := fmt.Sprintf("perioder[%d]", i)
		if p.From.IsZero() || p.To.IsZero() {
			errs = append(errs, fieldError(path, "Periode må ha fom og tom."))
			continue
		}
		if p.To.Before(p.From.Time) {
			errs = append(errs, fieldError(path+".fom", "Fom må være før eller lik tom."))
			continue
		}
		if days := int(p.To.Sub(p.From.Time).Hours()/24) + 1; p.RefundDays > days {
			errs = append(errs, fieldError(path+".antallDagerMedRefusjon", "Refusjonsdager kan ikke overstige periodens lengde."))
		}
		if p.MonthlyIncome > maxMonthlyIncome {
			errs = append(errs, fieldError(path+".månedsinntekt", "Månedsinntekt må være mellom 0 og 10 millioner."))
		}
	}
	return errs
}

// toPeriods copies the periods. Amount is left at zero; refund calculation is
// done by the case worker.
func toPeriods(periods []EmployerPeriodRequest) []model.EmployerPeriod {
	out := make([]model.EmployerPeriod, len(periods))
	for i, p := range periods {
		out[i] = model.EmployerPeriod{
			From:          p.From,
			To:            p.To,
			RefundDays:    p.RefundDays,
			MonthlyIncome: p.MonthlyIncome,
			Grading:       p.Grading,
		}
	}
	return out
}
