package dto

import (
	"fmt"
	"time"

	"fritakagp.app/backend/internal/http/validation"
	"fritakagp.app/backend/internal/model"
)

type AbsenceRequest struct {
	YearMonth string  `json:"yearMonth" binding:"required,datetime=2006-01"`
	Days      float64 `json:"antallDagerMedFravaer" binding:"gte=0,lte=31"`
}

type ChronicApplicationRequest struct {
	OrgNumber         string           `json:"virksomhetsnummer" binding:"required,orgnr"`
	PersonID          string           `json:"identitetsnummer" binding:"required,identitetsnummer"`
	WorkTypes         []string         `json:"arbeidstyper" binding:"required,min=1,max=10"`
	StrainTypes       []string         `json:"paakjenningstyper" binding:"required,min=1,max=10"`
	StrainDescription *string          `json:"paakjenningBeskrivelse,omitempty" binding:"omitempty,max=2000"`
	Absence           []AbsenceRequest `json:"fravaer" binding:"required,dive"`
	NoHistoricAbsence bool             `json:"ikkeHistoriskFravaer"`
	PeriodCount       int              `json:"antallPerioder" binding:"gte=1,lte=300"`
	Confirmed         bool             `json:"bekreftet" binding:"required"`
	Documentation     string           `json:"dokumentasjon,omitempty"`
}

// Check rejects absence from the future, older than two years or exceeding
// the length of the month.
func (r ChronicApplicationRequest) Check() []validation.FieldError {
	return checkAbsence(r.Absence, time.Now(), r.StrainTypes, r.StrainDescription)
}

func checkAbsence(absence []AbsenceRequest, now time.Time, strainTypes []string, description *string) []validation.FieldError {
	errs := requireDescription(strainTypes, description, "paakjenningBeskrivelse")

	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	oldest := current.AddDate(-2, 0, 0)
	for i, a := range absence {
		path := fmt.Sprintf("fravaer[%d]", i)
		month, err := time.Parse("2006-01", a.YearMonth)
		if err != nil {
			continue
		}
		switch {
		case month.After(current):
			errs = append(errs, fieldError(path, "Fravær kan ikke være fram i tid."))
		case month.Before(oldest):
			errs = append(errs, fieldError(path, "Fravær kan ikke være eldre enn to år."))
		case a.Days > float64(daysIn(month)):
			errs = append(errs, fieldError(path, "Flere fraværsdager enn dager i måneden."))
		}
	}
	return errs
}

func daysIn(month time.Time) int {
	return month.AddDate(0, 1, -1).Day()
}

func (r ChronicApplicationRequest) ToRecord() *model.ChronicApplication {
	absence := make([]model.Absence, len(r.Absence))
	for i, a := range r.Absence {
		absence[i] = model.Absence{YearMonth: a.YearMonth, Days: a.Days}
	}
	return &model.ChronicApplication{
		Submission: model.Submission{
			PersonID:  r.PersonID,
			OrgNumber: r.OrgNumber,
		},
		WorkTypes:         r.WorkTypes,
		StrainTypes:       r.StrainTypes,
		StrainDescription: r.StrainDescription,
		Absence:           absence,
		NoHistoricAbsence: r.NoHistoricAbsence,
		PeriodCount:       r.PeriodCount,
		Confirmed:         r.Confirmed,
	}
}

func (r ChronicApplicationRequest) Attachment() string { return r.Documentation }

type PregnancyApplicationRequest struct {
	OrgNumber             string      `json:"virksomhetsnummer" binding:"required,orgnr"`
	PersonID              string      `json:"identitetsnummer" binding:"required,identitetsnummer"`
	Facilitated           bool        `json:"tilrettelegge"`
	MeasureTypes          []string    `json:"tiltak" binding:"max=10"`
	MeasureDescription    *string     `json:"tiltakBeskrivelse,omitempty" binding:"omitempty,max=2000"`
	Relocation            *string     `json:"omplassering,omitempty"`
	RelocationNotPossible *string     `json:"omplasseringAarsak,omitempty"`
	TermDate              *model.Date `json:"termindato,omitempty"`
	Confirmed             bool        `json:"bekreftet" binding:"required"`
	Documentation         string      `json:"dokumentasjon,omitempty"`
}

func (r PregnancyApplicationRequest) Check() []validation.FieldError {
	var errs []validation.FieldError
	if r.Facilitated && len(r.MeasureTypes) == 0 {
		errs = append(errs, fieldError("tiltak", "Minst ett tiltak må oppgis når det er tilrettelagt."))
	}
	return append(errs, requireDescription(r.MeasureTypes, r.MeasureDescription, "tiltakBeskrivelse")...)
}

func (r PregnancyApplicationRequest) ToRecord() *model.PregnancyApplication {
	return &model.PregnancyApplication{
		Submission: model.Submission{
			PersonID:  r.PersonID,
			OrgNumber: r.OrgNumber,
		},
		Facilitated:           r.Facilitated,
		MeasureTypes:          r.MeasureTypes,
		MeasureDescription:    r.MeasureDescription,
		Relocation:            r.Relocation,
		RelocationNotPossible: r.RelocationNotPossible,
		TermDate:              r.TermDate,
		Confirmed:             r.Confirmed,
	}
}

func (r PregnancyApplicationRequest) Attachment() string { return r.Documentation }
