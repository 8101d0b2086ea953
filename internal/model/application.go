package model

// Absence is the number of absence days in one calendar month (YYYY-MM).
type Absence struct {
	YearMonth string  `json:"yearMonth"`
	Days      float64 `json:"antallDagerMedFravaer"`
}

type ChronicApplication struct {
	Submission
	WorkTypes         []string  `json:"arbeidstyper"`
	StrainTypes       []string  `json:"paakjenningstyper"`
	StrainDescription *string   `json:"paakjenningBeskrivelse,omitempty"`
	Absence           []Absence `json:"fravaer"`
	NoHistoricAbsence bool      `json:"ikkeHistoriskFravaer"`
	PeriodCount       int       `json:"antallPerioder"`
	Confirmed         bool      `json:"bekreftet"`
}

func (*ChronicApplication) Kind() SubmissionKind { return KindChronicApplication }

type PregnancyApplication struct {
	Submission
	Facilitated           bool     `json:"tilrettelegge"`
	MeasureTypes          []string `json:"tiltak"`
	MeasureDescription    *string  `json:"tiltakBeskrivelse,omitempty"`
	Relocation            *string  `json:"omplassering,omitempty"`
	RelocationNotPossible *string  `json:"omplasseringAarsak,omitempty"`
	TermDate              *Date    `json:"termindato,omitempty"`
	Confirmed             bool     `json:"bekreftet"`
}

func (*PregnancyApplication) Kind() SubmissionKind { return KindPregnancyApplication }
