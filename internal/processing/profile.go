package processing

import "fritakagp.app/backend/internal/model"

// profile holds the per-kind texts and template names used when a submission
// is rendered, archived and announced.
type profile struct {
	title          string
	documentCode   string
	template       string
	receiptTitle   string
	receiptTmpl    string
	deleteTitle    string
	deleteCode     string
	deleteTemplate string
	discriminator  string
	eventType      string
	noun           string
}

const supplementaryCode = "soeknad_om_fritak_fra_agp_dokumentasjon"

var profiles = map[model.SubmissionKind]profile{
	model.KindChronicClaim: {
		title:          "Krav om refusjon av arbeidsgiverperioden - kronisk eller langvarig sykdom",
		documentCode:   "krav_om_fritak_fra_agp_kronisk",
		template:       "kronisk-krav",
		receiptTitle:   "Kvittering for mottatt krav om fritak fra arbeidsgiverperioden grunnet kronisk sykdom",
		receiptTmpl:    "kronisk-krav-kvittering",
		deleteTitle:    "Annullering av refusjonskrav ifbm kronisk lidelse fra arbeidsgiverperioden",
		deleteCode:     "annuller_krav_om_fritak_fra_agp_kronisk",
		deleteTemplate: "kronisk-krav-sletting",
		discriminator:  "KRONISK",
		eventType:      "KroniskKrav",
		noun:           "refusjonskravet",
	},
	model.KindChronicApplication: {
		title:         "Søknad om fritak fra arbeidsgiverperioden - kronisk eller langvarig sykdom",
		documentCode:  "soeknad_om_fritak_fra_agp_kronisk",
		template:      "kronisk-soeknad",
		receiptTitle:  "Kvittering for mottatt søknad om fritak fra arbeidsgiverperioden grunnet kronisk sykdom",
		receiptTmpl:   "kronisk-soeknad-kvittering",
		discriminator: "KRONISK",
		eventType:     "KroniskSoeknad",
		noun:          "søknaden",
	},
	model.KindPregnancyClaim: {
		title:          "Krav om refusjon av arbeidsgiverperioden - graviditet",
		documentCode:   "krav_om_fritak_fra_agp_gravid",
		template:       "gravid-krav",
		receiptTitle:   "Kvittering for mottatt krav om fritak fra arbeidsgiverperioden grunnet risiko for høyt sykefravær knyttet til graviditet",
		receiptTmpl:    "gravid-krav-kvittering",
		deleteTitle:    "Annullering av refusjonskrav ifbm graviditet fra arbeidsgiverperioden",
		deleteCode:     "annuller_krav_om_fritak_fra_agp_gravid",
		deleteTemplate: "gravid-krav-sletting",
		discriminator:  "GRAVID",
		eventType:      "GravidKrav",
		noun:           "refusjonskravet",
	},
	model.KindPregnancyApplication: {
		title:         "Søknad om fritak fra arbeidsgiverperioden - graviditet",
		documentCode:  "soeknad_om_fritak_fra_agp_gravid",
		template:      "gravid-soeknad",
		receiptTitle:  "Kvittering for mottatt søknad om fritak fra arbeidsgiverperioden grunnet risiko for høyt sykefravær knyttet til graviditet",
		receiptTmpl:   "gravid-soeknad-kvittering",
		discriminator: "GRAVID",
		eventType:     "GravidSoeknad",
		noun:          "søknaden",
	},
}
