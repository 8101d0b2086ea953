package service

import (
	"time"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
)

type Deps struct {
	Stores   StoreProvider
	Tx       TxRunner
	Producer queue.Producer
	Files    integration.FileStorage
	Scanner  integration.VirusScanner
	Persons  integration.PersonLookup
	Orgs     integration.OrgLookup
	Now      func() time.Time
}

func (d Deps) now() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

type Services struct {
	deps Deps
}

func NewServices(deps Deps) *Services {
	if deps.Producer == nil {
		deps.Producer = queue.NewProducer(nil)
	}
	return &Services{deps: deps}
}

func (s *Services) ChronicClaims() ClaimService[*model.ChronicClaim] {
	return NewClaimService[*model.ChronicClaim](s.deps)
}

func (s *Services) ChronicApplications() SubmissionService[*model.ChronicApplication] {
	return NewSubmissionService[*model.ChronicApplication](s.deps)
}

func (s *Services) PregnancyClaims() ClaimService[*model.PregnancyClaim] {
	return NewClaimService[*model.PregnancyClaim](s.deps)
}

func (s *Services) PregnancyApplications() SubmissionService[*model.PregnancyApplication] {
	return NewSubmissionService[*model.PregnancyApplication](s.deps)
}

func (s *Services) Jobs() JobService {
	return NewJobService(s.deps.Stores.Jobs())
}
