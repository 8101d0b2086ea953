package store

import (
	"fmt"

	"fritakagp.app/backend/core/db/sqlc"
	"fritakagp.app/backend/internal/model"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Jobs() JobStore {
	return newJobStore(s.queries)
}

func (s *Stores) ChronicClaims() SubmissionStore[*model.ChronicClaim] {
	return newSubmissionStore(s.queries, sqlc.TableChronicClaim, func() *model.ChronicClaim { return &model.ChronicClaim{} })
}

func (s *Stores) ChronicApplications() SubmissionStore[*model.ChronicApplication] {
	return newSubmissionStore(s.queries, sqlc.TableChronicApplication, func() *model.ChronicApplication { return &model.ChronicApplication{} })
}

func (s *Stores) PregnancyClaims() SubmissionStore[*model.PregnancyClaim] {
	return newSubmissionStore(s.queries, sqlc.TablePregnancyClaim, func() *model.PregnancyClaim { return &model.PregnancyClaim{} })
}

func (s *Stores) PregnancyApplications() SubmissionStore[*model.PregnancyApplication] {
	return newSubmissionStore(s.queries, sqlc.TablePregnancyApplication, func() *model.PregnancyApplication { return &model.PregnancyApplication{} })
}

// Submissions picks the store matching T out of stores. Generic pipeline code
// uses it to reach the right table without a per-kind switch at every call site.
func Submissions[T model.Record](stores SubmissionStores) SubmissionStore[T] {
	var zero T
	var s any
	switch any(zero).(type) {
	case *model.ChronicClaim:
		s = stores.ChronicClaims()
	case *model.ChronicApplication:
		s = stores.ChronicApplications()
	case *model.PregnancyClaim:
		s = stores.PregnancyClaims()
	case *model.PregnancyApplication:
		s = stores.PregnancyApplications()
	default:
		panic(fmt.Sprintf("store: no submission store for %T", zero))
	}
	return s.(SubmissionStore[T])
}
