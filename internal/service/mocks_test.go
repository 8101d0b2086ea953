package service_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/service"
	"fritakagp.app/backend/internal/store"
)

type mockSubmissions[T model.Record] struct {
	rows     map[uuid.UUID][]byte
	newFn    func() T
	insertFn func(ctx context.Context, record T) error
	// beforeModify runs once before the next Modify reads the row.
	beforeModify func()
}

func newMockSubmissions[T model.Record](newFn func() T) *mockSubmissions[T] {
	return &mockSubmissions[T]{rows: map[uuid.UUID][]byte{}, newFn: newFn}
}

func (m *mockSubmissions[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	data, ok := m.rows[id]
	if !ok {
		return zero, store.ErrNotFound
	}
	record := m.newFn()
	if err := json.Unmarshal(data, record); err != nil {
		return zero, err
	}
	return record, nil
}

func (m *mockSubmissions[T]) Insert(ctx context.Context, record T) error {
	if m.insertFn != nil {
		if err := m.insertFn(ctx, record); err != nil {
			return err
		}
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	m.rows[record.Base().ID] = data
	return nil
}

func (m *mockSubmissions[T]) Modify(ctx context.Context, id uuid.UUID, fn func(record T) error) (T, error) {
	var zero T
	if m.beforeModify != nil {
		hook := m.beforeModify
		m.beforeModify = nil
		hook()
	}
	record, err := m.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := fn(record); err != nil {
		return zero, err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return zero, err
	}
	m.rows[id] = data
	return record, nil
}

func (m *mockSubmissions[T]) Count(ctx context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

type mockJobStore struct {
	saved   []*model.Job
	countFn func(ctx context.Context) (map[model.JobStatus]int64, error)
}

func (m *mockJobStore) Save(ctx context.Context, job *model.Job) error {
	m.saved = append(m.saved, job)
	return nil
}

func (m *mockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return nil, store.ErrNotFound
}

func (m *mockJobStore) TakeNextDue(ctx context.Context, now time.Time) (*model.Job, error) {
	return nil, store.ErrNotFound
}

func (m *mockJobStore) MarkDone(ctx context.Context, job *model.Job) error    { return nil }
func (m *mockJobStore) UpdateState(ctx context.Context, job *model.Job) error { return nil }
func (m *mockJobStore) HasOpen(ctx context.Context, jobType string, submissionID uuid.UUID) (bool, error) {
	return false, nil
}
func (m *mockJobStore) ReclaimStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (m *mockJobStore) CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return map[model.JobStatus]int64{}, nil
}

type mockStores struct {
	chronicClaims         *mockSubmissions[*model.ChronicClaim]
	chronicApplications   *mockSubmissions[*model.ChronicApplication]
	pregnancyClaims       *mockSubmissions[*model.PregnancyClaim]
	pregnancyApplications *mockSubmissions[*model.PregnancyApplication]
	jobs                  *mockJobStore
}

func newMockStores() *mockStores {
	return &mockStores{
		chronicClaims:         newMockSubmissions(func() *model.ChronicClaim { return &model.ChronicClaim{} }),
		chronicApplications:   newMockSubmissions(func() *model.ChronicApplication { return &model.ChronicApplication{} }),
		pregnancyClaims:       newMockSubmissions(func() *model.PregnancyClaim { return &model.PregnancyClaim{} }),
		pregnancyApplications: newMockSubmissions(func() *model.PregnancyApplication { return &model.PregnancyApplication{} }),
		jobs:                  &mockJobStore{},
	}
}

func (s *mockStores) ChronicClaims() store.SubmissionStore[*model.ChronicClaim] {
	return s.chronicClaims
}

func (s *mockStores) ChronicApplications() store.SubmissionStore[*model.ChronicApplication] {
	return s.chronicApplications
}

func (s *mockStores) PregnancyClaims() store.SubmissionStore[*model.PregnancyClaim] {
	return s.pregnancyClaims
}

func (s *mockStores) PregnancyApplications() store.SubmissionStore[*model.PregnancyApplication] {
	return s.pregnancyApplications
}

func (s *mockStores) Jobs() store.JobStore { return s.jobs }

type mockTxRunner struct {
	stores *mockStores
	calls  int
}

func (r *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	r.calls++
	return fn(r.stores)
}

type mockScanner struct {
	scanFn func(ctx context.Context, content []byte) (bool, error)
}

func (m *mockScanner) Scan(ctx context.Context, content []byte) (bool, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, content)
	}
	return true, nil
}

type mockFiles struct {
	docs map[uuid.UUID]integration.Document
}

func (m *mockFiles) Put(ctx context.Context, id uuid.UUID, doc integration.Document) error {
	m.docs[id] = doc
	return nil
}

func (m *mockFiles) Get(ctx context.Context, id uuid.UUID) (*integration.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *mockFiles) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.docs, id)
	return nil
}

type mockPersons struct {
	lookupFn func(ctx context.Context, personID string) (*integration.Person, error)
}

func (m *mockPersons) Lookup(ctx context.Context, personID string) (*integration.Person, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, personID)
	}
	return &integration.Person{Name: "Navn " + personID}, nil
}

type mockOrgs struct {
	nameFn func(ctx context.Context, orgNumber string) (string, error)
}

func (m *mockOrgs) OrgName(ctx context.Context, orgNumber string) (string, error) {
	if m.nameFn != nil {
		return m.nameFn(ctx, orgNumber)
	}
	return "Stark Industries", nil
}
