package processing_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/processing"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/store"
	"fritakagp.app/backend/internal/worker"
)

// memSubmissions keeps records as JSON so every load returns a fresh copy,
// the way the database does.
type memSubmissions[T model.Record] struct {
	mu      sync.Mutex
	rows    map[uuid.UUID][]byte
	newFn   func() T
	updates int
	// beforeModify runs once at the start of the next Modify, standing in for
	// a writer that commits between a job's load and its write.
	beforeModify func()
}

func newMemSubmissions[T model.Record](newFn func() T) *memSubmissions[T] {
	return &memSubmissions[T]{rows: map[uuid.UUID][]byte{}, newFn: newFn}
}

func (m *memSubmissions[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memSubmissions[T]) Insert(ctx context.Context, record T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	m.rows[record.Base().ID] = data
	return nil
}

// Modify applies fn to a fresh copy under the lock, which is what the
// versioned update in the real store guarantees.
func (m *memSubmissions[T]) Modify(ctx context.Context, id uuid.UUID, fn func(record T) error) (T, error) {
	if m.beforeModify != nil {
		hook := m.beforeModify
		m.beforeModify = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	data, ok := m.rows[id]
	if !ok {
		return zero, store.ErrNotFound
	}
	record := m.newFn()
	if err := json.Unmarshal(data, record); err != nil {
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
	m.updates++
	return record, nil
}

// replace overwrites a stored row, for arranging test state.
func (m *memSubmissions[T]) replace(record T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	m.rows[record.Base().ID] = data
}

func (m *memSubmissions[T]) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type memJobs struct {
	mu    sync.Mutex
	saved []*model.Job
}

func (m *memJobs) Save(ctx context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, job)
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return nil, store.ErrNotFound
}

func (m *memJobs) TakeNextDue(ctx context.Context, now time.Time) (*model.Job, error) {
	return nil, store.ErrNotFound
}

func (m *memJobs) MarkDone(ctx context.Context, job *model.Job) error    { return nil }
func (m *memJobs) UpdateState(ctx context.Context, job *model.Job) error { return nil }

func (m *memJobs) HasOpen(ctx context.Context, jobType string, submissionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.saved {
		if job.Type != jobType || job.IsTerminal() {
			continue
		}
		payload, err := queue.ParsePayload(job.Data)
		if err == nil && payload.SubmissionID == submissionID {
			return true, nil
		}
	}
	return false, nil
}
func (m *memJobs) ReclaimStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (m *memJobs) CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error) {
	return map[model.JobStatus]int64{}, nil
}

type memStores struct {
	chronicClaims         *memSubmissions[*model.ChronicClaim]
	chronicApplications   *memSubmissions[*model.ChronicApplication]
	pregnancyClaims       *memSubmissions[*model.PregnancyClaim]
	pregnancyApplications *memSubmissions[*model.PregnancyApplication]
	jobs                  *memJobs
}

func newMemStores() *memStores {
	return &memStores{
		chronicClaims:         newMemSubmissions(func() *model.ChronicClaim { return &model.ChronicClaim{} }),
		chronicApplications:   newMemSubmissions(func() *model.ChronicApplication { return &model.ChronicApplication{} }),
		pregnancyClaims:       newMemSubmissions(func() *model.PregnancyClaim { return &model.PregnancyClaim{} }),
		pregnancyApplications: newMemSubmissions(func() *model.PregnancyApplication { return &model.PregnancyApplication{} }),
		jobs:                  &memJobs{},
	}
}

func (s *memStores) ChronicClaims() store.SubmissionStore[*model.ChronicClaim] {
	return s.chronicClaims
}

func (s *memStores) ChronicApplications() store.SubmissionStore[*model.ChronicApplication] {
	return s.chronicApplications
}

func (s *memStores) PregnancyClaims() store.SubmissionStore[*model.PregnancyClaim] {
	return s.pregnancyClaims
}

func (s *memStores) PregnancyApplications() store.SubmissionStore[*model.PregnancyApplication] {
	return s.pregnancyApplications
}

func (s *memStores) Jobs() store.JobStore { return s.jobs }

type memTxRunner struct {
	stores *memStores
	calls  int
}

func (r *memTxRunner) WithTx(ctx context.Context, fn func(stores processing.StoreProvider) error) error {
	r.calls++
	return fn(r.stores)
}

type mockArchive struct {
	archiveFn func(ctx context.Context, req integration.ArchiveRequest) (string, error)
	requests  []integration.ArchiveRequest
}

func (m *mockArchive) Archive(ctx context.Context, req integration.ArchiveRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.archiveFn != nil {
		return m.archiveFn(ctx, req)
	}
	return "A1", nil
}

type mockTasks struct {
	createFn func(ctx context.Context, req integration.TaskRequest) (string, error)
	requests []integration.TaskRequest
}

func (m *mockTasks) CreateTask(ctx context.Context, req integration.TaskRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return "T1", nil
}

type mockFiles struct {
	docs    map[uuid.UUID]integration.Document
	deleted []uuid.UUID
}

func newMockFiles() *mockFiles {
	return &mockFiles{docs: map[uuid.UUID]integration.Document{}}
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
	m.deleted = append(m.deleted, id)
	delete(m.docs, id)
	return nil
}

type mockRenderer struct {
	templates []string
}

func (m *mockRenderer) Render(ctx context.Context, template string, data any) ([]byte, error) {
	m.templates = append(m.templates, template)
	return []byte("%PDF-1.7"), nil
}

type mockPersons struct {
	lookupFn func(ctx context.Context, personID string) (*integration.Person, error)
}

func (m *mockPersons) Lookup(ctx context.Context, personID string) (*integration.Person, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, personID)
	}
	return &integration.Person{Name: "Ola Nordmann", ActorID: "aktør-id", GeoArea: "SWE"}, nil
}

type mockOrgs struct{}

func (mockOrgs) OrgName(ctx context.Context, orgNumber string) (string, error) {
	return "Stark Industries", nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, msgs ...integration.Message) error
	messages  []integration.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msgs ...integration.Message) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, msgs...); err != nil {
			return err
		}
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

type mockCorrespondence struct {
	receipts []integration.Receipt
}

func (m *mockCorrespondence) Send(ctx context.Context, receipt integration.Receipt) error {
	m.receipts = append(m.receipts, receipt)
	return nil
}

type mockLocker struct {
	acquireFn func(ctx context.Context, key string) (func(context.Context) error, error)
	released  int
}

func (m *mockLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if m.acquireFn != nil {
		return m.acquireFn(ctx, key)
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, nil
}

type mockRegistrar struct {
	types []string
}

func (m *mockRegistrar) Register(jobType string, p worker.Processor) error {
	m.types = append(m.types, jobType)
	return nil
}
