// Package integration declares the external systems the pipeline talks to.
// Concrete clients live in the subpackages; processors depend on these
// interfaces only.
package integration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrPersonNotFound is returned by PersonLookup when the registry has no entry.
var ErrPersonNotFound = errors.New("person not found in registry")

type VariantFormat string

const (
	VariantArchive  VariantFormat = "ARKIV"
	VariantOriginal VariantFormat = "ORIGINAL"
)

type DocumentVariant struct {
	FileType string
	Format   VariantFormat
	Content  []byte
}

type ArchiveDocument struct {
	Title    string
	Code     string
	Variants []DocumentVariant
}

type ArchiveRequest struct {
	Title     string
	PersonID  string
	OrgNumber string
	OrgName   string
	// ExternalRef lets the archive reject a second journal entry for the same submission.
	ExternalRef string
	Documents   []ArchiveDocument
}

// Archive journals documents and returns the archive reference (journalpostId).
type Archive interface {
	Archive(ctx context.Context, req ArchiveRequest) (string, error)
}

const (
	TaskTypeRobot        = "ROB_BEH"
	TaskTypeDistribution = "FDR"
)

type TaskRequest struct {
	TaskType    string
	Description string
	ArchiveRef  string
	ActorID     string
	GeoArea     string
	DueDate     time.Time
}

// TaskClient creates case-tasks and returns the task id (oppgaveId).
type TaskClient interface {
	CreateTask(ctx context.Context, req TaskRequest) (string, error)
}

// Document is a user-uploaded attachment held in the bucket until archived.
type Document struct {
	Content  []byte
	FileType string
}

// FileStorage keeps attachments keyed by submission id. Get returns nil when
// nothing is stored; deleting a missing object is not an error.
type FileStorage interface {
	Put(ctx context.Context, id uuid.UUID, doc Document) error
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Renderer turns a submission into a PDF using a named template.
type Renderer interface {
	Render(ctx context.Context, template string, data any) ([]byte, error)
}

type Person struct {
	Name    string
	ActorID string
	GeoArea string
}

type PersonLookup interface {
	Lookup(ctx context.Context, personID string) (*Person, error)
}

type OrgLookup interface {
	OrgName(ctx context.Context, orgNumber string) (string, error)
}

type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Publisher writes messages to the event bus.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
}

type Receipt struct {
	SubmissionID uuid.UUID
	OrgNumber    string
	Title        string
	Body         string
	Attachment   []byte
}

// Correspondence delivers receipts to the employer's message box.
type Correspondence interface {
	Send(ctx context.Context, receipt Receipt) error
}

type VirusScanner interface {
	// Scan reports whether content is clean.
	Scan(ctx context.Context, content []byte) (bool, error)
}
