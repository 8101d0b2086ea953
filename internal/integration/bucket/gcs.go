// Package bucket keeps uploaded attachments in Google Cloud Storage until the
// pipeline has archived them.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"fritakagp.app/backend/internal/integration"
)

const fileTypeKey = "filetype"

type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewGCS(ctx context.Context, bucketName, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &GCS{client: client, bucket: client.Bucket(bucketName)}, nil
}

func (g *GCS) Put(ctx context.Context, id uuid.UUID, doc integration.Document) error {
	w := g.bucket.Object(id.String()).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.Metadata = map[string]string{fileTypeKey: doc.FileType}

	if _, err := w.Write(doc.Content); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing attachment %s: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing attachment %s: %w", id, err)
	}
	return nil
}

func (g *GCS) Get(ctx context.Context, id uuid.UUID) (*integration.Document, error) {
	obj := g.bucket.Object(id.String())

	attrs, err := obj.Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", id, err)
	}

	r, err := obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", id, err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", id, err)
	}
	return &integration.Document{Content: content, FileType: attrs.Metadata[fileTypeKey]}, nil
}

func (g *GCS) Delete(ctx context.Context, id uuid.UUID) error {
	err := g.bucket.Object(id.String()).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting attachment %s: %w", id, err)
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// Memory is an in-process FileStorage for local runs without a bucket.
type Memory struct {
	mu   sync.Mutex
	docs map[uuid.UUID]integration.Document
}

func NewMemory() *Memory {
	return &Memory{docs: map[uuid.UUID]integration.Document{}}
}

func (m *Memory) Put(ctx context.Context, id uuid.UUID, doc integration.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = doc
	return nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (*integration.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}
