package service

import (
	"context"
	"fmt"

	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/store"
)

type JobService interface {
	// CountByStatus reports queue depth for the health endpoint.
	CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error)
}

type jobService struct {
	jobs store.JobStore
}

func NewJobService(jobs store.JobStore) JobService {
	return &jobService{jobs: jobs}
}

func (s *jobService) CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error) {
	counts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	for _, status := range []model.JobStatus{model.JobStatusPending, model.JobStatusProcessing, model.JobStatusDone, model.JobStatusFailed} {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	return counts, nil
}
