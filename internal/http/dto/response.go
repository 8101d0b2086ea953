package dto

import "github.com/google/uuid"

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type HealthResponse struct {
	Status string           `json:"status"`
	Jobs   map[string]int64 `json:"jobs,omitempty"`
}
