// Package oppgave creates case-tasks for caseworkers and robots.
package oppgave

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/httpclient"
)

type createRequest struct {
	ActorID         string `json:"aktoerId,omitempty"`
	ArchiveRef      string `json:"journalpostId,omitempty"`
	Description     string `json:"beskrivelse"`
	Theme           string `json:"tema"`
	TaskType        string `json:"oppgavetype"`
	BehandlingsTema string `json:"behandlingstema,omitempty"`
	GeoArea         string `json:"tildeltEnhetsnr,omitempty"`
	ActiveDate      string `json:"aktivDato"`
	DueDate         string `json:"fristFerdigstillelse"`
	Priority        string `json:"prioritet"`
}

type createResponse struct {
	ID int64 `json:"id"`
}

type Client struct {
	http *httpclient.Client
	now  func() time.Time
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("oppgave", baseURL, timeout), now: time.Now}
}

func (c *Client) CreateTask(ctx context.Context, req integration.TaskRequest) (string, error) {
	body := createRequest{
		ActorID:     req.ActorID,
		ArchiveRef:  req.ArchiveRef,
		Description: req.Description,
		Theme:       "SYK",
		TaskType:    req.TaskType,
		GeoArea:     req.GeoArea,
		ActiveDate:  c.now().Format("2006-01-02"),
		DueDate:     req.DueDate.Format("2006-01-02"),
		Priority:    "NORM",
	}
	if req.TaskType == integration.TaskTypeRobot {
		body.BehandlingsTema = "ab0338"
	}

	var resp createResponse
	if err := c.http.JSON(ctx, http.MethodPost, "/api/v1/oppgaver", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == 0 {
		return "", fmt.Errorf("oppgave returned no id")
	}
	return strconv.FormatInt(resp.ID, 10), nil
}
