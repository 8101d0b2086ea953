// Package pdfgen renders submissions to PDF through the template service.
package pdfgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fritakagp.app/backend/internal/integration/httpclient"
)

type Client struct {
	http *httpclient.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("pdfgen", baseURL, timeout)}
}

func (c *Client) Render(ctx context.Context, template string, data any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s data: %w", template, err)
	}
	pdf, err := c.http.Do(ctx, http.MethodPost, "/api/v1/genpdf/fritakagp/"+template, body, "application/json")
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("pdfgen returned an empty document for %s", template)
	}
	return pdf, nil
}
