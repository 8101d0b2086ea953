// Package clamav scans uploads for malware.
package clamav

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fritakagp.app/backend/internal/integration/httpclient"
)

type scanResult struct {
	Filename string `json:"Filename"`
	Result   string `json:"Result"`
}

type Client struct {
	http *httpclient.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("clamav", baseURL, timeout)}
}

func (c *Client) Scan(ctx context.Context, content []byte) (bool, error) {
	resp, err := c.http.Do(ctx, http.MethodPut, "/scan", content, "application/octet-stream")
	if err != nil {
		return false, err
	}
	var results []scanResult
	if err := json.Unmarshal(resp, &results); err != nil {
		return false, fmt.Errorf("decoding clamav response: %w", err)
	}
	if len(results) == 0 {
		return false, fmt.Errorf("clamav returned no result")
	}
	for _, r := range results {
		if !strings.EqualFold(r.Result, "OK") {
			return false, nil
		}
	}
	return true, nil
}
