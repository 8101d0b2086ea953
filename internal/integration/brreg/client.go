// Package brreg reads organisation names from the entity register.
package brreg

import (
	"context"
	"net/http"
	"time"

	"fritakagp.app/backend/internal/integration/httpclient"
)

type unit struct {
	Name string `json:"navn"`
}

type Client struct {
	http *httpclient.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("brreg", baseURL, timeout)}
}

// OrgName returns the registered name of a sub-unit.
func (c *Client) OrgName(ctx context.Context, orgNumber string) (string, error) {
	var u unit
	if err := c.http.JSON(ctx, http.MethodGet, "/enhetsregisteret/api/underenheter/"+orgNumber, nil, &u); err != nil {
		return "", err
	}
	return u.Name, nil
}
