// Package altinn delivers receipts to the employer's message box.
package altinn

import (
	"context"
	"net/http"
	"time"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/httpclient"
)

const serviceCode = "5534"

type attachment struct {
	Name    string `json:"name"`
	Content []byte `json:"data"`
}

type correspondence struct {
	Reportee    string       `json:"reportee"`
	ServiceCode string       `json:"serviceCode"`
	ExternalRef string       `json:"externalShipmentReference"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type Client struct {
	http *httpclient.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("altinn", baseURL, timeout)}
}

// Send posts the receipt. The submission id doubles as the shipment
// reference so the message box can discard repeats.
func (c *Client) Send(ctx context.Context, r integration.Receipt) error {
	msg := correspondence{
		Reportee:    r.OrgNumber,
		ServiceCode: serviceCode,
		ExternalRef: r.SubmissionID.String(),
		Title:       r.Title,
		Body:        r.Body,
	}
	if len(r.Attachment) > 0 {
		msg.Attachments = []attachment{{Name: "kvittering.pdf", Content: r.Attachment}}
	}
	err := c.http.JSON(ctx, http.MethodPost, "/correspondence", msg, nil)
	if httpclient.IsStatus(err, http.StatusConflict) {
		return nil
	}
	return err
}
