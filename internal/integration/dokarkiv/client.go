// Package dokarkiv journals submissions in the document archive.
package dokarkiv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/httpclient"
)

const journalPath = "/rest/journalpostapi/v1/journalpost?forsoekFerdigstill=true"

type variant struct {
	FileType string `json:"filtype"`
	Format   string `json:"variantformat"`
	Content  []byte `json:"fysiskDokument"`
}

type document struct {
	Title    string    `json:"tittel"`
	Code     string    `json:"brevkode"`
	Variants []variant `json:"dokumentvarianter"`
}

type party struct {
	ID     string `json:"id"`
	IDType string `json:"idType"`
	Name   string `json:"navn,omitempty"`
}

type journalRequest struct {
	Title       string     `json:"tittel"`
	Type        string     `json:"journalposttype"`
	Theme       string     `json:"tema"`
	Channel     string     `json:"kanal"`
	Unit        string     `json:"journalfoerendeEnhet"`
	ExternalRef string     `json:"eksternReferanseId"`
	Sender      party      `json:"avsenderMottaker"`
	User        party      `json:"bruker"`
	Documents   []document `json:"dokumenter"`
	Received    string     `json:"datoMottatt"`
}

type journalResponse struct {
	JournalpostID string `json:"journalpostId"`
	Finalized     bool   `json:"journalpostferdigstilt"`
}

type Client struct {
	http *httpclient.Client
	now  func() time.Time
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("dokarkiv", baseURL, timeout), now: time.Now}
}

// Archive creates a finalized incoming journal entry. The archive answers 409
// with the existing entry when ExternalRef was used before, which makes a
// retried call return the first reference.
func (c *Client) Archive(ctx context.Context, req integration.ArchiveRequest) (string, error) {
	body := journalRequest{
		Title:       req.Title,
		Type:        "INNGAAENDE",
		Theme:       "SYK",
		Channel:     "NAV_NO",
		Unit:        "9999",
		ExternalRef: req.ExternalRef,
		Sender:      party{ID: req.OrgNumber, IDType: "ORGNR", Name: req.OrgName},
		User:        party{ID: req.PersonID, IDType: "FNR"},
		Received:    c.now().Format("2006-01-02"),
	}
	for _, d := range req.Documents {
		doc := document{Title: d.Title, Code: d.Code}
		for _, v := range d.Variants {
			doc.Variants = append(doc.Variants, variant{FileType: v.FileType, Format: string(v.Format), Content: v.Content})
		}
		body.Documents = append(body.Documents, doc)
	}

	var resp journalResponse
	err := c.http.JSON(ctx, http.MethodPost, journalPath, body, &resp)
	if httpclient.IsStatus(err, http.StatusConflict) {
		if decodeErr := c.decodeConflict(err, &resp); decodeErr != nil {
			return "", decodeErr
		}
		slog.InfoContext(ctx, "journal entry already existed", "archive_ref", resp.JournalpostID)
		err = nil
	}
	if err != nil {
		return "", err
	}
	if resp.JournalpostID == "" {
		return "", fmt.Errorf("dokarkiv returned no journalpostId")
	}
	if !resp.Finalized {
		slog.WarnContext(ctx, "journal entry created but not finalized", "archive_ref", resp.JournalpostID)
	}
	return resp.JournalpostID, nil
}

func (c *Client) decodeConflict(err error, resp *journalResponse) error {
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return err
	}
	if decodeErr := c.http.Decode([]byte(se.Body), resp); decodeErr != nil || resp.JournalpostID == "" {
		return fmt.Errorf("dokarkiv conflict without journalpostId: %w", err)
	}
	return nil
}
