// Package pdl looks up people in the population register.
package pdl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/httpclient"
)

const personQuery = `query($ident: ID!) {
  hentPerson(ident: $ident) { navn { fornavn mellomnavn etternavn } }
  hentIdenter(ident: $ident, grupper: [AKTORID]) { identer { ident } }
  hentGeografiskTilknytning(ident: $ident) { gtKommune gtBydel gtLand }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type name struct {
	First  string  `json:"fornavn"`
	Middle *string `json:"mellomnavn"`
	Last   string  `json:"etternavn"`
}

type graphQLResponse struct {
	Data struct {
		Person *struct {
			Names []name `json:"navn"`
		} `json:"hentPerson"`
		Idents *struct {
			Idents []struct {
				Ident string `json:"ident"`
			} `json:"identer"`
		} `json:"hentIdenter"`
		Geo *struct {
			Municipality *string `json:"gtKommune"`
			District     *string `json:"gtBydel"`
			Country      *string `json:"gtLand"`
		} `json:"hentGeografiskTilknytning"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type Client struct {
	http *httpclient.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("pdl", baseURL, timeout, httpclient.WithHeader("Tema", "SYK"))}
}

func (c *Client) Lookup(ctx context.Context, personID string) (*integration.Person, error) {
	var resp graphQLResponse
	if err := c.http.JSON(ctx, http.MethodPost, "/graphql", graphQLRequest{
		Query:     personQuery,
		Variables: map[string]any{"ident": personID},
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		if resp.Data.Person == nil {
			return nil, fmt.Errorf("%w: %s", integration.ErrPersonNotFound, resp.Errors[0].Message)
		}
		return nil, fmt.Errorf("pdl: %s", resp.Errors[0].Message)
	}
	if resp.Data.Person == nil {
		return nil, integration.ErrPersonNotFound
	}

	person := &integration.Person{}
	if len(resp.Data.Person.Names) > 0 {
		person.Name = fullName(resp.Data.Person.Names[0])
	}
	if resp.Data.Idents != nil && len(resp.Data.Idents.Idents) > 0 {
		person.ActorID = resp.Data.Idents.Idents[0].Ident
	}
	if geo := resp.Data.Geo; geo != nil {
		switch {
		case geo.District != nil:
			person.GeoArea = *geo.District
		case geo.Municipality != nil:
			person.GeoArea = *geo.Municipality
		case geo.Country != nil:
			person.GeoArea = *geo.Country
		}
	}
	return person, nil
}

func fullName(n name) string {
	parts := []string{n.First}
	if n.Middle != nil && *n.Middle != "" {
		parts = append(parts, *n.Middle)
	}
	parts = append(parts, n.Last)
	return strings.Join(parts, " ")
}
