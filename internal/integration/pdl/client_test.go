package pdl_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/pdl"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		response string
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Tema")).To(Equal("SYK"))
			_, _ = w.Write([]byte(response))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("maps name, actor id and the most specific area", func() {
		response = `{"data":{
			"hentPerson":{"navn":[{"fornavn":"Ola","mellomnavn":null,"etternavn":"Nordmann"}]},
			"hentIdenter":{"identer":[{"ident":"2000000000000"}]},
			"hentGeografiskTilknytning":{"gtKommune":"0301","gtBydel":"030102","gtLand":null}}}`

		person, err := pdl.New(server.URL, time.Second).Lookup(context.Background(), "10107400090")

		Expect(err).NotTo(HaveOccurred())
		Expect(person.Name).To(Equal("Ola Nordmann"))
		Expect(person.ActorID).To(Equal("2000000000000"))
		Expect(person.GeoArea).To(Equal("030102"))
	})

	It("reports unknown people", func() {
		response = `{"data":{"hentPerson":null},"errors":[{"message":"Fant ikke person"}]}`

		_, err := pdl.New(server.URL, time.Second).Lookup(context.Background(), "10107400090")

		Expect(errors.Is(err, integration.ErrPersonNotFound)).To(BeTrue())
	})
})
