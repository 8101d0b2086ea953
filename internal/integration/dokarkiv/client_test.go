package dokarkiv_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/dokarkiv"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		status   int
		response string
		received map[string]any
	)

	BeforeEach(func() {
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/rest/journalpostapi/v1/journalpost"))
			Expect(r.URL.Query().Get("forsoekFerdigstill")).To(Equal("true"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
			_, _ = w.Write([]byte(response))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	request := integration.ArchiveRequest{
		Title:       "Krav",
		PersonID:    "10107400090",
		OrgNumber:   "810007842",
		OrgName:     "Stark Industries",
		ExternalRef: "abc",
		Documents: []integration.ArchiveDocument{{
			Title: "Krav",
			Code:  "krav_om_fritak_fra_agp_kronisk",
			Variants: []integration.DocumentVariant{
				{FileType: "PDFA", Format: integration.VariantArchive, Content: []byte("pdf")},
			},
		}},
	}

	It("returns the new journal reference", func() {
		status, response = http.StatusCreated, `{"journalpostId":"A1","journalpostferdigstilt":true}`

		ref, err := dokarkiv.New(server.URL, time.Second).Archive(context.Background(), request)

		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal("A1"))
		Expect(received).To(HaveKeyWithValue("eksternReferanseId", "abc"))
		Expect(received).To(HaveKeyWithValue("tema", "SYK"))
	})

	It("returns the existing reference on a duplicate", func() {
		status, response = http.StatusConflict, `{"journalpostId":"A0","journalpostferdigstilt":true}`

		ref, err := dokarkiv.New(server.URL, time.Second).Archive(context.Background(), request)

		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal("A0"))
	})

	It("finds the existing reference at the end of a long duplicate response", func() {
		status = http.StatusConflict
		response = `{"dokumenter":[{"dokumentInfoId":"` + strings.Repeat("9", 1000) + `"}],"journalpostferdigstilt":true,"journalpostId":"A0"}`

		ref, err := dokarkiv.New(server.URL, time.Second).Archive(context.Background(), request)

		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal("A0"))
	})

	It("fails on a duplicate response without a reference", func() {
		status, response = http.StatusConflict, `{}`

		_, err := dokarkiv.New(server.URL, time.Second).Archive(context.Background(), request)

		Expect(err).To(MatchError(ContainSubstring("conflict without journalpostId")))
	})

	It("fails on server errors", func() {
		status, response = http.StatusInternalServerError, `boom`

		_, err := dokarkiv.New(server.URL, time.Second).Archive(context.Background(), request)

		Expect(err).To(HaveOccurred())
	})
})
