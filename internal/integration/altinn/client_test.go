package altinn_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/altinn"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		status   int
		received map[string]any
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/correspondence"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	receipt := integration.Receipt{
		SubmissionID: uuid.MustParse("3f1b5a0e-8c1d-4d8e-9a51-6f0f2b6c9e10"),
		OrgNumber:    "917404437",
		Title:        "Kvittering",
		Body:         "Krav er mottatt 04.03.2024 10:00.",
		Attachment:   []byte("%PDF"),
	}

	It("sends the receipt with the submission id as shipment reference", func() {
		Expect(altinn.New(server.URL, time.Second).Send(context.Background(), receipt)).To(Succeed())

		Expect(received["reportee"]).To(Equal("917404437"))
		Expect(received["serviceCode"]).To(Equal("5534"))
		Expect(received["externalShipmentReference"]).To(Equal("3f1b5a0e-8c1d-4d8e-9a51-6f0f2b6c9e10"))
		Expect(received["attachments"]).To(HaveLen(1))
	})

	It("treats a duplicate shipment as delivered", func() {
		status = http.StatusConflict
		Expect(altinn.New(server.URL, time.Second).Send(context.Background(), receipt)).To(Succeed())
	})

	It("returns server errors", func() {
		status = http.StatusBadGateway
		Expect(altinn.New(server.URL, time.Second).Send(context.Background(), receipt)).NotTo(Succeed())
	})
})
