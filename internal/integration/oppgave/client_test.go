package oppgave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/oppgave"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		response string
		received map[string]any
	)

	BeforeEach(func() {
		received = nil
		response = `{"id": 4711}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/v1/oppgaver"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(response))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	due := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	It("creates a robot task with the sick leave theme", func() {
		id, err := oppgave.New(server.URL, time.Second).CreateTask(context.Background(), integration.TaskRequest{
			TaskType:    integration.TaskTypeRobot,
			Description: `{"kravType":"KRONISK"}`,
			ArchiveRef:  "A1",
			ActorID:     "1000012345678",
			GeoArea:     "4488",
			DueDate:     due,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("4711"))

		Expect(received["tema"]).To(Equal("SYK"))
		Expect(received["oppgavetype"]).To(Equal("ROB_BEH"))
		Expect(received["behandlingstema"]).To(Equal("ab0338"))
		Expect(received["journalpostId"]).To(Equal("A1"))
		Expect(received["fristFerdigstillelse"]).To(Equal("2024-03-11"))
		Expect(received["prioritet"]).To(Equal("NORM"))
	})

	It("leaves the robot theme off distribution tasks", func() {
		_, err := oppgave.New(server.URL, time.Second).CreateTask(context.Background(), integration.TaskRequest{
			TaskType: integration.TaskTypeDistribution,
			DueDate:  due,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(received).NotTo(HaveKey("behandlingstema"))
		Expect(received).NotTo(HaveKey("journalpostId"))
	})

	It("fails when no id comes back", func() {
		response = `{}`
		_, err := oppgave.New(server.URL, time.Second).CreateTask(context.Background(), integration.TaskRequest{
			TaskType: integration.TaskTypeRobot,
			DueDate:  due,
		})
		Expect(err).To(MatchError(ContainSubstring("no id")))
	})
})
