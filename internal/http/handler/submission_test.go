package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/http/dto"
	"fritakagp.app/backend/internal/http/handler"
	"fritakagp.app/backend/internal/http/middleware"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/service"
)

const (
	identityHeader = "X-Identitetsnummer"
	submitter      = "10107400090"
	employee       = "20015001543"
	orgNumber      = "917404437"
)

var _ = Describe("ClaimHandler", func() {
	var (
		router *gin.Engine
		svc    *mockClaimService[*model.ChronicClaim]
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockClaimService[*model.ChronicClaim]{}
		h := handler.NewClaimHandler[*model.ChronicClaim, dto.ChronicClaimRequest](svc)
		claims := router.Group("/claim", middleware.RequireIdentity(identityHeader))
		claims.POST("", h.Create)
		claims.GET("/:id", h.Get)
		claims.DELETE("/:id", h.Delete)
	})

	validBody := func() map[string]any {
		return map[string]any{
			"virksomhetsnummer": orgNumber,
			"identitetsnummer":  employee,
			"bekreftet":         true,
			"antallDager":       260,
			"perioder": []map[string]any{{
				"fom":                    "2024-01-01",
				"tom":                    "2024-01-10",
				"antallDagerMedRefusjon": 8,
				"månedsinntekt":          35000.0,
				"gradering":              1.0,
			}},
		}
	}

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(identityHeader, submitter)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Create", func() {
		It("returns 201 with the stored claim", func() {
			var gotRequester string
			var gotAttachment *service.Attachment
			svc.createFn = func(_ context.Context, requester string, record *model.ChronicClaim, attachment *service.Attachment) (*model.ChronicClaim, error) {
				gotRequester, gotAttachment = requester, attachment
				record.ID = uuid.MustParse("5a4e34f6-c4b2-4a3c-9c55-0d59e8f8d4b1")
				return record, nil
			}

			w := do(http.MethodPost, "/claim", validBody())

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(gotRequester).To(Equal(submitter))
			Expect(gotAttachment).To(BeNil())

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(Equal("5a4e34f6-c4b2-4a3c-9c55-0d59e8f8d4b1"))
			Expect(resp["identitetsnummer"]).To(Equal(employee))
		})

		It("passes a decoded attachment to the service", func() {
			var gotAttachment *service.Attachment
			svc.createFn = func(_ context.Context, _ string, record *model.ChronicClaim, attachment *service.Attachment) (*model.ChronicClaim, error) {
				gotAttachment = attachment
				return record, nil
			}
			body := validBody()
			body["dokumentasjon"] = "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF"))

			w := do(http.MethodPost, "/claim", body)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(gotAttachment).NotTo(BeNil())
			Expect(string(gotAttachment.Content)).To(Equal("%PDF"))
		})

		It("returns field errors for an invalid identity number", func() {
			body := validBody()
			body["identitetsnummer"] = "12345678901"

			w := do(http.MethodPost, "/claim", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp dto.ValidationResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal("VALIDATION_ERRORS"))
			Expect(resp.ValidationErrors).To(HaveLen(1))
			Expect(resp.ValidationErrors[0].PropertyPath).To(Equal("identitetsnummer"))
		})

		It("requires confirmation", func() {
			body := validBody()
			body["bekreftet"] = false

			w := do(http.MethodPost, "/claim", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("runs the period checks", func() {
			body := validBody()
			body["perioder"].([]map[string]any)[0]["antallDagerMedRefusjon"] = 20

			w := do(http.MethodPost, "/claim", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("perioder[0].antallDagerMedRefusjon"))
		})

		It("returns 400 on malformed json", func() {
			req := httptest.NewRequest(http.MethodPost, "/claim", bytes.NewBufferString(`{`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(identityHeader, submitter)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 when the attachment is infected", func() {
			svc.createFn = func(_ context.Context, _ string, _ *model.ChronicClaim, _ *service.Attachment) (*model.ChronicClaim, error) {
				return nil, service.ErrInfected
			}

			w := do(http.MethodPost, "/claim", validBody())

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("dokumentasjon"))
		})

		It("returns 500 on service error", func() {
			svc.createFn = func(_ context.Context, _ string, _ *model.ChronicClaim, _ *service.Attachment) (*model.ChronicClaim, error) {
				return nil, errors.New("db down")
			}

			w := do(http.MethodPost, "/claim", validBody())
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})

		It("returns 401 without an identity", func() {
			req := httptest.NewRequest(http.MethodPost, "/claim", bytes.NewBufferString(`{}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Get", func() {
		It("returns the claim", func() {
			id := uuid.New()
			svc.getFn = func(_ context.Context, requester string, got uuid.UUID) (*model.ChronicClaim, error) {
				Expect(requester).To(Equal(submitter))
				Expect(got).To(Equal(id))
				return &model.ChronicClaim{Submission: model.Submission{ID: id}}, nil
			}

			w := do(http.MethodGet, "/claim/"+id.String(), nil)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("returns 404 when the service hides the claim", func() {
			w := do(http.MethodGet, "/claim/"+uuid.NewString(), nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a malformed id", func() {
			w := do(http.MethodGet, "/claim/not-a-uuid", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Delete", func() {
		It("returns the withdrawn claim", func() {
			svc.deleteFn = func(_ context.Context, _ string, id uuid.UUID) (*model.ChronicClaim, error) {
				return &model.ChronicClaim{
					Submission: model.Submission{ID: id},
					ClaimMeta:  model.ClaimMeta{Status: model.ClaimStatusDeleted},
				}, nil
			}

			w := do(http.MethodDelete, "/claim/"+uuid.NewString(), nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"status":"SLETTET"`))
		})

		It("returns 409 when already withdrawn", func() {
			svc.deleteFn = func(_ context.Context, _ string, _ uuid.UUID) (*model.ChronicClaim, error) {
				return nil, service.ErrAlreadyDeleted
			}

			w := do(http.MethodDelete, "/claim/"+uuid.NewString(), nil)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})
})

var _ = Describe("HealthHandler", func() {
	It("reports job counts", func() {
		jobs := &mockJobService{countFn: func(context.Context) (map[model.JobStatus]int64, error) {
			return map[model.JobStatus]int64{model.JobStatusPending: 2, model.JobStatusFailed: 1}, nil
		}}
		router := gin.New()
		router.GET("/health", handler.NewHealthHandler(jobs).Check)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.HealthResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("ok"))
		Expect(resp.Jobs).To(HaveKeyWithValue("PENDING", int64(2)))
		Expect(resp.Jobs).To(HaveKeyWithValue("FAILED", int64(1)))
	})

	It("answers 503 when the database is unavailable", func() {
		jobs := &mockJobService{countFn: func(context.Context) (map[model.JobStatus]int64, error) {
			return nil, errors.New("db down")
		}}
		router := gin.New()
		router.GET("/health", handler.NewHealthHandler(jobs).Check)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
